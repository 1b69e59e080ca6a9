// Package tui implements the live panel: the poll scheduler, the entry
// list with per-change classification, the activity chart, and the
// settings editor.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wikivigil/vigil/internal/model"
	"github.com/wikivigil/vigil/internal/prefs"
)

// PollState is the scheduler's mutable state. It is owned exclusively by
// PanelModel; all mutation goes through start/restart and the message
// handlers so the cancel-before-rearm invariant holds.
type PollState struct {
	timerGen      int       // bumped on start/restart; a tick from an older generation is dead
	lastCheckedAt time.Time // when a query was last actually issued
	hidden        bool      // terminal is not focused
}

// PanelModel is the Bubble Tea model for the patrol panel.
type PanelModel struct {
	prefs   *prefs.Store
	fetcher model.ActivityFetcher
	diffURL func(model.ChangeRecord) string
	history model.HistoryStore // nil disables the journal
	site    model.SiteConfig
	nsIndex model.NamespaceIndex

	poll   PollState
	active model.Preferences // effective prefs the current timer was armed with

	entries  []Entry
	selected int

	// Operational errors shown on the status line. Fetch errors clear on
	// the next successful cycle; notices clear on the next key press.
	fetchErr   string
	fetchErrAt time.Time
	notice     string

	totalSeen int64
	activity  []model.BucketCount
	topTags   []model.TagCount
	showChart bool

	settings *SettingsForm // nil when the editor is closed

	keys   KeyMap
	width  int
	height int
}

// pollTickMsg fires when the repeating poll timer elapses. Ticks carry
// the generation they were armed under; stale generations are dropped.
type pollTickMsg struct {
	gen int
}

// changesMsg carries one cycle's fetch result. Deliberately un-tokened:
// a slow fetch that resolves after a newer cycle rendered will overwrite
// it (last-resolved-wins), matching the documented hazard.
type changesMsg struct {
	records []model.ChangeRecord
	err     error
}

// persistDoneMsg reports the outcome of a settings save or reset.
type persistDoneMsg struct {
	err error
}

// historyMsg carries refreshed journal aggregates.
type historyMsg struct {
	total    int64
	activity []model.BucketCount
	tags     []model.TagCount
	err      error
}

// recordedMsg reports a journal write; failures only reach the status line.
type recordedMsg struct {
	err error
}

// NewPanelModel wires the panel from its collaborators. The namespace
// index is fetched once at startup by the caller.
func NewPanelModel(store *prefs.Store, fetcher model.ActivityFetcher, diffURL func(model.ChangeRecord) string, history model.HistoryStore, site model.SiteConfig, nsIndex model.NamespaceIndex) *PanelModel {
	return &PanelModel{
		prefs:   store,
		fetcher: fetcher,
		diffURL: diffURL,
		history: history,
		site:    site,
		nsIndex: nsIndex,
		keys:    DefaultKeyMap(),
	}
}

// Init starts the poll loop: one immediate poll, then the repeating timer.
func (m *PanelModel) Init() tea.Cmd {
	return m.start()
}

func (m *PanelModel) clampSelection() {
	if m.selected >= len(m.entries) {
		m.selected = len(m.entries) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// Entries exposes the rendered rows for tests.
func (m *PanelModel) Entries() []Entry {
	return m.entries
}
