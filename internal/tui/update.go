package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wikivigil/vigil/internal/model"
	"github.com/wikivigil/vigil/internal/query"
)

const (
	fetchTimeout   = 20 * time.Second
	persistTimeout = 15 * time.Second
	chartBuckets   = 30
	topTagLimit    = 5
)

// Update handles messages.
func (m *PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.BlurMsg:
		// Polls are skipped while hidden; the timer keeps running.
		m.poll.hidden = true
		return m, nil

	case tea.FocusMsg:
		m.poll.hidden = false
		// Catch-up: if more than one interval elapsed since the last
		// issued query, poll now instead of waiting for the stale timer.
		if time.Since(m.poll.lastCheckedAt) > m.active.Interval() {
			return m, m.start()
		}
		return m, nil

	case pollTickMsg:
		if msg.gen != m.poll.timerGen {
			return m, nil // timer superseded by a restart
		}
		cmds := []tea.Cmd{m.tickCmd(msg.gen)}
		if !m.poll.hidden {
			cmds = append(cmds, m.pollCmd())
		}
		return m, tea.Batch(cmds...)

	case changesMsg:
		return m.applyChanges(msg)

	case persistDoneMsg:
		if msg.err != nil {
			// Local value already applied; live poll state untouched.
			m.notice = "settings: " + msg.err.Error()
			return m, nil
		}
		m.notice = "settings saved"
		return m, m.start()

	case historyMsg:
		if msg.err == nil {
			m.totalSeen = msg.total
			m.activity = msg.activity
			m.topTags = msg.tags
		}
		return m, nil

	case recordedMsg:
		if msg.err != nil {
			m.notice = "history: " + msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

// start arms a fresh poll loop at the current effective frequency. Any
// previously armed timer is invalidated by the generation bump before
// the new one is created, so two starts never leave two live timers.
// restart() is the same operation, used after preferences change.
func (m *PanelModel) start() tea.Cmd {
	m.poll.timerGen++
	m.active = m.prefs.Resolve(nil)
	if m.poll.hidden {
		// No query while the panel is not visible; the rearmed timer
		// picks up once focus returns.
		return m.tickCmd(m.poll.timerGen)
	}
	return tea.Batch(m.pollCmd(), m.tickCmd(m.poll.timerGen))
}

func (m *PanelModel) tickCmd(gen int) tea.Cmd {
	return tea.Tick(m.active.Interval(), func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

// pollCmd builds the query, records the last-checked instant at issue
// time, and returns the async fetch. Build completes before the fetch is
// dispatched; render happens only when the fetch resolves.
func (m *PanelModel) pollCmd() tea.Cmd {
	q := query.Build(m.active, m.nsIndex)
	m.poll.lastCheckedAt = time.Now()

	fetcher := m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		records, err := fetcher.RecentChanges(ctx, q)
		return changesMsg{records: records, err: err}
	}
}

// applyChanges renders one cycle's result. The visible list is a full
// replacement snapshot: existing entries are discarded before the new
// batch (or the placeholder) goes in.
func (m *PanelModel) applyChanges(msg changesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Cycle skipped: log to the status line, keep the stale list,
		// let the next timer fire normally.
		m.fetchErr = msg.err.Error()
		m.fetchErrAt = time.Now()
		return m, nil
	}

	m.fetchErr = ""
	m.entries = BuildEntries(msg.records, m.site.DangerousTags, m.diffURL, time.Now())
	m.clampSelection()

	if m.history == nil || len(msg.records) == 0 {
		return m, nil
	}
	return m, tea.Batch(m.recordCmd(msg.records), m.historyCmd())
}

func (m *PanelModel) recordCmd(records []model.ChangeRecord) tea.Cmd {
	history := m.history
	batch := append([]model.ChangeRecord(nil), records...)
	return func() tea.Msg {
		return recordedMsg{err: history.Record(batch)}
	}
}

func (m *PanelModel) historyCmd() tea.Cmd {
	history := m.history
	return func() tea.Msg {
		total, err := history.TotalSeen()
		if err != nil {
			return historyMsg{err: err}
		}
		activity, err := history.CountsByMinute(chartBuckets)
		if err != nil {
			return historyMsg{err: err}
		}
		tags, err := history.TopTags(topTagLimit)
		if err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{total: total, activity: activity, tags: tags}
	}
}

func (m *PanelModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Settings form captures input while open.
	if m.settings != nil {
		action, cmd := m.settings.Update(msg)
		switch action {
		case settingsSave:
			patch, err := m.settings.Patch()
			if err != nil {
				return m, nil
			}
			m.settings = nil
			// Save merges the form's changes over what is stored, so
			// untouched fields keep their persisted values.
			return m, m.persistCmd(m.prefs.Stored().Merge(patch))
		case settingsReset:
			m.settings = nil
			return m, m.persistCmd(model.PrefPatch{})
		case settingsCancel:
			m.settings = nil
			return m, nil
		}
		return m, cmd
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.selected < len(m.entries) && !m.entries[m.selected].Placeholder {
			m.notice = m.entries[m.selected].DiffURL
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.start()
	case key.Matches(msg, m.keys.Chart):
		m.showChart = !m.showChart
	case key.Matches(msg, m.keys.Settings):
		m.settings = NewSettingsForm(m.prefs.Resolve(nil))
	}

	return m, nil
}

// persistCmd writes the patch through the preference store: local first
// (always applied), then the remote options endpoint.
func (m *PanelModel) persistCmd(patch model.PrefPatch) tea.Cmd {
	store := m.prefs
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		return persistDoneMsg{err: store.Persist(ctx, patch)}
	}
}
