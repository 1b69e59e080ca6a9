package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/wikivigil/vigil/internal/model"
)

func TestRenderEntry_ClassificationSurvivesSelection(t *testing.T) {
	t.Parallel()

	m := newTestPanel(&stubFetcher{})
	e := Entry{
		Title:   "Coral reef",
		Delta:   600,
		RelTime: "just now",
		Classes: EntryClasses{Positive: true, Large: true, NewPage: true, Risky: true},
	}

	for _, selected := range []bool{false, true} {
		line := m.renderEntry(e, selected)
		for _, want := range []string{"N", "Coral reef", "+600!", "just now"} {
			if !strings.Contains(line, want) {
				t.Errorf("renderEntry(selected=%v) = %q, missing %q", selected, line, want)
			}
		}
	}
}

func TestRenderEntry_Placeholder(t *testing.T) {
	t.Parallel()

	m := newTestPanel(&stubFetcher{})
	e := Entry{Title: "No unpatrolled changes", Placeholder: true}

	for _, selected := range []bool{false, true} {
		line := m.renderEntry(e, selected)
		if !strings.Contains(line, "No unpatrolled changes") {
			t.Errorf("renderEntry(selected=%v) = %q, missing placeholder text", selected, line)
		}
	}
}

func TestActivityChart_ListsFrequentTags(t *testing.T) {
	t.Parallel()

	m := newTestPanel(&stubFetcher{})
	m.width = 80
	m.totalSeen = 12
	m.activity = []model.BucketCount{
		{Bucket: time.Now().Add(-time.Minute), Count: 3},
		{Bucket: time.Now(), Count: 2},
	}
	m.topTags = []model.TagCount{
		{Tag: "mobile edit", Count: 3},
		{Tag: "possible vandalism", Count: 1},
	}

	out := m.renderActivityChart()
	for _, want := range []string{"mobile edit", "possible vandalism", "frequent tags"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderActivityChart() missing %q", want)
		}
	}
}

func TestActivityChart_NoJournalYet(t *testing.T) {
	t.Parallel()

	m := newTestPanel(&stubFetcher{})
	m.width = 80

	out := m.renderActivityChart()
	if !strings.Contains(out, "no journaled activity yet") {
		t.Errorf("renderActivityChart() = %q, want empty-journal notice", out)
	}
}
