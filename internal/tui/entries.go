package tui

import (
	"fmt"
	"time"

	"github.com/wikivigil/vigil/internal/model"
)

// largeChangeThreshold is the absolute size delta, in bytes, above which
// a change gets the "large" classification regardless of sign.
const largeChangeThreshold = 500

// EntryClasses is the set of visual classifications for one entry.
// Each class is evaluated independently and all applicable ones compose.
type EntryClasses struct {
	Positive bool // size delta > 0
	Negative bool // size delta < 0
	Large    bool // |size delta| >= largeChangeThreshold
	NewPage  bool // page creation
	Risky    bool // tagged with a dangerous tag
}

// Entry is one rendered row of the panel list.
type Entry struct {
	Title       string
	RevisionID  int64
	DiffURL     string
	Delta       int
	RelTime     string // relative timestamp at render time, not live
	Classes     EntryClasses
	Placeholder bool // the "no unpatrolled changes" row
}

// Classify computes the visual classes for one change record.
func Classify(rec model.ChangeRecord, dangerous map[string]bool) EntryClasses {
	delta := rec.SizeDelta()

	classes := EntryClasses{
		Positive: delta > 0,
		Negative: delta < 0,
		Large:    delta >= largeChangeThreshold || delta <= -largeChangeThreshold,
		NewPage:  rec.ChangeKind == model.ChangeKindNew,
	}
	for _, tag := range rec.Tags {
		if dangerous[tag] {
			classes.Risky = true
			break
		}
	}
	return classes
}

// BuildEntries turns one poll's records into the complete replacement
// list of rows. An empty batch yields exactly one placeholder row.
func BuildEntries(records []model.ChangeRecord, dangerous map[string]bool, diffURL func(model.ChangeRecord) string, now time.Time) []Entry {
	if len(records) == 0 {
		return []Entry{{
			Title:       "No unpatrolled changes",
			Placeholder: true,
		}}
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		url := ""
		if diffURL != nil {
			url = diffURL(rec)
		}
		entries = append(entries, Entry{
			Title:      rec.Title,
			RevisionID: rec.RevisionID,
			DiffURL:    url,
			Delta:      rec.SizeDelta(),
			RelTime:    relativeTime(now, rec.Timestamp),
			Classes:    Classify(rec, dangerous),
		})
	}
	return entries
}

// relativeTime renders how long ago t was, as of now. The result is
// fixed at render time; rows are not re-stamped on a timer.
func relativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < 2*time.Minute:
		return "1 minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "1 hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
