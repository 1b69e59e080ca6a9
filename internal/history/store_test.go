package history

import (
	"testing"
	"time"

	"github.com/wikivigil/vigil/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open(in-memory) error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords(now time.Time) []model.ChangeRecord {
	return []model.ChangeRecord{
		{
			Title: "Coral reef", RevisionID: 101, OldRevID: 100,
			Timestamp: now.Add(-2 * time.Minute), OldSize: 100, NewSize: 700,
			Tags: []string{"mobile edit", "mw-reverted"}, ChangeKind: model.ChangeKindEdit,
		},
		{
			Title: "Basalt", RevisionID: 102, OldRevID: 0,
			Timestamp: now.Add(-time.Minute), OldSize: 0, NewSize: 640,
			Tags: []string{"mobile edit"}, ChangeKind: model.ChangeKindNew,
		},
		{
			Title: "Monsoon", RevisionID: 103, OldRevID: 99,
			Timestamp: now, OldSize: 500, NewSize: 480,
			ChangeKind: model.ChangeKindEdit,
		},
	}
}

func TestRecord_JournalsBatch(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.Record(sampleRecords(time.Now().UTC())); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	total, err := s.TotalSeen()
	if err != nil {
		t.Fatalf("TotalSeen() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("TotalSeen() = %d, want 3", total)
	}
}

func TestRecord_SkipsAlreadySeenRevisions(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	records := sampleRecords(time.Now().UTC())

	if err := s.Record(records); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	// Overlapping poll windows re-deliver the same revisions.
	if err := s.Record(records); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	total, err := s.TotalSeen()
	if err != nil {
		t.Fatalf("TotalSeen() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("TotalSeen() after re-record = %d, want 3", total)
	}

	// Tags must not be double counted either.
	tags, err := s.TopTags(10)
	if err != nil {
		t.Fatalf("TopTags() error = %v", err)
	}
	for _, tc := range tags {
		if tc.Tag == "mobile edit" && tc.Count != 2 {
			t.Errorf("mobile edit count = %d, want 2", tc.Count)
		}
	}
}

func TestRecord_EmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.Record(nil); err != nil {
		t.Fatalf("Record(nil) error = %v", err)
	}
	total, err := s.TotalSeen()
	if err != nil {
		t.Fatalf("TotalSeen() error = %v", err)
	}
	if total != 0 {
		t.Fatalf("TotalSeen() = %d, want 0", total)
	}
}

func TestTopTags_OrdersByFrequency(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.Record(sampleRecords(time.Now().UTC())); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	tags, err := s.TopTags(10)
	if err != nil {
		t.Fatalf("TopTags() error = %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("TopTags() = %v, want 2 distinct tags", tags)
	}
	if tags[0].Tag != "mobile edit" || tags[0].Count != 2 {
		t.Errorf("top tag = %+v, want mobile edit x2", tags[0])
	}
	if tags[1].Tag != "mw-reverted" || tags[1].Count != 1 {
		t.Errorf("second tag = %+v, want mw-reverted x1", tags[1])
	}
}

func TestCountsByMinute_BucketsRecentChanges(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	now := time.Now().UTC()

	records := sampleRecords(now)
	// An old change outside the window must not appear.
	records = append(records, model.ChangeRecord{
		Title: "Permafrost", RevisionID: 900, Timestamp: now.Add(-3 * time.Hour),
		ChangeKind: model.ChangeKindEdit,
	})
	if err := s.Record(records); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	buckets, err := s.CountsByMinute(30)
	if err != nil {
		t.Fatalf("CountsByMinute() error = %v", err)
	}

	var total int64
	for i, b := range buckets {
		total += b.Count
		if i > 0 && b.Bucket.Before(buckets[i-1].Bucket) {
			t.Fatalf("buckets not ascending at index %d", i)
		}
	}
	if total != 3 {
		t.Fatalf("window total = %d, want 3 recent changes", total)
	}
}
