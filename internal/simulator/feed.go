package simulator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Change is one simulated edit or page creation.
type Change struct {
	Type      string
	Namespace int
	Title     string
	RevID     int64
	OldRevID  int64
	Timestamp time.Time
	OldLen    int
	NewLen    int
	Tags      []string
	Patrolled bool
}

// Namespace layout of the simulated wiki. 0 and 118 are content.
var namespaces = []struct {
	ID      int
	Name    string
	Content bool
}{
	{0, "", true},
	{1, "Talk", false},
	{2, "User", false},
	{3, "User talk", false},
	{4, "Project", false},
	{118, "Draft", true},
}

var sampleTitles = []string{
	"Coral reef", "Steam locomotive", "Ada Lovelace", "Fermentation",
	"Aurora borealis", "Basalt", "Monsoon", "Typography", "Permafrost",
	"Carillon", "Lighthouse", "Obsidian", "Watershed", "Meridian",
}

var sampleTags = []string{
	"mobile edit", "visualeditor", "mw-new-redirect", "possible vandalism",
	"mw-blanking", "mw-reverted", "newcomer task",
}

// Feed is the in-memory change log served by the simulator.
type Feed struct {
	mu      sync.Mutex
	rng     *rand.Rand
	changes []Change
	nextRev int64
}

// NewFeed creates a feed seeded with n historical changes.
func NewFeed(seed int64, n int) *Feed {
	f := &Feed{
		rng:     rand.New(rand.NewSource(seed)),
		nextRev: 1000,
	}
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		f.append(base.Add(time.Duration(i) * time.Minute))
	}
	return f
}

// Generate appends one new change stamped now.
func (f *Feed) Generate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.append(time.Now())
}

func (f *Feed) append(ts time.Time) {
	rev := f.nextRev
	f.nextRev++

	ns := namespaces[f.rng.Intn(len(namespaces))]
	kind := "edit"
	oldRev := rev - int64(f.rng.Intn(50)+1)
	oldLen := f.rng.Intn(4000)
	if f.rng.Intn(4) == 0 {
		kind = "new"
		oldRev = 0
		oldLen = 0
	}

	title := sampleTitles[f.rng.Intn(len(sampleTitles))]
	if ns.Name != "" {
		title = ns.Name + ":" + title
	}

	var tags []string
	for _, tag := range sampleTags {
		if f.rng.Intn(6) == 0 {
			tags = append(tags, tag)
		}
	}

	f.changes = append(f.changes, Change{
		Type:      kind,
		Namespace: ns.ID,
		Title:     title,
		RevID:     rev,
		OldRevID:  oldRev,
		Timestamp: ts,
		OldLen:    oldLen,
		NewLen:    maxInt(0, oldLen+f.rng.Intn(1400)-500),
		Tags:      tags,
		Patrolled: f.rng.Intn(3) == 0,
	})
}

// Query filters the feed the way the action API would.
type Query struct {
	Kinds           map[string]bool
	Namespaces      map[int]bool // nil = no restriction
	UnpatrolledOnly bool
	Newest          bool // direction: newer means oldest first
	Limit           int
}

// Select returns changes matching q. Results are newest-first unless
// q.Newest asks for ascending order.
func (f *Feed) Select(q Query) []Change {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Change
	for i := len(f.changes) - 1; i >= 0; i-- {
		c := f.changes[i]
		if q.UnpatrolledOnly && c.Patrolled {
			continue
		}
		if len(q.Kinds) > 0 && !q.Kinds[c.Type] {
			continue
		}
		if q.Namespaces != nil && !q.Namespaces[c.Namespace] {
			continue
		}
		out = append(out, c)
		if q.Limit > 0 && len(out) == q.Limit && !q.Newest {
			break
		}
	}

	if q.Newest {
		// Ascending order keeps the oldest entries within the cap.
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		if q.Limit > 0 && len(out) > q.Limit {
			out = out[:q.Limit]
		}
	}
	return out
}

// Len returns the number of changes in the feed.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.changes)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// String implements fmt.Stringer for debug logging.
func (c Change) String() string {
	return fmt.Sprintf("%s rev=%d ns=%d %q", c.Type, c.RevID, c.Namespace, c.Title)
}
