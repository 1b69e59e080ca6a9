package simulator

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/wikivigil/vigil/internal/model"
	"github.com/wikivigil/vigil/internal/mwapi"
)

func newTestClient(t *testing.T, s *Server) *mwapi.Client {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return mwapi.NewClient(srv.URL+"/api.php", "vigil-test")
}

func baseQuery() model.QueryDescription {
	return model.QueryDescription{
		List:      "recentchanges",
		Prefix:    "rc",
		Kinds:     []string{"edit", "new"},
		Fields:    []string{"title", "timestamp", "ids", "sizes", "tags"},
		Direction: "older",
		Limit:     20,
	}
}

func TestServer_ServesOnlyUnpatrolledChanges(t *testing.T) {
	t.Parallel()

	feed := NewFeed(7, 60)
	client := newTestClient(t, NewServer("", feed))

	records, err := client.RecentChanges(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("RecentChanges() error = %v", err)
	}
	if len(records) == 0 {
		t.Fatal("got no records from a 60-change feed")
	}

	patrolled := make(map[int64]bool)
	for _, ch := range feed.Select(Query{Limit: 0}) {
		if ch.Patrolled {
			patrolled[ch.RevID] = true
		}
	}
	for _, rec := range records {
		if patrolled[rec.RevisionID] {
			t.Errorf("revision %d is patrolled but was served", rec.RevisionID)
		}
	}
}

func TestServer_HonorsLimit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, NewServer("", NewFeed(7, 60)))

	q := baseQuery()
	q.Limit = 3
	records, err := client.RecentChanges(context.Background(), q)
	if err != nil {
		t.Fatalf("RecentChanges() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want limit 3", len(records))
	}
}

func TestServer_NamespaceFilter(t *testing.T) {
	t.Parallel()

	feed := NewFeed(7, 120)
	client := newTestClient(t, NewServer("", feed))

	q := baseQuery()
	q.Namespaces = []int{0, 118}
	records, err := client.RecentChanges(context.Background(), q)
	if err != nil {
		t.Fatalf("RecentChanges() error = %v", err)
	}

	wantNS := map[int64]int{}
	for _, ch := range feed.Select(Query{Limit: 0}) {
		wantNS[ch.RevID] = ch.Namespace
	}
	for _, rec := range records {
		if ns := wantNS[rec.RevisionID]; ns != 0 && ns != 118 {
			t.Errorf("revision %d is in namespace %d, want content only", rec.RevisionID, ns)
		}
	}
}

func TestServer_NewOnlyFilter(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, NewServer("", NewFeed(7, 120)))

	q := baseQuery()
	q.Kinds = []string{"new"}
	records, err := client.RecentChanges(context.Background(), q)
	if err != nil {
		t.Fatalf("RecentChanges() error = %v", err)
	}
	for _, rec := range records {
		if rec.ChangeKind != model.ChangeKindNew {
			t.Errorf("revision %d has kind %q, want new", rec.RevisionID, rec.ChangeKind)
		}
	}
}

func TestServer_WatchlistListing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, NewServer("", NewFeed(7, 30)))

	q := baseQuery()
	q.List = "watchlist"
	q.Prefix = "wl"
	if _, err := client.RecentChanges(context.Background(), q); err != nil {
		t.Fatalf("watchlist listing error = %v", err)
	}
}

func TestServer_UnknownListIsError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, NewServer("", NewFeed(7, 10)))

	q := baseQuery()
	q.List = "logevents"
	q.Prefix = "le"
	if _, err := client.RecentChanges(context.Background(), q); err == nil {
		t.Fatal("unknown list accepted, want error response")
	}
}

func TestServer_SiteInfoExposesContentNamespaces(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, NewServer("", NewFeed(7, 10)))

	ns, err := client.SiteInfo(context.Background())
	if err != nil {
		t.Fatalf("SiteInfo() error = %v", err)
	}
	if len(ns.All) != len(namespaces) {
		t.Errorf("All = %v, want %d namespaces", ns.All, len(namespaces))
	}

	content := make(map[int]bool)
	for _, id := range ns.Content {
		content[id] = true
	}
	if !content[0] || !content[118] {
		t.Errorf("Content = %v, want namespaces 0 and 118", ns.Content)
	}
	if content[1] {
		t.Errorf("Content = %v, Talk namespace should not be content", ns.Content)
	}
}

func TestServer_StoresSavedOptions(t *testing.T) {
	t.Parallel()

	s := NewServer("", NewFeed(7, 10))
	client := newTestClient(t, s)

	if err := client.SaveOption(context.Background(), "vigil-prefs", `{"quantity":8}`); err != nil {
		t.Fatalf("SaveOption() error = %v", err)
	}

	got, ok := s.Option("vigil-prefs")
	if !ok || got != `{"quantity":8}` {
		t.Fatalf("Option() = %q, %v; want saved value", got, ok)
	}
}

func TestFeed_GenerateAppendsFreshChange(t *testing.T) {
	t.Parallel()

	feed := NewFeed(1, 5)
	before := feed.Len()
	feed.Generate()
	if feed.Len() != before+1 {
		t.Fatalf("Len() = %d after Generate, want %d", feed.Len(), before+1)
	}
}

func TestFeed_NewestDirectionKeepsOldestWithinCap(t *testing.T) {
	t.Parallel()

	feed := NewFeed(1, 40)

	got := feed.Select(Query{Newest: true, Limit: 5})
	if len(got) != 5 {
		t.Fatalf("got %d changes, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("results not ascending at index %d", i)
		}
	}

	all := feed.Select(Query{})
	oldest := all[len(all)-1]
	if got[0].RevID != oldest.RevID {
		t.Errorf("ascending selection starts at rev %d, want oldest rev %d", got[0].RevID, oldest.RevID)
	}
}
