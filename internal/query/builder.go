// Package query translates effective preferences plus site namespace
// metadata into a single description of one activity-API request.
package query

import (
	"sort"

	"github.com/wikivigil/vigil/internal/model"
)

// listingSpec maps an origin preference to a listing identity and its
// API parameter prefix.
type listingSpec struct {
	list   string
	prefix string
}

// Origins are a two-way choice, not a validated enumeration: anything
// that is not the watchlist falls back to site-wide recent changes.
var listings = map[string]listingSpec{
	model.OriginWatchlist: {list: model.OriginWatchlist, prefix: "wl"},
}

var defaultListing = listingSpec{list: model.OriginRecentChanges, prefix: "rc"}

// recordFields is the fixed field selection for every query.
var recordFields = []string{"title", "timestamp", "ids", "sizes", "tags"}

// Build constructs the query description for one poll cycle. It is pure;
// recording the last-checked instant is the scheduler's job at issue time.
func Build(prefs model.Preferences, ns model.NamespaceIndex) model.QueryDescription {
	spec, ok := listings[prefs.Origin]
	if !ok {
		spec = defaultListing
	}

	kinds := []string{model.ChangeKindEdit, model.ChangeKindNew}
	if prefs.NewOnly {
		kinds = []string{model.ChangeKindNew}
	}

	return model.QueryDescription{
		List:       spec.list,
		Prefix:     spec.prefix,
		Kinds:      kinds,
		Fields:     append([]string(nil), recordFields...),
		Direction:  prefs.Direction,
		Limit:      prefs.Quantity,
		MaxAge:     prefs.Frequency,
		Namespaces: namespaceRestriction(prefs.Namespace, ns),
	}
}

// namespaceRestriction resolves the namespace scope to a concrete set of
// namespace ids, or nil for no restriction.
func namespaceRestriction(scope string, ns model.NamespaceIndex) []int {
	switch scope {
	case model.NamespaceContent:
		return dedupe(ns.Content)
	case model.NamespaceNonContent:
		return difference(ns.All, ns.Content)
	default:
		return nil
	}
}

// difference returns all ∖ content, de-duplicated and sorted. The raw
// namespace index may repeat ids; the result never does.
func difference(all, content []int) []int {
	excluded := make(map[int]bool, len(content))
	for _, id := range content {
		excluded[id] = true
	}

	seen := make(map[int]bool, len(all))
	var out []int
	for _, id := range all {
		if excluded[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	var out []int
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
