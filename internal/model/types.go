package model

import "time"

// Origin selects which remote listing supplies candidate records.
const (
	OriginRecentChanges = "recentchanges"
	OriginWatchlist     = "watchlist"
)

// Namespace scope values for Preferences.Namespace.
const (
	NamespaceAll        = "all"
	NamespaceContent    = "content"
	NamespaceNonContent = "noncontent"
)

// Direction values for Preferences.Direction.
const (
	DirectionOlder = "older"
	DirectionNewer = "newer"
)

// Preferences is the effective, fully-populated panel configuration.
// Instances are produced by merging layers and are never mutated in place.
type Preferences struct {
	Origin    string // recentchanges or watchlist
	Quantity  int    // entries per poll, 1..20
	Frequency int    // polling interval in seconds, 30..600
	NewOnly   bool   // restrict to page creations
	Namespace string // all, content or noncontent
	Direction string // older or newer
}

// Interval returns the polling interval as a duration.
func (p Preferences) Interval() time.Duration {
	return time.Duration(p.Frequency) * time.Second
}

// PrefPatch is a partial preference set. Nil fields are absent and fall
// through to the next layer during Resolve. It doubles as the persisted
// settings format and as the save payload produced by the settings form.
type PrefPatch struct {
	Origin    *string `json:"origin,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`
	Frequency *int    `json:"frequency,omitempty"`
	NewOnly   *bool   `json:"newOnly,omitempty"`
	Namespace *string `json:"namespace,omitempty"`
	Direction *string `json:"direction,omitempty"`
}

// IsEmpty reports whether no field is set. Persisting an empty patch
// resets stored settings to defaults.
func (p PrefPatch) IsEmpty() bool {
	return p.Origin == nil && p.Quantity == nil && p.Frequency == nil &&
		p.NewOnly == nil && p.Namespace == nil && p.Direction == nil
}

// Apply overlays the patch onto prefs and returns the merged result.
func (p PrefPatch) Apply(prefs Preferences) Preferences {
	if p.Origin != nil {
		prefs.Origin = *p.Origin
	}
	if p.Quantity != nil {
		prefs.Quantity = *p.Quantity
	}
	if p.Frequency != nil {
		prefs.Frequency = *p.Frequency
	}
	if p.NewOnly != nil {
		prefs.NewOnly = *p.NewOnly
	}
	if p.Namespace != nil {
		prefs.Namespace = *p.Namespace
	}
	if p.Direction != nil {
		prefs.Direction = *p.Direction
	}
	return prefs
}

// Merge overlays other onto p field-by-field and returns the result.
// Fields set in other win; fields absent in both stay absent.
func (p PrefPatch) Merge(other PrefPatch) PrefPatch {
	if other.Origin != nil {
		p.Origin = other.Origin
	}
	if other.Quantity != nil {
		p.Quantity = other.Quantity
	}
	if other.Frequency != nil {
		p.Frequency = other.Frequency
	}
	if other.NewOnly != nil {
		p.NewOnly = other.NewOnly
	}
	if other.Namespace != nil {
		p.Namespace = other.Namespace
	}
	if other.Direction != nil {
		p.Direction = other.Direction
	}
	return p
}

// Change kinds reported by the remote listing.
const (
	ChangeKindEdit = "edit"
	ChangeKindNew  = "new"
)

// ChangeRecord is one unpatrolled change as returned by the activity API.
// Records are immutable and consumed once per render cycle.
type ChangeRecord struct {
	Title      string
	RevisionID int64
	OldRevID   int64
	Timestamp  time.Time
	OldSize    int
	NewSize    int
	Tags       []string
	ChangeKind string // edit or new
}

// SizeDelta returns the signed byte delta of the change.
func (c ChangeRecord) SizeDelta() int {
	return c.NewSize - c.OldSize
}

// SiteConfig is static per-deployment configuration, loaded once at
// startup and never mutated.
type SiteConfig struct {
	DangerousTags map[string]bool
	DefaultPrefs  Preferences
}

// NamespaceIndex groups the wiki's namespaces for query restriction.
// Raw slices may contain duplicates; consumers must de-duplicate.
type NamespaceIndex struct {
	Content []int // namespaces the wiki marks as content
	All     []int // every namespace the wiki defines
}

// QueryDescription is one fully-specified request against the activity
// API. Built by the query package, consumed by the fetcher.
type QueryDescription struct {
	List       string   // listing identity: recentchanges or watchlist
	Prefix     string   // API parameter prefix for the listing (rc / wl)
	Kinds      []string // change kinds to request
	Fields     []string // requested record fields
	Direction  string   // older or newer
	Limit      int      // result cap
	MaxAge     int      // freshness hint in seconds
	Namespaces []int    // nil = no restriction
}

// BucketCount is the number of seen changes in one time bucket.
type BucketCount struct {
	Bucket time.Time
	Count  int64
}

// TagCount is a change tag and its frequency among seen changes.
type TagCount struct {
	Tag   string
	Count int64
}
