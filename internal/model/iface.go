package model

import "context"

// ActivityFetcher issues one query against the remote activity listing.
// A transport or protocol failure is returned as an error the caller is
// expected to log and skip; the fetcher performs no retries.
type ActivityFetcher interface {
	RecentChanges(ctx context.Context, q QueryDescription) ([]ChangeRecord, error)
}

// OptionWriter replicates one setting to the remote per-user options
// endpoint. The write is best-effort and independent of local storage.
type OptionWriter interface {
	SaveOption(ctx context.Context, key, value string) error
}

// LocalSettings is the session-scoped key-value settings store.
// Get returns false when the key has never been written.
type LocalSettings interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// HistoryStore records every change the panel has rendered and answers
// aggregate questions about them. Recording is best-effort; a failure
// never interrupts the poll loop.
type HistoryStore interface {
	Record(records []ChangeRecord) error
	TotalSeen() (int64, error)
	CountsByMinute(buckets int) ([]BucketCount, error)
	TopTags(limit int) ([]TagCount, error)
}
