package mwapi

import "fmt"

// FetchError is a transport or protocol failure while reading the
// activity listing. Callers log it and skip the cycle; the next
// scheduled poll tries again.
type FetchError struct {
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch: %s: %v", e.Message, e.Cause)
	}
	return "fetch: " + e.Message
}

func (e *FetchError) Unwrap() error { return e.Cause }

// PersistError is a failed remote settings write. The local value is
// already applied by the time this is returned, so the UI reflects the
// attempted change regardless.
type PersistError struct {
	Key   string
	Cause error
}

func (e *PersistError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persist %q: %v", e.Key, e.Cause)
	}
	return fmt.Sprintf("persist %q failed", e.Key)
}

func (e *PersistError) Unwrap() error { return e.Cause }
