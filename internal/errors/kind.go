package errors

import "errors"

// IndexKind is the closed set of index failure modes the store reports.
// Recovery logic switches on these kinds instead of matching substrings
// of engine error messages.
type IndexKind int

const (
	// KindNone means the error carries no index classification.
	KindNone IndexKind = iota
	// KindCorrupt means the on-disk index exists but is unreadable
	// (bad metadata marker, unreadable segment, killed writer).
	KindCorrupt
	// KindMissing means the metadata marker or index directory is gone.
	KindMissing
	// KindBusy means another writer holds the index lock.
	KindBusy
	// KindIO means the index directory cannot be created or read at all.
	KindIO
)

// String returns the kind name for logs.
func (k IndexKind) String() string {
	switch k {
	case KindCorrupt:
		return "corrupt"
	case KindMissing:
		return "missing"
	case KindBusy:
		return "busy"
	case KindIO:
		return "io"
	default:
		return "none"
	}
}

// Recoverable reports whether the write path should respond with the
// wipe-and-rebuild cycle. Only states a fresh index can repair qualify:
// corrupt and missing. Busy means a live concurrent writer holds the
// lock (the OS releases a dead writer's flock), so wiping would destroy
// healthy data; it is surfaced to the caller instead. Plain IO failures
// are surfaced directly too.
func (k IndexKind) Recoverable() bool {
	return k == KindCorrupt || k == KindMissing
}

// KindOf classifies an error chain into an IndexKind by its code.
func KindOf(err error) IndexKind {
	var ie *InkError
	if !errors.As(err, &ie) {
		return KindNone
	}
	switch ie.Code {
	case ErrCodeIndexCorrupt:
		return KindCorrupt
	case ErrCodeIndexMissing:
		return KindMissing
	case ErrCodeIndexBusy:
		return KindBusy
	case ErrCodeIndexIO:
		return KindIO
	default:
		return KindNone
	}
}

// IndexError builds an InkError for an index failure of the given kind.
func IndexError(kind IndexKind, message string, cause error) *InkError {
	code := ErrCodeIndexIO
	switch kind {
	case KindCorrupt:
		code = ErrCodeIndexCorrupt
	case KindMissing:
		code = ErrCodeIndexMissing
	case KindBusy:
		code = ErrCodeIndexBusy
	}
	return New(code, message, cause)
}
