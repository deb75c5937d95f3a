package window

import (
	"context"
	"errors"
)

// ErrNoDisplay is returned by backends that need an X server when none is reachable
var ErrNoDisplay = errors.New("no X11 display available")

// ID identifies one window instance. It is opaque outside the backend that produced it.
type ID string

// LookupStatus is the outcome of a window lookup
type LookupStatus int

const (
	// NotFound means the query ran and reported no matching window
	NotFound LookupStatus = iota
	// Found means at least one window matched; the first match is returned
	Found
	// QueryError means the query tool failed (non-zero exit, missing binary, permission)
	QueryError
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case QueryError:
		return "query_error"
	default:
		return "unknown"
	}
}

// Lookup is the result of a Locator query
type Lookup struct {
	Status LookupStatus
	ID     ID    // set when Status == Found
	Err    error // set when Status == QueryError
}

// FoundWindow builds a Found lookup
func FoundWindow(id ID) Lookup {
	return Lookup{Status: Found, ID: id}
}

// NoWindow builds a NotFound lookup
func NoWindow() Lookup {
	return Lookup{Status: NotFound}
}

// QueryFailed builds a QueryError lookup
func QueryFailed(err error) Lookup {
	return Lookup{Status: QueryError, Err: err}
}

// Locator finds the first window belonging to a window class
type Locator interface {
	// Locate returns Found, NotFound or QueryError. A non-nil error is reserved for
	// failures of the execution primitive itself (e.g. a cancelled context).
	Locate(ctx context.Context, className string) (Lookup, error)
}

// TitleReader reads the display title of a window
type TitleReader interface {
	// ReadTitle returns the window title, possibly empty. A failing query is an error.
	ReadTitle(ctx context.Context, id ID) (string, error)
}

// Source is a backend that can both locate windows and read their titles
type Source interface {
	Locator
	TitleReader

	// Name returns the backend name ("xprop" or "xgb")
	Name() string

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the backend
	Close() error
}
