package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when aggregates are requested for a snapshot with no rows.
var ErrEmptyDataset = errors.New("empty dataset")

// FetchErrorKind classifies a failed fetch.
type FetchErrorKind int

const (
	// NetworkError covers transport failures: DNS, connect, timeout, reset.
	NetworkError FetchErrorKind = iota + 1
	// HTTPStatusError is a response other than 200 OK.
	HTTPStatusError
	// ParseError is a body that is not the expected JSON document.
	ParseError
)

func (k FetchErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network"
	case HTTPStatusError:
		return "http_status"
	case ParseError:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is returned by fetchers instead of raw transport errors.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // set for HTTPStatusError
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case HTTPStatusError:
		if e.Err != nil {
			return fmt.Sprintf("fetch: unexpected status %d: %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("fetch: unexpected status %d", e.StatusCode)
	default:
		return fmt.Sprintf("fetch: %s error: %v", e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports a missing or out-of-domain field in a raw record.
type SchemaError struct {
	Field  string // raw field name, e.g. "date"
	Row    int    // zero-based index in the raw results
	Reason string // empty for a missing field
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("schema: row %d: missing field %q", e.Row, e.Field)
	}
	return fmt.Sprintf("schema: row %d: field %q: %s", e.Row, e.Field, e.Reason)
}

// DateParseError reports a report date that could not be parsed.
type DateParseError struct {
	Value string
	Row   int
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date %q in row %d: %v", e.Value, e.Row, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
