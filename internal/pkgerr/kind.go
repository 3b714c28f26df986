// Package pkgerr implements the error taxonomy of spec.md §7 as a typed
// wrapper over the standard library's error chaining (errors.Is/errors.As).
// No library in the example pack offers a dedicated error-taxonomy type, so
// this one piece is built on the standard library; see DESIGN.md.
package pkgerr

import "fmt"

// Kind is one of the error categories spec.md §7 names.
type Kind string

const (
	KindTransientIO        Kind = "transient_io"
	KindRateLimited        Kind = "rate_limited"
	KindParseError         Kind = "parse_error"
	KindSchemaViolation    Kind = "schema_violation"
	KindUnresolvedIdentity Kind = "unresolved_identity"
	KindPersistenceError   Kind = "persistence_error"
	KindResourceExhausted  Kind = "resource_exhausted"
	KindConfigurationError Kind = "configuration_error"
	KindCancelled          Kind = "cancelled"
)

// Classified wraps an underlying error with its taxonomy Kind.
type Classified struct {
	Kind Kind
	Op   string
	Err  error
}

func (c *Classified) Error() string {
	if c.Err == nil {
		return fmt.Sprintf("%s: %s", c.Op, c.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", c.Op, c.Kind, c.Err)
}

func (c *Classified) Unwrap() error { return c.Err }

// New classifies err under kind, recording op for diagnostics.
func New(kind Kind, op string, err error) *Classified {
	return &Classified{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) is a Classified of kind.
func Is(err error, kind Kind) bool {
	var c *Classified
	for err != nil {
		if cl, ok := err.(*Classified); ok {
			c = cl
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return c != nil && c.Kind == kind
}

// RecordLevel reports whether a Kind is counted rather than raised per the
// propagation policy in spec.md §7.
func RecordLevel(kind Kind) bool {
	switch kind {
	case KindParseError, KindSchemaViolation, KindUnresolvedIdentity:
		return true
	default:
		return false
	}
}
