package layer

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind categorizes why a layer operation failed.
type Kind int

const (
	// KindEnvironment covers the working directory and the output directory.
	KindEnvironment Kind = iota + 1
	// KindEngine covers everything the GeoPackage/SQLite engine rejects.
	KindEngine
	// KindSchema covers field declarations and feature values that don't match them.
	KindSchema
	// KindConfig covers invalid Options.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindEngine:
		return "engine"
	case KindSchema:
		return "schema"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

var (
	// ErrEnvironment, ErrEngine, ErrSchema and ErrConfig match an *Error of that Kind with errors.Is.
	ErrEnvironment = &Error{Kind: KindEnvironment}
	ErrEngine      = &Error{Kind: KindEngine}
	ErrSchema      = &Error{Kind: KindSchema}
	ErrConfig      = &Error{Kind: KindConfig}

	ErrClosed   = errors.New("layer is closed")
	ErrConsumed = errors.New("fields were already declared for this layer")
)

// Error is returned by every fallible layer operation.
// Callers decide whether a failure aborts the run.
type Error struct {
	Kind  Kind
	Op    string
	Layer string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error", e.Kind)
	}
	if e.Layer == "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s layer '%s': %v", e.Kind, e.Op, e.Layer, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel (ErrEngine, ...) of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Op == "" && t.Kind == e.Kind
}

func newError(kind Kind, op, layer string, err error) *Error {
	return &Error{Kind: kind, Op: op, Layer: layer, Err: err}
}
