package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes. Unclassified errors exit with ExitUser.
const (
	ExitSuccess = 0
	ExitUser    = 1
	ExitSystem  = 2
)

// Sentinel errors for the failure taxonomy of configuration documents.
var (
	// ErrParse indicates a document was malformed after comment stripping.
	ErrParse = crdb.New("parse error")

	// ErrNotFound indicates the requested file or resource does not exist.
	ErrNotFound = crdb.New("not found")

	// ErrIO indicates any other read or write failure.
	ErrIO = crdb.New("i/o error")

	// ErrSideEffect indicates the post-save command failed.
	ErrSideEffect = crdb.New("post-save command failed")

	// ErrRegistryUnavailable indicates the tool registry is not loaded.
	// It is distinct from an empty registry.
	ErrRegistryUnavailable = crdb.New("tool registry is not available")

	// ErrInvalidConfig indicates a document decoded but failed shape validation.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrMissingName indicates a required name field is missing.
	ErrMissingName = crdb.New("name is required")
)

// Kind names a class of the error taxonomy.
type Kind string

const (
	KindNone                Kind = ""
	KindParse               Kind = "parse"
	KindNotFound            Kind = "not_found"
	KindIO                  Kind = "io"
	KindSideEffect          Kind = "side_effect"
	KindRegistryUnavailable Kind = "registry_unavailable"
)

// KindOf classifies err. Errors that match no sentinel are reported as KindIO,
// since every remaining failure of this tool comes from the file system.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case crdb.Is(err, ErrRegistryUnavailable):
		return KindRegistryUnavailable
	case crdb.Is(err, ErrSideEffect):
		return KindSideEffect
	case crdb.Is(err, ErrNotFound):
		return KindNotFound
	case crdb.Is(err, ErrParse), crdb.Is(err, ErrInvalidConfig):
		return KindParse
	default:
		return KindIO
	}
}

// ExitError carries the exit code for a failed command and an optional
// line of advice printed after the error.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError returns an ExitError without a suggestion.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError reports bad input or configuration (ExitUser).
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError reports an environment failure such as I/O or a missing
// registry (ExitSystem).
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError is a user error that points at "mcpsel doctor".
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Run: mcpsel doctor")
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for err: ExitSuccess for nil, the
// code of the outermost ExitError in the chain, otherwise ExitUser.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *ExitError
	if crdb.As(err, &e) {
		return e.Code
	}
	return ExitUser
}
