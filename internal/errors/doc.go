// Package errors provides error handling conventions for mcpsel.
//
// It defines the failure taxonomy of configuration documents as sentinel
// errors, an ExitError type for CLI exit code handling, and thin wrappers
// over github.com/cockroachdb/errors so the rest of the code base needs a
// single import.
//
// # Taxonomy
//
//   - ErrParse: a document was malformed after comment stripping
//   - ErrNotFound: a file was absent
//   - ErrIO: any other read or write failure
//   - ErrSideEffect: the post-save command failed
//   - ErrRegistryUnavailable: the tool registry is not loaded
//
// Path resolution never fails and has no sentinel. Use [Mark] to tag a
// low-level error with a sentinel without changing its message, and
// [KindOf] to classify an error:
//
//	if errors.Is(err, mcpselerrors.ErrNotFound) {
//	    // absent file, fall back to an empty document
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, missing registry, etc.)
package errors
