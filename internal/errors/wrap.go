package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// The helpers below forward to cockroachdb/errors so callers only import
// this package.

func New(msg string) error                              { return crdb.New(msg) }
func Newf(format string, args ...any) error             { return crdb.Newf(format, args...) }
func Wrap(err error, msg string) error                  { return crdb.Wrap(err, msg) }
func Wrapf(err error, format string, args ...any) error { return crdb.Wrapf(err, format, args...) }
func Is(err, target error) bool                         { return crdb.Is(err, target) }
func As(err error, target any) bool                     { return crdb.As(err, target) }
func Join(errs ...error) error                          { return crdb.Join(errs...) }

// Mark tags err with the given sentinel so that Is(err, sentinel) holds
// while the message of err is kept unchanged.
func Mark(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	return crdb.Mark(err, sentinel)
}

// WithHint attaches a user-facing hint; retrieve it with Hints.
func WithHint(err error, hint string) error { return crdb.WithHint(err, hint) }

// Hints returns all hints attached to err.
func Hints(err error) []string { return crdb.GetAllHints(err) }
