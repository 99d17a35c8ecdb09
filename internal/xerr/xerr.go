// Package xerr wraps internal engine errors (bugs, not source diagnostics)
// with a stack frame, the same way the teacher corpus's goccy/go-yaml/errors
// package wraps decode/encode failures with golang.org/x/xerrors.
package xerr

import "golang.org/x/xerrors"

// Wrap annotates err with msg and a caller frame for %+v debugging.
func Wrap(err error, msg string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	a := append(append([]interface{}{}, args...), err)
	return xerrors.Errorf(msg+": %w", a...)
}

// Newf builds a fresh internal error with a caller frame.
func Newf(msg string, args ...interface{}) error {
	return xerrors.Errorf(msg, args...)
}
