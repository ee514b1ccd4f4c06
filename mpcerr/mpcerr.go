//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package mpcerr defines the error taxonomy of the secure computation
// core. Every error is fatal to the in-flight evaluation round: the
// caller must discard the protocol session and renegotiate a fresh one
// with all parties before resuming.
package mpcerr

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// Kind classifies errors. A Kind is also an error value so that
// errors.Is(err, mpcerr.Channel) tests the classification of err.
type Kind int

// Error kinds.
const (
	Format Kind = iota + 1
	Channel
	WidthMismatch
	Backend
	ProtocolMisuse
)

var kindNames = map[Kind]string{
	Format:         "format error",
	Channel:        "channel error",
	WidthMismatch:  "width mismatch",
	Backend:        "backend error",
	ProtocolMisuse: "protocol misuse",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{Kind %d}", int(k))
}

func (k Kind) Error() string {
	return k.String()
}

// Error describes a failed operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New creates a new error of the kind for the operation op.
func New(kind Kind, op, format string, a ...interface{}) error {
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  xerrors.Errorf(format, a...),
	}
}

// Wrap wraps err as an error of the kind for the operation op. If err
// already carries a classification, it is returned as-is. Wrap returns
// nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  xerrors.Errorf("%w", err),
	}
}

// KindOf returns the classification of err or 0 if err is not
// classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
