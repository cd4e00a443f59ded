// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import "fmt"

// Code is a stable, numeric error classification returned by every
// resolution, encoding, and formatting operation. Codes are part of the
// external contract and must not be renumbered across versions.
type Code int

const (
	SUCCESS Code = iota
	ERR_NOTFOUND
	ERR_ATTR
	ERR_ATTR_VAL
	ERR_ATTR_SET
	ERR_FEATCOMB
	ERR_NOMEM
	ERR_INVAL
	ERR_NOINIT
)

var codeStrings = [...]string{
	SUCCESS:      "success",
	ERR_NOTFOUND: "event or PMU not found",
	ERR_ATTR:     "unknown attribute",
	ERR_ATTR_VAL: "attribute value out of range",
	ERR_ATTR_SET: "attribute already set to a conflicting value",
	ERR_FEATCOMB: "illegal combination of umasks",
	ERR_NOMEM:    "not enough memory",
	ERR_INVAL:    "invalid parameter",
	ERR_NOINIT:   "library not initialized",
}

// StrError returns the stable textual form of an error code. It never
// inspects any particular [Error] value; it is a pure lookup so that
// discovery tools can enumerate every code without triggering one.
func StrError(c Code) string {
	if int(c) < 0 || int(c) >= len(codeStrings) {
		return "unknown error code"
	}
	return codeStrings[c]
}

// Error is the error type returned by every public operation that can
// fail. It always carries one of the stable [Code] values.
type Error struct {
	Code Code
	msg  string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return StrError(e.Code)
}

func newError(c Code, format string, args ...any) *Error {
	msg := StrError(c)
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: c, msg: msg}
}

// CodeOf extracts the stable [Code] from any error returned by this
// package. Errors not produced by this package classify as ERR_INVAL.
func CodeOf(err error) Code {
	if err == nil {
		return SUCCESS
	}
	if pe, ok := err.(*Error); ok {
		return pe.Code
	}
	return ERR_INVAL
}
