package wire

import "errors"

// ErrMalformedFrame is returned when a decoded byte stream cannot be
// parsed into a well-formed command: an unknown opcode, a truncated
// length-prefixed field, or non-UTF-8 string bytes.
var ErrMalformedFrame = errors.New("wire: malformed frame")

// ErrOversize is returned by Encode when a string payload exceeds 255
// bytes or a multi-string payload exceeds 255 entries.
var ErrOversize = errors.New("wire: payload oversize")

// ErrWrongKind is returned by Encode when a Command's populated
// fields don't match the payload kind its opcode requires.
var ErrWrongKind = errors.New("wire: command does not match opcode's payload kind")
