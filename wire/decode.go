package wire

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Decode reads exactly one framed command from r.
//
// A clean EOF while reading the opcode byte is reported as io.EOF, not
// as ErrMalformedFrame: it signals the peer closed the connection
// between commands, which is the normal end of a control session, not
// a protocol violation. Any other truncation is malformed-frame.
func Decode(r io.Reader) (Command, error) {
	var opBuf [1]byte
	if _, err := io.ReadFull(r, opBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Command{}, io.EOF
		}
		return Command{}, fmt.Errorf("%w: reading opcode: %v", ErrMalformedFrame, err)
	}

	op := Opcode(opBuf[0])
	kind, ok := op.Kind()
	if !ok {
		return Command{}, fmt.Errorf("%w: unknown opcode 0x%02x", ErrMalformedFrame, opBuf[0])
	}

	cmd := Command{Opcode: op}
	switch kind {
	case KindNone:
		// no payload to read
	case KindSingleString:
		s, err := readString(r)
		if err != nil {
			return Command{}, err
		}
		cmd.Str = s
	case KindMultiString:
		ss, err := readStrings(r)
		if err != nil {
			return Command{}, err
		}
		cmd.Strs = ss
	case KindSID, KindRSID:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Command{}, fmt.Errorf("%w: reading sid: %v", ErrMalformedFrame, err)
		}
		cmd.SIDByte = b[0]
	}

	return cmd, nil
}

func readString(r io.Reader) (string, error) {
	var lenBuf [1]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", fmt.Errorf("%w: reading string length: %v", ErrMalformedFrame, err)
	}
	n := int(lenBuf[0])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: reading string body: %v", ErrMalformedFrame, err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: string body is not valid UTF-8", ErrMalformedFrame)
	}
	return string(buf), nil
}

func readStrings(r io.Reader) ([]string, error) {
	var countBuf [1]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading string count: %v", ErrMalformedFrame, err)
	}
	k := int(countBuf[0])
	ss := make([]string, 0, k)
	for i := 0; i < k; i++ {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return ss, nil
}
