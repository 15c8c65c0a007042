package wire

import (
	"fmt"
	"io"
)

// Encode writes cmd's framed wire representation to w. It fails with
// ErrWrongKind if cmd's populated field doesn't match what cmd.Opcode
// requires, and ErrOversize if a string exceeds 255 bytes or a
// multi-string exceeds 255 entries.
func Encode(w io.Writer, cmd Command) error {
	kind, ok := cmd.Opcode.Kind()
	if !ok {
		return fmt.Errorf("%w: unknown opcode 0x%02x", ErrMalformedFrame, byte(cmd.Opcode))
	}

	buf := make([]byte, 0, 8)
	buf = append(buf, byte(cmd.Opcode))

	switch kind {
	case KindNone:
		if cmd.Str != "" || cmd.Strs != nil || cmd.SIDByte != 0 {
			return fmt.Errorf("%w: %s carries no payload", ErrWrongKind, cmd.Opcode)
		}
	case KindSingleString:
		if cmd.Strs != nil || cmd.SIDByte != 0 {
			return fmt.Errorf("%w: %s carries a single string", ErrWrongKind, cmd.Opcode)
		}
		b, err := appendString(buf, cmd.Str)
		if err != nil {
			return err
		}
		buf = b
	case KindMultiString:
		if cmd.Str != "" || cmd.SIDByte != 0 {
			return fmt.Errorf("%w: %s carries a string list", ErrWrongKind, cmd.Opcode)
		}
		b, err := appendStrings(buf, cmd.Strs)
		if err != nil {
			return err
		}
		buf = b
	case KindSID, KindRSID:
		if cmd.Str != "" || cmd.Strs != nil {
			return fmt.Errorf("%w: %s carries a single id byte", ErrWrongKind, cmd.Opcode)
		}
		buf = append(buf, cmd.SIDByte)
	default:
		return fmt.Errorf("%w: unhandled payload kind", ErrWrongKind)
	}

	_, err := w.Write(buf)
	return err
}

func appendString(buf []byte, s string) ([]byte, error) {
	if len(s) > 255 {
		return nil, fmt.Errorf("%w: string length %d exceeds 255", ErrOversize, len(s))
	}
	buf = append(buf, byte(len(s)))
	buf = append(buf, s...)
	return buf, nil
}

func appendStrings(buf []byte, ss []string) ([]byte, error) {
	if len(ss) > 255 {
		return nil, fmt.Errorf("%w: string count %d exceeds 255", ErrOversize, len(ss))
	}
	buf = append(buf, byte(len(ss)))
	for _, s := range ss {
		b, err := appendString(buf, s)
		if err != nil {
			return nil, err
		}
		buf = b
	}
	return buf, nil
}
