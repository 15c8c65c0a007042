package wire

// Command is a single decoded (or to-be-encoded) control message. Only
// the field matching the opcode's payload kind is meaningful; the
// constructor functions below keep callers from having to know which.
type Command struct {
	Opcode  Opcode
	Str     string
	Strs    []string
	SIDByte byte
}

// Simple builds a payload-less command, e.g. HelloFromServer.
func Simple(op Opcode) Command {
	return Command{Opcode: op}
}

// WithString builds a command carrying a SingleString payload, e.g.
// HelloFromClient("alice").
func WithString(op Opcode, s string) Command {
	return Command{Opcode: op, Str: s}
}

// WithStrings builds a command carrying a MultiString payload, e.g.
// ReturnRooms([...]).
func WithStrings(op Opcode, ss []string) Command {
	return Command{Opcode: op, Strs: ss}
}

// WithSID builds a command carrying a 1-byte SID or RSID payload, e.g.
// JoinRoomSuccess(sid) or OtherUserJoinedRoom(rsid).
func WithSID(op Opcode, b byte) Command {
	return Command{Opcode: op, SIDByte: b}
}
