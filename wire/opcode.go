package wire

// Opcode identifies a command type on the control wire. The numbering
// is part of the protocol: it starts at 0x45 and increments in
// declaration order below. New opcodes must be appended at the end,
// never inserted, or the two sides of the wire will disagree.
type Opcode byte

const (
	HelloFromClient Opcode = 0x45 + iota
	HelloFromServer
	InvalidUsername
	GetActiveUsers
	ReturnActiveUsers
	CreateRoom
	InvalidRoomName
	CreateRoomSuccess
	GetRooms
	ReturnRooms
	JoinRoom
	JoinRoomSuccess
	InvalidJoinRoom
	OtherUserJoinedRoom
	OtherUserLeftRoom
	DeleteRoom
	DeleteRoomSuccess
)

// PayloadKind names one of the five payload shapes a command's
// opcode dictates.
type PayloadKind int

const (
	KindNone PayloadKind = iota
	KindSingleString
	KindMultiString
	KindSID
	KindRSID
)

var opcodeNames = map[Opcode]string{
	HelloFromClient:     "HelloFromClient",
	HelloFromServer:     "HelloFromServer",
	InvalidUsername:     "InvalidUsername",
	GetActiveUsers:      "GetActiveUsers",
	ReturnActiveUsers:   "ReturnActiveUsers",
	CreateRoom:          "CreateRoom",
	InvalidRoomName:     "InvalidRoomName",
	CreateRoomSuccess:   "CreateRoomSuccess",
	GetRooms:            "GetRooms",
	ReturnRooms:         "ReturnRooms",
	JoinRoom:            "JoinRoom",
	JoinRoomSuccess:     "JoinRoomSuccess",
	InvalidJoinRoom:     "InvalidJoinRoom",
	OtherUserJoinedRoom: "OtherUserJoinedRoom",
	OtherUserLeftRoom:   "OtherUserLeftRoom",
	DeleteRoom:          "DeleteRoom",
	DeleteRoomSuccess:   "DeleteRoomSuccess",
}

var opcodeKinds = map[Opcode]PayloadKind{
	HelloFromClient:     KindSingleString,
	HelloFromServer:     KindNone,
	InvalidUsername:     KindSingleString,
	GetActiveUsers:      KindNone,
	ReturnActiveUsers:   KindMultiString,
	CreateRoom:          KindSingleString,
	InvalidRoomName:     KindSingleString,
	CreateRoomSuccess:   KindNone,
	GetRooms:            KindNone,
	ReturnRooms:         KindMultiString,
	JoinRoom:            KindSingleString,
	JoinRoomSuccess:     KindSID,
	InvalidJoinRoom:     KindSingleString,
	OtherUserJoinedRoom: KindRSID,
	OtherUserLeftRoom:   KindRSID,
	DeleteRoom:          KindSingleString,
	DeleteRoomSuccess:   KindNone,
}

// String implements fmt.Stringer for log output.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "UnknownOpcode"
}

// Kind returns the payload kind for op and reports whether op is a
// recognized opcode at all.
func (o Opcode) Kind() (PayloadKind, bool) {
	k, ok := opcodeKinds[o]
	return k, ok
}
