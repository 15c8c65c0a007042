package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk6i/ascii-sfu/wire"
)

func TestEncodeHelloFromClient_MatchesLiteralWireBytes(t *testing.T) {
	var buf bytes.Buffer
	err := wire.Encode(&buf, wire.WithString(wire.HelloFromClient, "alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x45, 0x05, 0x61, 0x6C, 0x69, 0x63, 0x65}, buf.Bytes())
}

func TestEncodeHelloFromServer_IsOpcodeOnly(t *testing.T) {
	var buf bytes.Buffer
	err := wire.Encode(&buf, wire.Simple(wire.HelloFromServer))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x46}, buf.Bytes())
}

func TestCodecRoundTrip(t *testing.T) {
	cases := []wire.Command{
		wire.Simple(wire.HelloFromServer),
		wire.Simple(wire.GetActiveUsers),
		wire.Simple(wire.GetRooms),
		wire.Simple(wire.CreateRoomSuccess),
		wire.Simple(wire.DeleteRoomSuccess),
		wire.WithString(wire.HelloFromClient, "alice"),
		wire.WithString(wire.InvalidUsername, "Username 'alice' is already taken."),
		wire.WithString(wire.CreateRoom, "r1"),
		wire.WithString(wire.JoinRoom, "r1"),
		wire.WithStrings(wire.ReturnActiveUsers, []string{"alice", "bob"}),
		wire.WithStrings(wire.ReturnRooms, []string{}),
		wire.WithSID(wire.JoinRoomSuccess, 0x2A),
		wire.WithSID(wire.OtherUserJoinedRoom, 0x01),
		wire.WithSID(wire.OtherUserLeftRoom, 0x01),
	}

	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, wire.Encode(&buf, c))

		got, err := wire.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestDecode_UnknownOpcodeIsMalformed(t *testing.T) {
	_, err := wire.Decode(bytes.NewReader([]byte{0xFF}))
	assert.ErrorIs(t, err, wire.ErrMalformedFrame)
}

func TestDecode_TruncatedStringIsMalformed(t *testing.T) {
	// HelloFromClient declares a 5-byte string but only 2 bytes follow.
	_, err := wire.Decode(bytes.NewReader([]byte{0x45, 0x05, 0x61, 0x6C}))
	assert.ErrorIs(t, err, wire.ErrMalformedFrame)
}

func TestDecode_NonUTF8StringIsMalformed(t *testing.T) {
	_, err := wire.Decode(bytes.NewReader([]byte{0x45, 0x01, 0xFF}))
	assert.ErrorIs(t, err, wire.ErrMalformedFrame)
}

func TestDecode_CleanEOFAtOpcodeBoundaryIsPeerClosed(t *testing.T) {
	_, err := wire.Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
	assert.NotErrorIs(t, err, wire.ErrMalformedFrame)
}

func TestEncode_OversizeStringIsRejected(t *testing.T) {
	big := make([]byte, 256)
	for i := range big {
		big[i] = 'x'
	}
	var buf bytes.Buffer
	err := wire.Encode(&buf, wire.WithString(wire.CreateRoom, string(big)))
	assert.ErrorIs(t, err, wire.ErrOversize)
}

func TestEncode_OversizeMultiStringIsRejected(t *testing.T) {
	ss := make([]string, 256)
	for i := range ss {
		ss[i] = "x"
	}
	var buf bytes.Buffer
	err := wire.Encode(&buf, wire.WithStrings(wire.ReturnRooms, ss))
	assert.ErrorIs(t, err, wire.ErrOversize)
}

func TestDecode_MultiCommandStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.Encode(&buf, wire.WithString(wire.HelloFromClient, "alice")))
	require.NoError(t, wire.Encode(&buf, wire.Simple(wire.GetRooms)))

	first, err := wire.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, wire.HelloFromClient, first.Opcode)

	second, err := wire.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, wire.GetRooms, second.Opcode)
}
