package control

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk6i/ascii-sfu/registry"
	"github.com/mk6i/ascii-sfu/wire"
)

func newTestSession(reg *registry.Registry) (*Session, net.Conn) {
	clientConn, serverConn := net.Pipe()
	return NewSession(serverConn, reg, slog.Default()), clientConn
}

func runSession(t *testing.T, sess *Session) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- sess.Run(context.Background())
	}()
	return done
}

func TestSession_HelloAccepted(t *testing.T) {
	reg := registry.New(16, 1000)
	sess, client := newTestSession(reg)
	done := runSession(t, sess)

	require.NoError(t, wire.Encode(client, wire.WithString(wire.HelloFromClient, "alice")))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.HelloFromServer, resp.Opcode)

	require.NoError(t, client.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session did not terminate after client closed the connection")
	}
}

func TestSession_HelloRejectsDuplicateUsername(t *testing.T) {
	reg := registry.New(16, 1000)
	_, err := reg.RegisterUser("alice")
	require.NoError(t, err)

	sess, client := newTestSession(reg)
	runSession(t, sess)
	defer client.Close()

	require.NoError(t, wire.Encode(client, wire.WithString(wire.HelloFromClient, "alice")))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.InvalidUsername, resp.Opcode)
	assert.Contains(t, resp.Str, "already taken")
}

func TestSession_HelloRejectsInvalidUsername(t *testing.T) {
	reg := registry.New(16, 1000)
	sess, client := newTestSession(reg)
	runSession(t, sess)
	defer client.Close()

	require.NoError(t, wire.Encode(client, wire.WithString(wire.HelloFromClient, "not a valid name!")))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.InvalidUsername, resp.Opcode)
	assert.Contains(t, resp.Str, "invalid")
}

func hello(t *testing.T, client net.Conn, username string) {
	t.Helper()
	require.NoError(t, wire.Encode(client, wire.WithString(wire.HelloFromClient, username)))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	require.Equal(t, wire.HelloFromServer, resp.Opcode)
}

func TestSession_RoomLifecycle(t *testing.T) {
	reg := registry.New(16, 1000)
	sess, client := newTestSession(reg)
	runSession(t, sess)
	defer client.Close()

	hello(t, client, "alice")

	require.NoError(t, wire.Encode(client, wire.Simple(wire.GetRooms)))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	require.Equal(t, wire.ReturnRooms, resp.Opcode)
	assert.Empty(t, resp.Strs)

	require.NoError(t, wire.Encode(client, wire.WithString(wire.CreateRoom, "lobby")))
	resp, err = wire.Decode(client)
	require.NoError(t, err)
	require.Equal(t, wire.CreateRoomSuccess, resp.Opcode)

	require.NoError(t, wire.Encode(client, wire.WithString(wire.CreateRoom, "lobby")))
	resp, err = wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.InvalidRoomName, resp.Opcode)

	require.NoError(t, wire.Encode(client, wire.Simple(wire.GetRooms)))
	resp, err = wire.Decode(client)
	require.NoError(t, err)
	require.Equal(t, wire.ReturnRooms, resp.Opcode)
	assert.Equal(t, []string{"lobby"}, resp.Strs)

	require.NoError(t, wire.Encode(client, wire.WithString(wire.DeleteRoom, "lobby")))
	resp, err = wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.DeleteRoomSuccess, resp.Opcode)
}

func TestSession_JoinRoomSuccessRegistersSID(t *testing.T) {
	reg := registry.New(16, 1000)
	require.NoError(t, reg.CreateRoom("lobby"))

	sess, client := newTestSession(reg)
	runSession(t, sess)
	defer client.Close()

	hello(t, client, "alice")

	require.NoError(t, wire.Encode(client, wire.WithString(wire.JoinRoom, "lobby")))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	require.Equal(t, wire.JoinRoomSuccess, resp.Opcode)

	owner, ok := reg.UsernameForSID(resp.SIDByte)
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)
}

func TestSession_JoinRoomRejectsUnknownRoom(t *testing.T) {
	reg := registry.New(16, 1000)
	sess, client := newTestSession(reg)
	runSession(t, sess)
	defer client.Close()

	hello(t, client, "alice")

	require.NoError(t, wire.Encode(client, wire.WithString(wire.JoinRoom, "nope")))
	resp, err := wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.InvalidJoinRoom, resp.Opcode)
}

func TestSession_DeleteRoomRejectedWhileInUse(t *testing.T) {
	reg := registry.New(16, 1000)
	require.NoError(t, reg.CreateRoom("lobby"))

	joiner, joinerConn := newTestSession(reg)
	runSession(t, joiner)
	defer joinerConn.Close()
	hello(t, joinerConn, "alice")
	require.NoError(t, wire.Encode(joinerConn, wire.WithString(wire.JoinRoom, "lobby")))
	resp, err := wire.Decode(joinerConn)
	require.NoError(t, err)
	require.Equal(t, wire.JoinRoomSuccess, resp.Opcode)

	deleter, deleterConn := newTestSession(reg)
	runSession(t, deleter)
	defer deleterConn.Close()
	hello(t, deleterConn, "bob")

	require.NoError(t, wire.Encode(deleterConn, wire.WithString(wire.DeleteRoom, "lobby")))
	resp, err = wire.Decode(deleterConn)
	require.NoError(t, err)
	assert.Equal(t, wire.InvalidRoomName, resp.Opcode)
	assert.Contains(t, resp.Str, "in use")
}

// TestSession_JoinNotifiesExistingMembers exercises the full C4+C5
// integration spec.md §8 requires: a second member's join must reach
// the first member's control connection as OtherUserJoinedRoom while
// that session is already in its InCall read/notify loop.
func TestSession_JoinNotifiesExistingMembers(t *testing.T) {
	reg := registry.New(16, 1000)
	require.NoError(t, reg.CreateRoom("lobby"))

	first, firstConn := newTestSession(reg)
	runSession(t, first)
	defer firstConn.Close()
	hello(t, firstConn, "alice")

	require.NoError(t, wire.Encode(firstConn, wire.WithString(wire.JoinRoom, "lobby")))
	resp, err := wire.Decode(firstConn)
	require.NoError(t, err)
	require.Equal(t, wire.JoinRoomSuccess, resp.Opcode)

	second, secondConn := newTestSession(reg)
	runSession(t, second)
	defer secondConn.Close()
	hello(t, secondConn, "bob")

	require.NoError(t, wire.Encode(secondConn, wire.WithString(wire.JoinRoom, "lobby")))
	resp, err = wire.Decode(secondConn)
	require.NoError(t, err)
	require.Equal(t, wire.JoinRoomSuccess, resp.Opcode)
	bobRSID, _, ok := reg.RouteDatagram("bob")
	require.True(t, ok)

	notifyCh := make(chan wire.Command, 1)
	go func() {
		cmd, err := wire.Decode(firstConn)
		if err == nil {
			notifyCh <- cmd
		}
	}()

	select {
	case cmd := <-notifyCh:
		assert.Equal(t, wire.OtherUserJoinedRoom, cmd.Opcode)
		assert.Equal(t, bobRSID, cmd.SIDByte)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OtherUserJoinedRoom notification")
	}
}
