package control

import (
	"context"
	"errors"
	"fmt"

	"github.com/mk6i/ascii-sfu/registry"
	"github.com/mk6i/ascii-sfu/wire"
)

// idle runs the Idle state's request/response loop until the user
// either joins a room (returning inCall=true) or the session ends.
func (s *Session) idle(ctx context.Context) (inCall bool, err error) {
	for {
		cmd, err := wire.Decode(s.conn)
		if err != nil {
			return false, err
		}

		switch cmd.Opcode {
		case wire.GetActiveUsers:
			if err := wire.Encode(s.conn, wire.WithStrings(wire.ReturnActiveUsers, s.reg.ListUsers())); err != nil {
				return false, err
			}
		case wire.GetRooms:
			if err := wire.Encode(s.conn, wire.WithStrings(wire.ReturnRooms, s.reg.ListRooms())); err != nil {
				return false, err
			}
		case wire.CreateRoom:
			if err := s.handleCreateRoom(cmd.Str); err != nil {
				return false, err
			}
		case wire.DeleteRoom:
			if err := s.handleDeleteRoom(cmd.Str); err != nil {
				return false, err
			}
		case wire.JoinRoom:
			joined, err := s.handleJoinRoom(ctx, cmd.Str)
			if err != nil {
				return false, err
			}
			if joined {
				return true, nil
			}
		default:
			return false, fmt.Errorf("%w: unexpected opcode %s in Idle", wire.ErrMalformedFrame, cmd.Opcode)
		}
	}
}

func (s *Session) handleCreateRoom(name string) error {
	if err := s.reg.CreateRoom(name); err != nil {
		return wire.Encode(s.conn, wire.WithString(wire.InvalidRoomName, roomErrorReason(name, err)))
	}
	return wire.Encode(s.conn, wire.Simple(wire.CreateRoomSuccess))
}

func (s *Session) handleDeleteRoom(name string) error {
	if err := s.reg.DeleteRoom(name); err != nil {
		return wire.Encode(s.conn, wire.WithString(wire.InvalidRoomName, roomErrorReason(name, err)))
	}
	return wire.Encode(s.conn, wire.Simple(wire.DeleteRoomSuccess))
}

// handleJoinRoom returns joined=true once JoinRoomSuccess and the
// pre-existing co-members' OtherUserJoinedRoom notices have been
// written to the client's own socket and the join has been published
// to pre-existing members' notification queues.
func (s *Session) handleJoinRoom(ctx context.Context, name string) (joined bool, err error) {
	result, joinErr := s.reg.JoinRoom(name, s.username)
	if joinErr != nil {
		reason := joinErrorReason(name, joinErr)
		return false, wire.Encode(s.conn, wire.WithString(wire.InvalidJoinRoom, reason))
	}

	registry.PublishJoin(result)

	if err := wire.Encode(s.conn, wire.WithSID(wire.JoinRoomSuccess, result.SID)); err != nil {
		return false, err
	}
	for _, rsid := range result.OtherRSIDs {
		if err := wire.Encode(s.conn, wire.WithSID(wire.OtherUserJoinedRoom, rsid)); err != nil {
			return false, err
		}
	}

	s.logger.InfoContext(ctx, "user joined room", "room", name, "sid", result.SID, "rsid", result.RSID)

	return true, nil
}

func roomErrorReason(name string, err error) string {
	switch {
	case errors.Is(err, registry.ErrRoomExists):
		return fmt.Sprintf("Room '%s' already exists.", name)
	case errors.Is(err, registry.ErrRoomInUse):
		return fmt.Sprintf("Room '%s' is in use and cannot be deleted at this time.", name)
	case errors.Is(err, registry.ErrRoomNotFound):
		return fmt.Sprintf("Room '%s' does not exist.", name)
	default:
		return fmt.Sprintf("Room name '%s' is invalid.", name)
	}
}

func joinErrorReason(name string, err error) string {
	switch {
	case errors.Is(err, registry.ErrRoomNotFound):
		return fmt.Sprintf("Room '%s' does not exist.", name)
	case errors.Is(err, registry.ErrIDExhausted):
		return "Unable to allocate a stream id, try again."
	default:
		return fmt.Sprintf("Unable to join room '%s'.", name)
	}
}
