package registry

import "errors"

var (
	// ErrNameInvalid is returned when a username or room name fails the
	// shared length/charset validation rule.
	ErrNameInvalid = errors.New("registry: name must be 1-20 ASCII alphanumeric, '_', or '-' characters")
	// ErrNameTaken is returned by RegisterUser for an already-active username.
	ErrNameTaken = errors.New("registry: name is already taken")
	// ErrRoomExists is returned by CreateRoom for a name already in use.
	ErrRoomExists = errors.New("registry: room already exists")
	// ErrRoomNotFound is returned by DeleteRoom/JoinRoom for an unknown room.
	ErrRoomNotFound = errors.New("registry: room not found")
	// ErrRoomInUse is returned by DeleteRoom when the room has members.
	ErrRoomInUse = errors.New("registry: room is in use and cannot be deleted")
	// ErrIDExhausted is returned when a SID or RSID could not be allocated
	// within the configured number of random-draw attempts.
	ErrIDExhausted = errors.New("registry: could not allocate a unique id")
)
