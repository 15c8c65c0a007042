// Package registry is the server's membership registry (users, rooms,
// the SID/RSID identity tables) and the per-user notification bus
// layered on top of it. All mutable state lives here behind three
// mutexes, always acquired in the fixed order rooms -> sids ->
// notifications, so that no acquisition cycle can deadlock two
// sessions against each other.
package registry

import (
	"math/rand"
	"sync"

	"github.com/mk6i/ascii-sfu/wire"
)

type room struct {
	name    string
	members map[string]byte // username -> rsid
}

// Registry holds the server's global membership state.
type Registry struct {
	maxRetries int
	queueCap   int

	roomsMu  sync.RWMutex
	rooms    map[string]*room
	userRoom map[string]string // username -> room name, at most one entry per user

	sidsMu    sync.RWMutex
	sidToUser map[byte]string
	userToSID map[string]byte

	notifyMu sync.RWMutex
	active   map[string]struct{}
	notify   map[string]chan wire.Command
}

// New builds an empty registry. queueCap bounds each user's
// notification channel; maxRetries bounds SID/RSID random-draw
// allocation attempts before reporting exhaustion.
func New(queueCap, maxRetries int) *Registry {
	return &Registry{
		maxRetries: maxRetries,
		queueCap:   queueCap,
		rooms:      make(map[string]*room),
		userRoom:   make(map[string]string),
		sidToUser:  make(map[byte]string),
		userToSID:  make(map[string]byte),
		active:     make(map[string]struct{}),
		notify:     make(map[string]chan wire.Command),
	}
}

// RegisterUser validates name and, if it's free, creates the user's
// notification queue and returns the receive side of it.
func (r *Registry) RegisterUser(name string) (<-chan wire.Command, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	if _, taken := r.active[name]; taken {
		return nil, ErrNameTaken
	}

	ch := make(chan wire.Command, r.queueCap)
	r.active[name] = struct{}{}
	r.notify[name] = ch
	return ch, nil
}

// ListUsers returns the current active usernames. Iteration order is
// not meaningful.
func (r *Registry) ListUsers() []string {
	r.notifyMu.RLock()
	defer r.notifyMu.RUnlock()

	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	return names
}

// ListRooms returns the current room names. Iteration order is not
// meaningful.
func (r *Registry) ListRooms() []string {
	r.roomsMu.RLock()
	defer r.roomsMu.RUnlock()

	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	return names
}

// CreateRoom creates a new, empty room.
func (r *Registry) CreateRoom(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	if _, exists := r.rooms[name]; exists {
		return ErrRoomExists
	}
	r.rooms[name] = &room{name: name, members: make(map[string]byte)}
	return nil
}

// DeleteRoom removes an empty room.
func (r *Registry) DeleteRoom(name string) error {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	rm, exists := r.rooms[name]
	if !exists {
		return ErrRoomNotFound
	}
	if len(rm.members) > 0 {
		return ErrRoomInUse
	}
	delete(r.rooms, name)
	return nil
}

// JoinResult reports the outcome of a successful JoinRoom.
type JoinResult struct {
	SID            byte
	RSID           byte
	OtherRSIDs     []byte
	notifyOthers   map[string]chan wire.Command
	joinedUserRSID byte
}

// JoinRoom allocates a fresh SID and RSID for user in room name and
// records the membership. It snapshots the notification-channel
// handles of pre-existing co-members (while still holding the
// registry locks) but does not publish to them: callers must call
// PublishJoin with the returned result after releasing any locks of
// their own, per the "snapshot under lock, publish outside" rule.
func (r *Registry) JoinRoom(name, user string) (JoinResult, error) {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	rm, exists := r.rooms[name]
	if !exists {
		return JoinResult{}, ErrRoomNotFound
	}

	r.sidsMu.Lock()
	defer r.sidsMu.Unlock()

	rsid, err := allocateByte(func(b byte) bool {
		for _, existing := range rm.members {
			if existing == b {
				return false
			}
		}
		return true
	}, r.maxRetries)
	if err != nil {
		return JoinResult{}, ErrIDExhausted
	}

	sid, err := allocateByte(func(b byte) bool {
		_, taken := r.sidToUser[b]
		return !taken
	}, r.maxRetries)
	if err != nil {
		return JoinResult{}, ErrIDExhausted
	}

	otherRSIDs := make([]byte, 0, len(rm.members))
	for _, existingRSID := range rm.members {
		otherRSIDs = append(otherRSIDs, existingRSID)
	}

	r.notifyMu.RLock()
	notifyOthers := make(map[string]chan wire.Command, len(rm.members))
	for member := range rm.members {
		if ch, ok := r.notify[member]; ok {
			notifyOthers[member] = ch
		}
	}
	r.notifyMu.RUnlock()

	rm.members[user] = rsid
	r.userRoom[user] = name
	r.sidToUser[sid] = user
	r.userToSID[user] = sid

	return JoinResult{
		SID:            sid,
		RSID:           rsid,
		OtherRSIDs:     otherRSIDs,
		notifyOthers:   notifyOthers,
		joinedUserRSID: rsid,
	}, nil
}

// PublishJoin sends OtherUserJoinedRoom(result.RSID) to every
// pre-existing co-member captured in result. Call this only after
// releasing any locks held around JoinRoom, never while holding one.
func PublishJoin(result JoinResult) {
	cmd := wire.WithSID(wire.OtherUserJoinedRoom, result.joinedUserRSID)
	for _, ch := range result.notifyOthers {
		publishNonBlocking(ch, cmd)
	}
}

// DeregisterUser performs the full teardown sequence for a
// disconnecting user: remove them from any room (recording its RSID),
// remove them from the active set, publish OtherUserLeftRoom to every
// remaining member of affected rooms, then drop their notification
// queue. It is idempotent.
func (r *Registry) DeregisterUser(name string) {
	r.roomsMu.Lock()

	var toNotify map[string]chan wire.Command
	var leaveCmd wire.Command
	var hasLeave bool

	if roomName, ok := r.userRoom[name]; ok {
		if rm, exists := r.rooms[roomName]; exists {
			if rsid, member := rm.members[name]; member {
				delete(rm.members, name)
				leaveCmd = wire.WithSID(wire.OtherUserLeftRoom, rsid)
				hasLeave = true

				r.sidsMu.Lock()
				if sid, ok := r.userToSID[name]; ok {
					delete(r.sidToUser, sid)
					delete(r.userToSID, name)
				}
				r.sidsMu.Unlock()

				r.notifyMu.RLock()
				toNotify = make(map[string]chan wire.Command, len(rm.members))
				for member := range rm.members {
					if ch, ok := r.notify[member]; ok {
						toNotify[member] = ch
					}
				}
				r.notifyMu.RUnlock()
			}
		}
		delete(r.userRoom, name)
	}
	r.roomsMu.Unlock()

	r.notifyMu.Lock()
	delete(r.active, name)
	r.notifyMu.Unlock()

	if hasLeave {
		for _, ch := range toNotify {
			publishNonBlocking(ch, leaveCmd)
		}
	}

	r.notifyMu.Lock()
	if ch, ok := r.notify[name]; ok {
		delete(r.notify, name)
		close(ch)
	}
	r.notifyMu.Unlock()
}

// UsernameForSID resolves a SID to the username it was issued to, for
// the datagram relay's per-packet routing lookup.
func (r *Registry) UsernameForSID(sid byte) (string, bool) {
	r.sidsMu.RLock()
	defer r.sidsMu.RUnlock()
	u, ok := r.sidToUser[sid]
	return u, ok
}

// RouteDatagram resolves the sender tag (the sending user's own RSID)
// and the other current members of the sending user's room, for the
// datagram relay's per-packet fan-out.
func (r *Registry) RouteDatagram(username string) (rsid byte, otherMembers []string, ok bool) {
	r.roomsMu.RLock()
	defer r.roomsMu.RUnlock()

	roomName, ok := r.userRoom[username]
	if !ok {
		return 0, nil, false
	}
	rm, ok := r.rooms[roomName]
	if !ok {
		return 0, nil, false
	}
	rsid, ok = rm.members[username]
	if !ok {
		return 0, nil, false
	}
	others := make([]string, 0, len(rm.members))
	for u := range rm.members {
		if u != username {
			others = append(others, u)
		}
	}
	return rsid, others, true
}

func publishNonBlocking(ch chan wire.Command, cmd wire.Command) {
	select {
	case ch <- cmd:
	default:
		// queue full: the event is dropped without being logged, with
		// no retry and no ordering guarantee across subscribers.
	}
}

// allocateByte draws a uniformly random byte value and calls free to
// test it, retrying up to maxRetries times before giving up.
func allocateByte(free func(byte) bool, maxRetries int) (byte, error) {
	for i := 0; i < maxRetries; i++ {
		b := byte(rand.Intn(256))
		if free(b) {
			return b, nil
		}
	}
	return 0, ErrIDExhausted
}
