package client

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/mk6i/ascii-sfu/wire"
)

// ErrAlreadyJoined is returned by JoinRoom when called a second time
// in the same process: a client session may join at most one room
// per process lifetime.
var ErrAlreadyJoined = errors.New("client: already joined a room in this process")

// Client drives the control-channel side of the protocol: hello,
// room/user listing, room management, and the single join that starts
// a call.
type Client struct {
	conn     net.Conn
	username string

	mu     sync.Mutex
	joined bool
}

// Dial opens the control connection to addr (host:port).
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the control connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Hello performs Connecting -> Greeting: sends HelloFromClient and
// waits for acceptance.
func (c *Client) Hello(username string) error {
	if err := wire.Encode(c.conn, wire.WithString(wire.HelloFromClient, username)); err != nil {
		return err
	}
	resp, err := wire.Decode(c.conn)
	if err != nil {
		return err
	}
	switch resp.Opcode {
	case wire.HelloFromServer:
		c.username = username
		return nil
	case wire.InvalidUsername:
		return fmt.Errorf("hello rejected: %s", resp.Str)
	default:
		return fmt.Errorf("unexpected response opcode %s to HelloFromClient", resp.Opcode)
	}
}

// GetActiveUsers asks the server for the current active username list.
func (c *Client) GetActiveUsers() ([]string, error) {
	if err := wire.Encode(c.conn, wire.Simple(wire.GetActiveUsers)); err != nil {
		return nil, err
	}
	resp, err := wire.Decode(c.conn)
	if err != nil {
		return nil, err
	}
	if resp.Opcode != wire.ReturnActiveUsers {
		return nil, fmt.Errorf("unexpected response opcode %s to GetActiveUsers", resp.Opcode)
	}
	return resp.Strs, nil
}

// GetRooms asks the server for the current room list.
func (c *Client) GetRooms() ([]string, error) {
	if err := wire.Encode(c.conn, wire.Simple(wire.GetRooms)); err != nil {
		return nil, err
	}
	resp, err := wire.Decode(c.conn)
	if err != nil {
		return nil, err
	}
	if resp.Opcode != wire.ReturnRooms {
		return nil, fmt.Errorf("unexpected response opcode %s to GetRooms", resp.Opcode)
	}
	return resp.Strs, nil
}

// CreateRoom asks the server to create a room.
func (c *Client) CreateRoom(name string) error {
	if err := wire.Encode(c.conn, wire.WithString(wire.CreateRoom, name)); err != nil {
		return err
	}
	resp, err := wire.Decode(c.conn)
	if err != nil {
		return err
	}
	switch resp.Opcode {
	case wire.CreateRoomSuccess:
		return nil
	case wire.InvalidRoomName:
		return fmt.Errorf("create room rejected: %s", resp.Str)
	default:
		return fmt.Errorf("unexpected response opcode %s to CreateRoom", resp.Opcode)
	}
}

// DeleteRoom asks the server to delete an empty room.
func (c *Client) DeleteRoom(name string) error {
	if err := wire.Encode(c.conn, wire.WithString(wire.DeleteRoom, name)); err != nil {
		return err
	}
	resp, err := wire.Decode(c.conn)
	if err != nil {
		return err
	}
	switch resp.Opcode {
	case wire.DeleteRoomSuccess:
		return nil
	case wire.InvalidRoomName:
		return fmt.Errorf("delete room rejected: %s", resp.Str)
	default:
		return fmt.Errorf("unexpected response opcode %s to DeleteRoom", resp.Opcode)
	}
}

// JoinRoom asks the server to join a room and, on success, starts the
// background loop that reads every subsequent control-channel command
// (the initial per-member OtherUserJoinedRoom burst and every later
// membership notification alike — the wire gives no way to tell them
// apart, and a Call doesn't need to) onto the returned channel.
func (c *Client) JoinRoom(name string) (sid byte, notify <-chan wire.Command, err error) {
	c.mu.Lock()
	if c.joined {
		c.mu.Unlock()
		return 0, nil, ErrAlreadyJoined
	}
	c.joined = true
	c.mu.Unlock()

	if err := wire.Encode(c.conn, wire.WithString(wire.JoinRoom, name)); err != nil {
		return 0, nil, err
	}
	resp, err := wire.Decode(c.conn)
	if err != nil {
		return 0, nil, err
	}
	switch resp.Opcode {
	case wire.JoinRoomSuccess:
		sid = resp.SIDByte
	case wire.InvalidJoinRoom:
		return 0, nil, fmt.Errorf("join rejected: %s", resp.Str)
	default:
		return 0, nil, fmt.Errorf("unexpected response opcode %s to JoinRoom", resp.Opcode)
	}

	notifyCh := make(chan wire.Command, 16)
	go c.controlReadLoop(notifyCh)
	return sid, notifyCh, nil
}

func (c *Client) controlReadLoop(ch chan<- wire.Command) {
	defer close(ch)
	for {
		cmd, err := wire.Decode(c.conn)
		if err != nil {
			return
		}
		ch <- cmd
	}
}
