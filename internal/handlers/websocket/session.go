package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errSocketClosed = errors.New("socket not open")

// socket guards one side of a bridge. Writes are serialised; a socket that
// is not open drops writes instead of queueing them.
type socket struct {
	name         string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mutex  sync.Mutex
	open   bool
	closed bool
}

func newSocket(name string, conn *websocket.Conn, writeTimeout time.Duration) *socket {
	return &socket{
		name:         name,
		conn:         conn,
		writeTimeout: writeTimeout,
		open:         conn != nil,
	}
}

// attach installs a freshly dialed connection and writes first before any
// relayed frame can. It returns errSocketClosed if the socket was closed
// while dialing; the caller then owns conn.
func (s *socket) attach(conn *websocket.Conn, first []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return errSocketClosed
	}
	s.conn = conn
	if first != nil {
		if err := s.write(websocket.TextMessage, first); err != nil {
			return err
		}
	}
	s.open = true
	return nil
}

func (s *socket) IsOpen() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.open
}

func (s *socket) Conn() *websocket.Conn {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.conn
}

func (s *socket) send(messageType int, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return errSocketClosed
	}
	return s.write(messageType, data)
}

func (s *socket) sendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.send(websocket.TextMessage, data)
}

func (s *socket) ping() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return errSocketClosed
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.deadline()))
}

// close sends a close frame and releases the connection. Only the first
// call has an effect.
func (s *socket) close(code int, reason string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	s.open = false
	if s.conn == nil {
		return true
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second))
	_ = s.conn.Close()
	return true
}

func (s *socket) write(messageType int, data []byte) error {
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(messageType, data)
}

func (s *socket) deadline() time.Duration {
	if s.writeTimeout > 0 {
		return s.writeTimeout
	}
	return 5 * time.Second
}
