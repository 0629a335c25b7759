package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeTimeout bounds a single outbound frame write. A client that stops
// draining its socket must not be able to wedge a delivery goroutine.
const writeTimeout = 10 * time.Second

// Conn is one duplex channel to a client. The registry only needs to push
// frames and close; reading stays with the goroutine that accepted the
// connection.
type Conn interface {
	// WriteJSON marshals v and writes it as one frame.
	WriteJSON(v any) error

	// Close closes the underlying connection.
	Close() error
}

// Socket wraps a gorilla websocket connection. Gorilla permits at most one
// concurrent writer per connection, so all writes serialize on an internal
// mutex; the blocked party is only ever another delivery, never a reader.
type Socket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewSocket wraps an upgraded websocket connection.
func NewSocket(conn *websocket.Conn) *Socket {
	return &Socket{conn: conn}
}

// WriteJSON implements Conn.
func (s *Socket) WriteJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

// ReadMessage blocks until the next client frame arrives and returns its
// payload. Only the accepting goroutine may call this.
func (s *Socket) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

// Close implements Conn.
func (s *Socket) Close() error {
	return s.conn.Close()
}
