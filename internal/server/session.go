package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one connected client. Writes to the connection are serialized
// through the session mutex because gorilla/websocket allows only one
// concurrent writer.
type Session struct {
	ID     string
	Player string
	GameID string

	conn         *websocket.Conn
	writeTimeout time.Duration
	created      time.Time
	mu           sync.Mutex
}

func newSession(conn *websocket.Conn, writeTimeout time.Duration) *Session {
	return &Session{
		ID:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
		created:      time.Now(),
	}
}

func (s *Session) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteJSON(v)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.Close()
}

type sessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

func newSessionManager(max int) *sessionManager {
	return &sessionManager{sessions: make(map[string]*Session), max: max}
}

func (m *sessionManager) add(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.sessions) >= m.max {
		return false
	}
	m.sessions[s.ID] = s
	return true
}

func (m *sessionManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *sessionManager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// inGame returns the sessions attached to the given game.
func (m *sessionManager) inGame(gameID string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	return out
}
