package warpbot

import "sync"

// Stage is a WARP session's position in the ritual lifecycle.
type Stage string

const (
	// StageAwaitingSelection means the notification is posted and the
	// responder has not yet picked a wellness option.
	StageAwaitingSelection Stage = "awaiting_selection"
	// StageAwaitingCompletion means an option was selected and the bot is
	// waiting for the completion-marker reaction.
	StageAwaitingCompletion Stage = "awaiting_completion"
)

// Session tracks one responder's progress through a wellness ritual.
// WellnessType and WellnessMessageTS are set only after selection.
type Session struct {
	UserID            string // responder's Slack user ID
	Incident          string // incident display string, e.g. "INC-42: DB down"
	Stage             Stage
	WellnessType      string // catalog key of the chosen option
	WellnessMessageTS string // timestamp of the threaded wellness reply
}

// SessionKey derives the session store key from a message's channel and
// timestamp. The pair uniquely identifies the notification message.
func SessionKey(channel, timestamp string) string {
	return channel + "-" + timestamp
}

// SessionStore holds active wellness sessions keyed by SessionKey.
// Sessions are created by the dispatcher and mutated/deleted by the
// reaction handler; nothing else touches them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Put inserts or replaces the session for key.
func (s *SessionStore) Put(key string, session *Session) {
	s.mu.Lock()
	s.sessions[key] = session
	s.mu.Unlock()
}

// Get returns the session for key, if any. The returned session is mutated
// in place by the reaction handler; events are handled sequentially so the
// mutex only guards map access.
func (s *SessionStore) Get(key string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

// Delete removes the session for key.
func (s *SessionStore) Delete(key string) {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
