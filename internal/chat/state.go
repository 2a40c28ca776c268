package chat

import "sync"

// State is the conversational state of one session.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

func (s State) String() string {
	if s == StateAwaitingReply {
		return "awaiting-reply"
	}
	return "idle"
}

// states tracks idle -> awaiting-reply -> idle per user session. Sessions
// absent from the map are idle.
type states struct {
	mu sync.Mutex
	m  map[string]State
}

func newStates() *states {
	return &states{m: make(map[string]State)}
}

func stateKey(userID, chatID string) string {
	return userID + "/" + chatID
}

func (s *states) begin(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[key] == StateAwaitingReply {
		return ErrAwaitingReply
	}
	s.m[key] = StateAwaitingReply
	return nil
}

func (s *states) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *states) get(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key]
}
