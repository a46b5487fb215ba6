package game

import "sync"

// Registry maps a channel to its at-most-one live session. Sessions are
// created on game start and removed on game end; a second start while
// one is live is rejected.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Create(channelID string, cfg SessionConfig) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[channelID]; exists {
		return nil, ErrSessionActive
	}
	s := NewSession(channelID, cfg)
	r.sessions[channelID] = s
	return s, nil
}

func (r *Registry) Get(channelID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[channelID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove deletes the channel's session. Idempotent.
func (r *Registry) Remove(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, channelID)
}

// SessionInfo is a snapshot row for the ops endpoint.
type SessionInfo struct {
	ChannelID string `json:"channelId"`
	Kind      Kind   `json:"kind"`
	Rounds    int    `json:"rounds"`
	Players   int    `json:"players"`
	Streak    int    `json:"streak"`
}

func (r *Registry) Snapshot() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, SessionInfo{
			ChannelID: id,
			Kind:      s.Config.Kind,
			Rounds:    s.Config.Rounds,
			Players:   len(s.Ranking()),
			Streak:    s.Streak(),
		})
	}
	return out
}
