package game

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrSessionActive   = errors.New("session already active in this channel")
	ErrSessionNotFound = errors.New("no session in this channel")
	ErrNoActiveRound   = errors.New("no round is active")
	ErrBudgetExhausted = errors.New("budget exhausted")
	ErrNoMoreHints     = errors.New("no more hints for this round")
)

// ScoreEntry is one row of the ranking, highest points first.
type ScoreEntry struct {
	UserID string
	Points int
}

// Session owns one channel's sequence of rounds: cumulative scores, the
// solved streak, the titles already played and the shared hint/pass
// budgets. The scheduler is the only writer.
type Session struct {
	ChannelID string
	Config    SessionConfig
	StartedAt time.Time

	mu         sync.Mutex
	scores     map[string]int
	streak     int
	usedTitles map[string]struct{}
	hintsUsed  int
	passesUsed int
	round      *Round
	ended      bool
}

func NewSession(channelID string, cfg SessionConfig) *Session {
	if cfg.Kind == "" {
		cfg.Kind = KindLyric
	}
	cfg.Rounds = ClampRounds(cfg.Rounds)
	return &Session{
		ChannelID:  channelID,
		Config:     cfg,
		StartedAt:  time.Now().UTC(),
		scores:     make(map[string]int),
		usedTitles: make(map[string]struct{}),
	}
}

func (s *Session) SetRound(r *Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = r
}

func (s *Session) ClearRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = nil
}

func (s *Session) Round() *Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// UseHint consumes one shared hint and reveals the next hint line of
// the active round. Nothing is mutated on rejection.
func (s *Session) UseHint() (revealed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil || !s.round.Active() {
		return 0, ErrNoActiveRound
	}
	if s.hintsUsed >= MaxHints {
		return s.round.HintsRevealed(), ErrBudgetExhausted
	}
	n, ok := s.round.RevealHint()
	if !ok {
		return n, ErrNoMoreHints
	}
	s.hintsUsed++
	return n, nil
}

// UsePass consumes one shared pass. The caller ends the round.
func (s *Session) UsePass() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil || !s.round.Active() {
		return ErrNoActiveRound
	}
	if s.passesUsed >= MaxPasses {
		return ErrBudgetExhausted
	}
	s.passesUsed++
	return nil
}

func (s *Session) HintsUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintsUsed
}

func (s *Session) PassesUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passesUsed
}

// BudgetsExhausted reports whether both lifelines are fully spent.
func (s *Session) BudgetsExhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintsUsed >= MaxHints && s.passesUsed >= MaxPasses
}

// AwardPoint credits the winner and extends the streak. Called last in
// the win sequence so a render failure can't lose score state.
func (s *Session) AwardPoint(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[userID]++
	s.streak++
}

func (s *Session) ResetStreak() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streak = 0
}

func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

func (s *Session) Score(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[userID]
}

// HardReset wipes the scoreboard and restores both budgets. Fired when
// a round times out with every lifeline spent.
func (s *Session) HardReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = make(map[string]int)
	s.streak = 0
	s.hintsUsed = 0
	s.passesUsed = 0
}

// RecordTitle remembers a played title for anti-repeat, win or lose.
func (s *Session) RecordTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := norm(title); t != "" {
		s.usedTitles[t] = struct{}{}
	}
}

// AvoidList returns the normalized titles played so far, sorted for
// stable prompts.
func (s *Session) AvoidList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.usedTitles))
	for t := range s.usedTitles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Ranking returns the scoreboard sorted by points descending, user ID
// ascending on ties.
func (s *Session) Ranking() []ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScoreEntry, 0, len(s.scores))
	for id, pts := range s.scores {
		out = append(out, ScoreEntry{UserID: id, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func (s *Session) MarkEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
