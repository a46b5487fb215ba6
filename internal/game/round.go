package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiliankoe/micmate/internal/channel"
)

// Round is the state machine for one guessable unit. It transitions
// exactly once from Active to a terminal status; everything after that
// flip is a no-op. The flip itself is the only synchronization point
// between the play loop, late guesses and the background timers.
type Round struct {
	ID      string
	Kind    Kind
	Level   int
	Payload *Payload

	StartedAt time.Time
	Deadline  time.Time
	Display   channel.MessageRef

	mu            sync.Mutex
	status        Status
	winnerID      string
	hintsRevealed int
}

func NewRound(kind Kind, level int, payload *Payload) *Round {
	return &Round{
		ID:      uuid.NewString(),
		Kind:    kind,
		Level:   level,
		Payload: payload,
		status:  StatusActive,
	}
}

// Begin fixes the deadline at render time and records the display
// message the round owns while active.
func (r *Round) Begin(ref channel.MessageRef, now time.Time) {
	r.StartedAt = now
	r.Deadline = now.Add(r.Kind.Duration())
	r.Display = ref
}

// Finish attempts the terminal transition. It reports false when the
// round is already terminal, which closes the race between an expiring
// deadline and an in-flight correct guess: whoever flips first wins,
// everyone else is ignored.
func (r *Round) Finish(status Status, winnerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusActive {
		return false
	}
	r.status = status
	r.winnerID = winnerID
	return true
}

func (r *Round) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Round) Active() bool {
	return r.Status() == StatusActive
}

func (r *Round) WinnerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winnerID
}

// RevealHint bumps the revealed-hint counter, bounded by the hint cap
// and by how many hint lines the payload actually has.
func (r *Round) RevealHint() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusActive {
		return r.hintsRevealed, false
	}
	if r.hintsRevealed >= MaxHints || r.hintsRevealed >= len(r.Payload.HintLines) {
		return r.hintsRevealed, false
	}
	r.hintsRevealed++
	return r.hintsRevealed, true
}

func (r *Round) HintsRevealed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hintsRevealed
}

func (r *Round) Remaining(now time.Time) time.Duration {
	d := r.Deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
