package game

import "time"

type Kind string

const (
	KindLyric  Kind = "lyric"
	KindDoodle Kind = "doodle"
)

// Timing knobs are vars so tests can shrink them.
var (
	lyricRoundTime  = 60 * time.Second
	doodleRoundTime = 30 * time.Second

	// BreakTime is the breather between a round's end and the next
	// round's start.
	BreakTime     = 15 * time.Second
	RankingPause  = 3 * time.Second
	CountdownTick = 5 * time.Second
)

// Duration is the guessing window for one round of this kind.
func (k Kind) Duration() time.Duration {
	if k == KindDoodle {
		return doodleRoundTime
	}
	return lyricRoundTime
}

// RetryLimit bounds generator attempts per round. Doodle rounds pay for
// an image per attempt, so they get fewer.
func (k Kind) RetryLimit() int {
	if k == KindDoodle {
		return 5
	}
	return 10
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusWon      Status = "Won"
	StatusTimedOut Status = "TimedOut"
	StatusPassed   Status = "Passed"
)

// Mode restricts which answer sides a guess may match.
type Mode string

const (
	ModeEither     Mode = "either"
	ModeTitleOnly  Mode = "title"
	ModeArtistOnly Mode = "artist"
)

type SessionConfig struct {
	Kind   Kind   `json:"kind"`
	Rounds int    `json:"rounds"`
	Genre  string `json:"genre,omitempty"`
	Era    string `json:"era,omitempty"`
}

const (
	DefaultRounds = 10
	MaxRounds     = 50

	// shared, session-scoped consumables
	MaxHints  = 3
	MaxPasses = 3
)

// ClampRounds applies the round-count limits; 0 means "not given".
func ClampRounds(n int) int {
	if n == 0 {
		return DefaultRounds
	}
	if n < 1 {
		return 1
	}
	if n > MaxRounds {
		return MaxRounds
	}
	return n
}
