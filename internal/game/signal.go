package game

import "strings"

type SignalKind int

const (
	SignalGuess SignalKind = iota
	SignalHint
	SignalPass
)

// Signal is the classified form of an inbound message. The round state
// machine only ever sees Signals, never raw strings.
type Signal struct {
	Kind  SignalKind
	Guess string
}

// Classify turns message content into a round signal. Bare "hint" and
// "pass" act as sentinels alongside their prefixed command forms;
// everything else is a guess.
func Classify(content, prefix string) Signal {
	c := strings.ToLower(strings.TrimSpace(content))
	switch c {
	case "hint", prefix + "hint":
		return Signal{Kind: SignalHint}
	case "pass", prefix + "pass":
		return Signal{Kind: SignalPass}
	}
	return Signal{Kind: SignalGuess, Guess: content}
}
