package game

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		content string
		want    SignalKind
	}{
		{"hint", SignalHint},
		{"HINT", SignalHint},
		{"  hint  ", SignalHint},
		{"!hint", SignalHint},
		{"pass", SignalPass},
		{"!pass", SignalPass},
		{"Pass", SignalPass},
		{"imagine", SignalGuess},
		{"take a hint", SignalGuess},
		{"?hint", SignalGuess}, // wrong prefix stays a guess
		{"", SignalGuess},
	}
	for _, c := range cases {
		if got := Classify(c.content, "!").Kind; got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.content, got, c.want)
		}
	}
}

func TestClassifyKeepsGuessVerbatim(t *testing.T) {
	sig := Classify("  Imagine by John Lennon  ", "!")
	if sig.Kind != SignalGuess {
		t.Fatalf("kind = %v, want guess", sig.Kind)
	}
	if sig.Guess != "  Imagine by John Lennon  " {
		t.Errorf("guess %q was rewritten", sig.Guess)
	}
}
