package game

import (
	"errors"
	"testing"
)

func activeSession(hintLines int) (*Session, *Round) {
	s := NewSession("c1", SessionConfig{Kind: KindLyric, Rounds: 3})
	p := &Payload{Title: "X", LyricLines: []string{"la"}}
	for i := 0; i < hintLines; i++ {
		p.HintLines = append(p.HintLines, "hint")
	}
	r := NewRound(KindLyric, 1, p)
	s.SetRound(r)
	return s, r
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession("c1", SessionConfig{})
	if s.Config.Kind != KindLyric {
		t.Fatalf("expected lyric kind default, got %s", s.Config.Kind)
	}
	if s.Config.Rounds != DefaultRounds {
		t.Fatalf("expected %d rounds, got %d", DefaultRounds, s.Config.Rounds)
	}
	if s.Streak() != 0 || len(s.Ranking()) != 0 {
		t.Fatal("fresh session should have no streak and no scores")
	}
}

func TestSessionRoundsClamped(t *testing.T) {
	if got := NewSession("c", SessionConfig{Rounds: 999}).Config.Rounds; got != MaxRounds {
		t.Fatalf("expected clamp to %d, got %d", MaxRounds, got)
	}
	if got := NewSession("c", SessionConfig{Rounds: -4}).Config.Rounds; got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
}

func TestHintBudgetNeverExceeded(t *testing.T) {
	s, _ := activeSession(3)
	for i := 1; i <= MaxHints; i++ {
		if _, err := s.UseHint(); err != nil {
			t.Fatalf("hint %d should succeed: %v", i, err)
		}
	}
	_, err := s.UseHint()
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("4th hint should be rejected, got %v", err)
	}
	if s.HintsUsed() != MaxHints {
		t.Fatalf("rejection must not increment, got %d", s.HintsUsed())
	}
}

func TestHintBoundedByAvailableLines(t *testing.T) {
	s, _ := activeSession(1)
	if _, err := s.UseHint(); err != nil {
		t.Fatalf("first hint should succeed: %v", err)
	}
	_, err := s.UseHint()
	if !errors.Is(err, ErrNoMoreHints) {
		t.Fatalf("expected ErrNoMoreHints, got %v", err)
	}
	if s.HintsUsed() != 1 {
		t.Fatalf("budget must not be consumed on rejection, got %d", s.HintsUsed())
	}
}

func TestHintWithoutActiveRound(t *testing.T) {
	s := NewSession("c1", SessionConfig{})
	if _, err := s.UseHint(); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("expected ErrNoActiveRound, got %v", err)
	}
}

func TestPassBudgetNeverExceeded(t *testing.T) {
	s, r := activeSession(0)
	for i := 1; i <= MaxPasses; i++ {
		// each pass ends a round; arm a fresh one
		s.SetRound(r)
		if err := s.UsePass(); err != nil {
			t.Fatalf("pass %d should succeed: %v", i, err)
		}
	}
	if err := s.UsePass(); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("4th pass should be rejected, got %v", err)
	}
	if s.PassesUsed() != MaxPasses {
		t.Fatalf("rejection must not increment, got %d", s.PassesUsed())
	}
}

func TestBudgetsExhausted(t *testing.T) {
	s, _ := activeSession(3)
	if s.BudgetsExhausted() {
		t.Fatal("fresh session is not exhausted")
	}
	s.mu.Lock()
	s.hintsUsed = MaxHints
	s.passesUsed = MaxPasses
	s.mu.Unlock()
	if !s.BudgetsExhausted() {
		t.Fatal("both budgets at cap should report exhausted")
	}
}

func TestScoreAndStreak(t *testing.T) {
	s := NewSession("c1", SessionConfig{})
	s.AwardPoint("alice")
	s.AwardPoint("alice")
	s.AwardPoint("bob")
	if s.Score("alice") != 2 || s.Score("bob") != 1 {
		t.Fatal("unexpected scores")
	}
	if s.Streak() != 3 {
		t.Fatalf("expected streak 3, got %d", s.Streak())
	}
	s.ResetStreak()
	if s.Streak() != 0 {
		t.Fatal("streak should reset to 0")
	}
	if s.Score("alice") != 2 {
		t.Fatal("streak reset must not touch scores")
	}
}

func TestRankingOrder(t *testing.T) {
	s := NewSession("c1", SessionConfig{})
	s.AwardPoint("bob")
	s.AwardPoint("alice")
	s.AwardPoint("alice")
	s.AwardPoint("carol")
	got := s.Ranking()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].UserID != "alice" || got[0].Points != 2 {
		t.Fatalf("alice should lead, got %+v", got[0])
	}
	// ties break on user ID ascending
	if got[1].UserID != "bob" || got[2].UserID != "carol" {
		t.Fatalf("tie order wrong: %+v", got)
	}
}

func TestHardReset(t *testing.T) {
	s, _ := activeSession(3)
	s.AwardPoint("alice")
	s.mu.Lock()
	s.hintsUsed = MaxHints
	s.passesUsed = MaxPasses
	s.mu.Unlock()
	s.HardReset()
	if len(s.Ranking()) != 0 {
		t.Fatal("scoreboard should be wiped")
	}
	if s.HintsUsed() != 0 || s.PassesUsed() != 0 {
		t.Fatal("budgets should be restored")
	}
	if s.Streak() != 0 {
		t.Fatal("streak should be reset")
	}
}

func TestUsedTitles(t *testing.T) {
	s := NewSession("c1", SessionConfig{})
	s.RecordTitle("  Hey   Jude ")
	s.RecordTitle("Imagine")
	s.RecordTitle("imagine") // dedupe via normalization
	got := s.AvoidList()
	if len(got) != 2 {
		t.Fatalf("expected 2 titles, got %v", got)
	}
	if got[0] != "hey jude" || got[1] != "imagine" {
		t.Fatalf("expected normalized sorted titles, got %v", got)
	}
}
