package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiliankoe/micmate/internal/channel"
)

// Scheduler drives one session: it produces rounds, runs each to its
// terminal transition, posts outcomes and rankings, and loops until a
// termination condition. It is the only code path that transitions a
// round out of Active and the only writer to session counters.
type Scheduler struct {
	Gateway  channel.Gateway
	Source   *Source
	Registry *Registry
	Session  *Session
	Prefix   string
}

func NewScheduler(gw channel.Gateway, src *Source, reg *Registry, sess *Session, prefix string) *Scheduler {
	return &Scheduler{Gateway: gw, Source: src, Registry: reg, Session: sess, Prefix: prefix}
}

// Run plays the session to completion. It always cleans up its registry
// entry, including on panic, so a crashed game never leaves a zombie
// "active" flag blocking the channel.
func (s *Scheduler) Run(ctx context.Context) {
	chID := s.Session.ChannelID
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("channel", chID).Msg("session crashed")
			_ = s.Gateway.SendText(context.WithoutCancel(ctx), chID, "⚠️ The game ran into an error and had to stop.")
		}
		s.Session.MarkEnded()
		s.Registry.Remove(chID)
	}()

	inbox, unsubscribe := s.Gateway.Subscribe(chID)
	defer unsubscribe()

	s.announceStart(ctx)

	var lastTitle, lastArtist string
	for level := 1; level <= s.Session.Config.Rounds; level++ {
		if ctx.Err() != nil {
			return
		}

		payload, err := s.Source.Next(ctx, Request{
			Kind:       s.Session.Config.Kind,
			Avoid:      s.Session.AvoidList(),
			LastTitle:  lastTitle,
			LastArtist: lastArtist,
			Genre:      s.Session.Config.Genre,
			Era:        s.Session.Config.Era,
		})
		if err != nil {
			log.Error().Err(err).Str("channel", chID).Int("round", level).Msg("round generation failed")
			_ = s.Gateway.SendText(ctx, chID,
				"⚠️ I couldn't get a new round from the generator. The game has been stopped. Try again in a bit.")
			return
		}

		round := NewRound(s.Session.Config.Kind, level, payload)
		drainInbox(inbox) // chatter from the breather is not a guess
		ref, err := s.Gateway.Send(ctx, chID, roundEmbed(round, round.Kind.Duration()))
		if err != nil {
			log.Error().Err(err).Str("channel", chID).Msg("round render failed")
			return
		}
		round.Begin(ref, time.Now().UTC())
		s.Session.SetRound(round)

		cancelTimers := startRoundTimers(ctx, s.Gateway, round)
		status, sessionOver, stopped := s.playRound(ctx, round, inbox)
		cancelTimers()
		s.Session.ClearRound()
		if stopped {
			return
		}

		// remembered win or lose, to bias the generator away
		s.Session.RecordTitle(payload.Title)
		lastTitle, lastArtist = payload.Title, payload.Artist

		log.Info().Str("channel", chID).Int("round", level).
			Str("status", string(status)).Str("title", payload.Title).Msg("round finished")

		if sessionOver {
			s.showRanking(ctx, level, true)
			return
		}
		if level == s.Session.Config.Rounds {
			if !sleepCtx(ctx, BreakTime) {
				return
			}
			s.showRanking(ctx, level+1, true)
			return
		}
		if !sleepCtx(ctx, BreakTime) {
			return
		}
		s.showRanking(ctx, level+1, false)
		if !sleepCtx(ctx, RankingPause) {
			return
		}
	}
}

// playRound blocks until the round reaches a terminal status. The wait
// deadline is recomputed every iteration because hint and pass signals
// re-enter the wait without ending the round. sessionOver reports the
// timeout termination decision, which must be made before a hard reset
// restores the pass budget; stopped is true when the session was
// cancelled from outside.
func (s *Scheduler) playRound(ctx context.Context, r *Round, inbox <-chan channel.Message) (status Status, sessionOver, stopped bool) {
	for {
		remaining := r.Remaining(time.Now().UTC())
		if remaining <= 0 {
			if r.Finish(StatusTimedOut, "") {
				sessionOver = s.onTimeout(ctx, r)
			}
			return StatusTimedOut, sessionOver, false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.Finish(StatusTimedOut, "")
			return StatusTimedOut, false, true
		case <-timer.C:
			// deadline handled at the top of the loop
		case msg, ok := <-inbox:
			timer.Stop()
			if !ok {
				r.Finish(StatusTimedOut, "")
				return StatusTimedOut, false, true
			}
			if msg.Bot || msg.ChannelID != r.Display.ChannelID {
				continue
			}
			// active flag, not elapsed time: closes the race between a
			// just-expired deadline and an in-flight message
			if !r.Active() {
				continue
			}
			switch sig := Classify(msg.Content, s.Prefix); sig.Kind {
			case SignalHint:
				s.onHint(ctx, r)
			case SignalPass:
				if s.onPass(ctx, r) {
					return StatusPassed, false, false
				}
			default:
				if r.Payload.IsCorrect(sig.Guess) && r.Finish(StatusWon, msg.AuthorID) {
					s.onWin(ctx, r, msg)
					return StatusWon, false, false
				}
			}
		}
	}
}

// onWin runs the terminal side effects in their fixed order: react to
// the winning message, close the display, announce, and only then
// mutate score state, so a rendering failure can't lose points.
func (s *Scheduler) onWin(ctx context.Context, r *Round, msg channel.Message) {
	winRef := channel.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}
	if err := s.Gateway.React(ctx, winRef, "🎤"); err != nil {
		log.Debug().Err(err).Msg("winner reaction failed")
	}
	if err := s.Gateway.Edit(ctx, r.Display, closedEmbed(r)); err != nil && !errors.Is(err, channel.ErrMessageGone) {
		log.Warn().Err(err).Msg("winner display edit failed")
	}
	if _, err := s.Gateway.Send(ctx, r.Display.ChannelID, winnerEmbed(r, msg.AuthorID)); err != nil {
		log.Warn().Err(err).Msg("winner announcement failed")
	}
	s.Session.AwardPoint(msg.AuthorID)
}

// onTimeout reports whether the timeout ends the session. The decision
// reads the pass counter before any hard reset restores it: a session
// that just spent its lifelines continues, it doesn't end on the same
// timeout that announced the fresh start.
func (s *Scheduler) onTimeout(ctx context.Context, r *Round) bool {
	sessionOver := s.Session.PassesUsed() == 0
	if err := s.Gateway.Edit(ctx, r.Display, closedEmbed(r)); err != nil && !errors.Is(err, channel.ErrMessageGone) {
		log.Warn().Err(err).Msg("timeout display edit failed")
	}
	// best-effort announcement even when the display message is gone
	if _, err := s.Gateway.Send(ctx, r.Display.ChannelID, timeoutEmbed(r, sessionOver, s.Prefix)); err != nil {
		log.Warn().Err(err).Msg("timeout announcement failed")
	}
	s.Session.ResetStreak()
	if s.Session.BudgetsExhausted() {
		s.Session.HardReset()
		if _, err := s.Gateway.Send(ctx, r.Display.ChannelID, hardResetEmbed()); err != nil {
			log.Warn().Err(err).Msg("hard reset announcement failed")
		}
	}
	return sessionOver
}

func (s *Scheduler) onHint(ctx context.Context, r *Round) {
	n, err := s.Session.UseHint()
	if err != nil {
		var notice string
		switch {
		case errors.Is(err, ErrBudgetExhausted):
			notice = fmt.Sprintf("🚫 No hints left — the team already used all %d.", MaxHints)
		case errors.Is(err, ErrNoMoreHints):
			notice = "🚫 There are no more hint lines for this round."
		default:
			return
		}
		_ = s.Gateway.SendText(ctx, r.Display.ChannelID, notice)
		return
	}
	if err := s.Gateway.Edit(ctx, r.Display, roundEmbed(r, r.Remaining(time.Now().UTC()))); err != nil && !errors.Is(err, channel.ErrMessageGone) {
		log.Warn().Err(err).Msg("hint re-render failed")
	}
	_ = s.Gateway.SendText(ctx, r.Display.ChannelID,
		fmt.Sprintf("💡 Hint %d revealed — check the round message. (%d of %d team hints used)", n, s.Session.HintsUsed(), MaxHints))
}

// onPass reports whether the round ended.
func (s *Scheduler) onPass(ctx context.Context, r *Round) bool {
	if err := s.Session.UsePass(); err != nil {
		if errors.Is(err, ErrBudgetExhausted) {
			_ = s.Gateway.SendText(ctx, r.Display.ChannelID,
				fmt.Sprintf("🚫 No passes left — the team already used all %d.", MaxPasses))
		}
		return false
	}
	if !r.Finish(StatusPassed, "") {
		return false
	}
	if err := s.Gateway.Edit(ctx, r.Display, closedEmbed(r)); err != nil && !errors.Is(err, channel.ErrMessageGone) {
		log.Warn().Err(err).Msg("pass display edit failed")
	}
	if _, err := s.Gateway.Send(ctx, r.Display.ChannelID, passedEmbed(r, MaxPasses-s.Session.PassesUsed())); err != nil {
		log.Warn().Err(err).Msg("pass announcement failed")
	}
	return true
}

func (s *Scheduler) announceStart(ctx context.Context) {
	var text string
	if s.Session.Config.Kind == KindDoodle {
		text = fmt.Sprintf(
			"🎨 **Doodle game starting!**\nLevels: `%d`. Guess the **word** each round.\nTeam lifelines: `%d` hints and `%d` passes — type `hint` or `pass`.",
			s.Session.Config.Rounds, MaxHints, MaxPasses)
	} else {
		text = fmt.Sprintf(
			"🎮 **Karaoke game starting!**\nLevels: `%d`. Guess the **title or artist** each round.\nTeam lifelines: `%d` hints and `%d` passes — type `hint` or `pass`.",
			s.Session.Config.Rounds, MaxHints, MaxPasses)
	}
	if err := s.Gateway.SendText(ctx, s.Session.ChannelID, text); err != nil {
		log.Warn().Err(err).Msg("start announcement failed")
	}
}

func (s *Scheduler) showRanking(ctx context.Context, nextLevel int, final bool) {
	emb := rankingEmbed(s.Session.Ranking(), nextLevel, final, s.Prefix)
	if streak := s.Session.Streak(); streak > 1 && !final {
		emb.Fields = append(emb.Fields, channel.Field{
			Name:  "Streak",
			Value: fmt.Sprintf("🔥 %d rounds solved in a row!", streak),
		})
	}
	if _, err := s.Gateway.Send(ctx, s.Session.ChannelID, emb); err != nil {
		log.Warn().Err(err).Msg("ranking render failed")
	}
}

func drainInbox(inbox <-chan channel.Message) {
	for {
		select {
		case <-inbox:
		default:
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
