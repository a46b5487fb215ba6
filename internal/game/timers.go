package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiliankoe/micmate/internal/channel"
)

// startRoundTimers launches the countdown renderer and the mid-round
// reminder for one active round. Both are observers: they read round
// state and touch the channel, but never mutate scores, streaks or the
// round status. The returned cancel must be called on the terminal
// transition so no stale timer edits a message belonging to a finished
// round.
func startRoundTimers(ctx context.Context, gw channel.Gateway, r *Round) context.CancelFunc {
	tctx, cancel := context.WithCancel(ctx)
	go countdownLoop(tctx, gw, r)
	go reminderOnce(tctx, gw, r)
	return cancel
}

// countdownLoop re-renders the round footer with the remaining time
// every tick, stopping when the round leaves Active or the display
// message is gone.
func countdownLoop(ctx context.Context, gw channel.Gateway, r *Round) {
	ticker := time.NewTicker(CountdownTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !r.Active() {
				return
			}
			remaining := r.Remaining(now)
			if remaining <= 0 {
				return
			}
			if err := gw.Edit(ctx, r.Display, roundEmbed(r, remaining)); err != nil {
				if errors.Is(err, channel.ErrMessageGone) {
					return
				}
				log.Debug().Err(err).Str("round_id", r.ID).Msg("countdown edit failed")
			}
		}
	}
}

// reminderOnce posts a single nudge at the round's half-life, if the
// round is still running by then.
func reminderOnce(ctx context.Context, gw channel.Gateway, r *Round) {
	half := r.Kind.Duration() / 2
	timer := time.NewTimer(half)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case now := <-timer.C:
		if !r.Active() {
			return
		}
		secs := int(r.Remaining(now).Round(time.Second).Seconds())
		if secs <= 0 {
			return
		}
		text := fmt.Sprintf("⏳ Still live! **%d seconds** left to guess — jump in!", secs)
		if err := gw.SendText(ctx, r.Display.ChannelID, text); err != nil {
			log.Debug().Err(err).Str("round_id", r.ID).Msg("reminder send failed")
		}
	}
}
