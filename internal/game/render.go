package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiliankoe/micmate/internal/channel"
)

const (
	colorBlurple = 0x5865F2
	colorGreen   = 0x57F287
	colorRed     = 0xED4245
	colorGold    = 0xF1C40F
	colorGrey    = 0x95A5A6
)

func mention(userID string) string {
	return "<@" + userID + ">"
}

// roundEmbed renders an active round, including any hints revealed so
// far. It is re-rendered in place by the countdown timer and after each
// hint.
func roundEmbed(r *Round, remaining time.Duration) channel.Renderable {
	secs := int(remaining.Round(time.Second).Seconds())
	var emb channel.Renderable
	if r.Kind == KindDoodle {
		emb = channel.Renderable{
			Title: fmt.Sprintf("🎨 Doodle – Level %d", r.Level),
			Description: fmt.Sprintf(
				"Guess what the doodle shows in chat.\nYou have **%d seconds**.",
				int(r.Kind.Duration().Seconds())),
			Color: colorBlurple,
			Image: r.Payload.Image,
		}
	} else {
		var lyrics strings.Builder
		for _, line := range r.Payload.LyricLines {
			fmt.Fprintf(&lyrics, "• “%s”\n", line)
		}
		emb = channel.Renderable{
			Title: fmt.Sprintf("🎶 Mic – Level %d", r.Level),
			Description: fmt.Sprintf(
				"**Lyrics:**\n%s\nMode: Guess the **TITLE** or **ARTIST** in chat.\nYou have **%d seconds**.",
				lyrics.String(), int(r.Kind.Duration().Seconds())),
			Color: colorBlurple,
		}
	}
	if n := r.HintsRevealed(); n > 0 {
		var hints strings.Builder
		for _, h := range r.Payload.HintLines[:n] {
			fmt.Fprintf(&hints, "💡 %s\n", h)
		}
		emb.Fields = append(emb.Fields, channel.Field{Name: "Hints", Value: hints.String()})
	}
	emb.Footer = fmt.Sprintf("Time left: %d seconds", secs)
	return emb
}

// closedEmbed is the in-place rendering of the display message once the
// round is terminal.
func closedEmbed(r *Round) channel.Renderable {
	emb := roundEmbed(r, 0)
	switch r.Status() {
	case StatusWon:
		emb.Color = colorGreen
		emb.Footer = "Guessed! Answer below."
	case StatusPassed:
		emb.Color = colorGrey
		emb.Footer = "Round passed."
	default:
		emb.Color = colorRed
		emb.Footer = "Time's up!"
	}
	return emb
}

func winnerEmbed(r *Round, winnerID string) channel.Renderable {
	label := "Song"
	if r.Kind == KindDoodle {
		label = "Answer"
	}
	return channel.Renderable{
		Title: "✅ Answer guessed!",
		Description: fmt.Sprintf(
			"**%s:** %s\n**Winner:** %s\n\nNext round in **%d seconds**...",
			label, r.Payload.Answer(), mention(winnerID), int(BreakTime.Seconds())),
		Color:  colorGreen,
		Footer: "Answer locked. Get ready for the next level.",
	}
}

func timeoutEmbed(r *Round, sessionOver bool, prefix string) channel.Renderable {
	label := "Song"
	if r.Kind == KindDoodle {
		label = "Answer"
	}
	desc := fmt.Sprintf("No one guessed it in time.\n\n**%s:** %s\n\n", label, r.Payload.Answer())
	footer := "Round failed."
	if sessionOver {
		desc += fmt.Sprintf("Game over for this session.\nUse `%smic` to start a new game.", prefix)
		footer = "Round failed. Session ended."
	} else {
		desc += "A pass kept the game alive. Next round soon."
	}
	return channel.Renderable{
		Title:       "⏰ Time's up!",
		Description: desc,
		Color:       colorRed,
		Footer:      footer,
	}
}

func passedEmbed(r *Round, passesLeft int) channel.Renderable {
	label := "Song"
	if r.Kind == KindDoodle {
		label = "Answer"
	}
	return channel.Renderable{
		Title: "⏭️ Round passed",
		Description: fmt.Sprintf(
			"**%s:** %s\n\nPasses left: **%d**. Next round in **%d seconds**...",
			label, r.Payload.Answer(), passesLeft, int(BreakTime.Seconds())),
		Color:  colorGrey,
		Footer: "No penalty. Get ready for the next level.",
	}
}

func rankingEmbed(entries []ScoreEntry, nextLevel int, final bool, prefix string) channel.Renderable {
	emb := channel.Renderable{
		Title: "🏆 Team Ranking",
		Color: colorGold,
	}
	if len(entries) == 0 {
		emb.Description = "No points yet. Everyone is still on 0."
	} else {
		var b strings.Builder
		for i, e := range entries {
			fmt.Fprintf(&b, "**%d.** %s — `%d` point(s)\n", i+1, mention(e.UserID), e.Points)
		}
		emb.Description = strings.TrimRight(b.String(), "\n")
	}
	if final {
		emb.Fields = append(emb.Fields, channel.Field{
			Name:  "Game Over",
			Value: fmt.Sprintf("That’s the last level. Use `%smic` to start a new game.", prefix),
		})
	} else {
		emb.Fields = append(emb.Fields, channel.Field{
			Name:  "Next Step",
			Value: fmt.Sprintf("Level **%d** will start soon.", nextLevel),
		})
	}
	return emb
}

func hardResetEmbed() channel.Renderable {
	return channel.Renderable{
		Title: "🧨 Hard reset",
		Description: "All hints and passes were spent and the round still timed out.\n" +
			"The scoreboard has been wiped and both budgets restored. Fresh start!",
		Color: colorRed,
	}
}
