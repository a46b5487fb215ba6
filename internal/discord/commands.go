package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/kiliankoe/micmate/internal/game"
)

// Bot routes prefix commands to registry/scheduler operations. In-round
// signals (hint, pass, guesses) are not handled here: they flow through
// the gateway subscription into the running round. The router only
// answers hint/pass when there is nothing running to answer for itself.
type Bot struct {
	gw       *Gateway
	registry *game.Registry
	source   *game.Source
	prefix   string

	root    context.Context
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewBot(gw *Gateway, registry *game.Registry, source *game.Source, prefix string) *Bot {
	return &Bot{
		gw:       gw,
		registry: registry,
		source:   source,
		prefix:   prefix,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start opens the Discord connection. ctx bounds every session the bot
// spawns; cancelling it tears all of them down.
func (b *Bot) Start(ctx context.Context) error {
	b.root = ctx
	b.gw.Session().AddHandler(b.onMessageCreate)
	return b.gw.Open()
}

func (b *Bot) Stop() error {
	b.mu.Lock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.mu.Unlock()
	return b.gw.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	content := strings.TrimSpace(m.Content)
	if m.Author.Bot || !strings.HasPrefix(content, b.prefix) {
		return
	}
	args := strings.Fields(content)
	cmd := strings.ToLower(strings.TrimPrefix(args[0], b.prefix))

	switch cmd {
	case "help":
		b.sendHelp(m.ChannelID)
	case "mic":
		b.startGame(m, args[1:], game.KindLyric, 0)
	case "doodle":
		b.startGame(m, args[1:], game.KindDoodle, 0)
	case "solo":
		b.startGame(m, args[1:], game.KindLyric, 1)
	case "stop":
		b.stopGame(m)
	case "hint", "pass":
		b.idleLifeline(m)
	}
}

func (b *Bot) sendHelp(channelID string) {
	p := b.prefix
	msg := "**MicMate commands**\n" +
		fmt.Sprintf("- `%smic [rounds] [genre] [era:<era>]` : start a lyrics guessing game\n", p) +
		fmt.Sprintf("- `%sdoodle [rounds] [theme]` : start a doodle guessing game\n", p) +
		fmt.Sprintf("- `%ssolo [genre]` : play a single lyrics round\n", p) +
		fmt.Sprintf("- `%shint` / `hint` : reveal a hint (team budget: %d)\n", p, game.MaxHints) +
		fmt.Sprintf("- `%spass` / `pass` : skip the round (team budget: %d)\n", p, game.MaxPasses) +
		fmt.Sprintf("- `%sstop` : stop the running game", p)
	_, _ = b.gw.Session().ChannelMessageSend(channelID, msg)
}

// parseStartArgs takes [rounds] [genre words...] [era:<era>] in any
// reasonable order: the first purely numeric token is the round count,
// an era:-prefixed token is the era, everything else joins into genre.
func parseStartArgs(args []string) (rounds int, genre, era string) {
	var genreWords []string
	for _, a := range args {
		if rounds == 0 {
			if n, err := strconv.Atoi(a); err == nil {
				rounds = n
				continue
			}
		}
		if v, ok := strings.CutPrefix(strings.ToLower(a), "era:"); ok {
			era = v
			continue
		}
		genreWords = append(genreWords, a)
	}
	return rounds, strings.Join(genreWords, " "), era
}

func (b *Bot) startGame(m *discordgo.MessageCreate, args []string, kind game.Kind, fixedRounds int) {
	rounds, genre, era := parseStartArgs(args)
	if fixedRounds > 0 {
		rounds = fixedRounds
	}
	cfg := game.SessionConfig{Kind: kind, Rounds: rounds, Genre: genre, Era: era}

	sess, err := b.registry.Create(m.ChannelID, cfg)
	if err != nil {
		if errors.Is(err, game.ErrSessionActive) {
			b.reply(m, "There is already a game running in this channel.")
			return
		}
		log.Error().Err(err).Str("channel", m.ChannelID).Msg("session create failed")
		return
	}

	b.reply(m, fmt.Sprintf("Starting game with **%d** level(s)...", sess.Config.Rounds))

	ctx, cancel := context.WithCancel(b.root)
	b.mu.Lock()
	b.cancels[m.ChannelID] = cancel
	b.mu.Unlock()

	sched := game.NewScheduler(b.gw, b.source, b.registry, sess, b.prefix)
	go func() {
		defer func() {
			cancel()
			b.mu.Lock()
			delete(b.cancels, m.ChannelID)
			b.mu.Unlock()
		}()
		sched.Run(ctx)
	}()
}

func (b *Bot) stopGame(m *discordgo.MessageCreate) {
	b.mu.Lock()
	cancel, ok := b.cancels[m.ChannelID]
	b.mu.Unlock()
	if !ok {
		b.reply(m, "No game is running in this channel.")
		return
	}
	cancel()
	b.reply(m, "🛑 Game stopped.")
}

// idleLifeline answers a hint/pass command arriving outside an active
// round, so the user gets a notice instead of silence. While a round is
// live the in-round loop consumes these.
func (b *Bot) idleLifeline(m *discordgo.MessageCreate) {
	sess, err := b.registry.Get(m.ChannelID)
	if err != nil {
		b.reply(m, fmt.Sprintf("No game is running here. Start one with `%smic`.", b.prefix))
		return
	}
	if sess.Round() == nil {
		b.reply(m, "No round is active right now — wait for the next one.")
	}
}

func (b *Bot) reply(m *discordgo.MessageCreate, text string) {
	_, err := b.gw.Session().ChannelMessageSendReply(m.ChannelID, text, m.Reference())
	if err != nil {
		log.Debug().Err(err).Str("channel", m.ChannelID).Msg("reply failed")
	}
}
