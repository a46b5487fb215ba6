// Package discord implements the channel gateway and the user-facing
// command surface on top of discordgo. It is a thin adapter: all game
// decisions live in internal/game.
package discord

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/kiliankoe/micmate/internal/channel"
)

const subscriberBuffer = 64

type Gateway struct {
	session *discordgo.Session

	mu      sync.Mutex
	subs    map[string]map[int]chan channel.Message
	nextSub int
	// uploaded image CDN URL per message; edits can't re-supply the
	// attachment, so they reference this instead of attachment://
	images map[string]string
}

func NewGateway(token string) (*Gateway, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	g := &Gateway{
		session: s,
		subs:    make(map[string]map[int]chan channel.Message),
		images:  make(map[string]string),
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	s.AddHandler(g.onMessageCreate)
	return g, nil
}

func (g *Gateway) Open() error  { return g.session.Open() }
func (g *Gateway) Close() error { return g.session.Close() }

// Session exposes the raw discordgo session for the command router.
func (g *Gateway) Session() *discordgo.Session { return g.session }

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	msg := channel.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Bot:       m.Author.Bot,
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ch := range g.subs[m.ChannelID] {
		select {
		case ch <- msg:
		default:
			// subscriber is not keeping up, drop rather than block the
			// discordgo event goroutine
			log.Debug().Str("channel", m.ChannelID).Msg("dropping inbound message for slow subscriber")
		}
	}
}

func (g *Gateway) Subscribe(channelID string) (<-chan channel.Message, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	ch := make(chan channel.Message, subscriberBuffer)
	if g.subs[channelID] == nil {
		g.subs[channelID] = make(map[int]chan channel.Message)
	}
	g.subs[channelID][id] = ch
	cancel := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if sub, ok := g.subs[channelID][id]; ok {
			delete(g.subs[channelID], id)
			close(sub)
		}
	}
	return ch, cancel
}

func (g *Gateway) Send(_ context.Context, channelID string, r channel.Renderable) (channel.MessageRef, error) {
	send := &discordgo.MessageSend{Embed: toEmbed(r)}
	if len(r.Image) > 0 {
		send.Files = []*discordgo.File{{
			Name:        "doodle.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(r.Image),
		}}
	}
	m, err := g.session.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return channel.MessageRef{}, err
	}
	if len(r.Image) > 0 && len(m.Attachments) > 0 {
		g.mu.Lock()
		g.images[m.ID] = m.Attachments[0].URL
		g.mu.Unlock()
	}
	return channel.MessageRef{ChannelID: channelID, MessageID: m.ID}, nil
}

func (g *Gateway) SendText(_ context.Context, channelID, text string) error {
	_, err := g.session.ChannelMessageSend(channelID, text)
	return err
}

func (g *Gateway) Edit(_ context.Context, ref channel.MessageRef, r channel.Renderable) error {
	_, err := g.session.ChannelMessageEditEmbed(ref.ChannelID, ref.MessageID, g.editEmbed(ref, r))
	return mapGone(err)
}

// editEmbed rewrites the embed for an in-place edit: the attachment://
// reference only resolves on the original send, so edits use the CDN
// URL pinned when the image was uploaded, or drop the image when no
// pin is known.
func (g *Gateway) editEmbed(ref channel.MessageRef, r channel.Renderable) *discordgo.MessageEmbed {
	emb := toEmbed(r)
	if emb.Image == nil {
		return emb
	}
	g.mu.Lock()
	url := g.images[ref.MessageID]
	g.mu.Unlock()
	if url == "" {
		emb.Image = nil
		return emb
	}
	emb.Image.URL = url
	return emb
}

func (g *Gateway) React(_ context.Context, ref channel.MessageRef, emoji string) error {
	return mapGone(g.session.MessageReactionAdd(ref.ChannelID, ref.MessageID, emoji))
}

func (g *Gateway) Fetch(_ context.Context, ref channel.MessageRef) (channel.Message, error) {
	m, err := g.session.ChannelMessage(ref.ChannelID, ref.MessageID)
	if err != nil {
		return channel.Message{}, mapGone(err)
	}
	return channel.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Bot:       m.Author.Bot,
	}, nil
}

func toEmbed(r channel.Renderable) *discordgo.MessageEmbed {
	emb := &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Description,
		Color:       r.Color,
	}
	if r.Footer != "" {
		emb.Footer = &discordgo.MessageEmbedFooter{Text: r.Footer}
	}
	for _, f := range r.Fields {
		emb.Fields = append(emb.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if len(r.Image) > 0 {
		emb.Image = &discordgo.MessageEmbedImage{URL: "attachment://doodle.png"}
	}
	return emb
}

// mapGone translates Discord "unknown message/channel" REST errors into
// the gateway-neutral sentinel.
func mapGone(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
			return channel.ErrMessageGone
		}
	}
	return err
}
