// Package channel defines the chat-platform capability the game core
// consumes. The core never talks to Discord directly; it renders
// structured embeds and listens to an inbound message stream through
// this interface, which keeps the round machinery testable with fakes.
package channel

import (
	"context"
	"errors"
)

// ErrMessageGone is returned by Edit and Fetch when the target message
// no longer exists. Background renderers treat it as a stop signal.
var ErrMessageGone = errors.New("channel: message gone")

// MessageRef is an opaque handle to a message the bot has sent.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Message is an inbound chat message.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
	Bot       bool
}

// Field is a titled section inside a Renderable.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Renderable is a structured message body (embed), not raw markup.
type Renderable struct {
	Title       string
	Description string
	Footer      string
	Color       int
	Fields      []Field
	Image       []byte // optional PNG attachment
}

// Gateway is the outbound/inbound surface of one chat platform.
type Gateway interface {
	Send(ctx context.Context, channelID string, r Renderable) (MessageRef, error)
	SendText(ctx context.Context, channelID, text string) error
	Edit(ctx context.Context, ref MessageRef, r Renderable) error
	React(ctx context.Context, ref MessageRef, emoji string) error
	Fetch(ctx context.Context, ref MessageRef) (Message, error)
	// Subscribe returns a stream of inbound messages for a channel plus
	// a cancel func. The stream is closed after cancel.
	Subscribe(channelID string) (<-chan Message, func())
}
