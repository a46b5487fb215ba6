package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kiliankoe/micmate/internal/channel"
)

// shortTimings shrinks the game clocks for a test and restores them.
func shortTimings(t *testing.T) {
	t.Helper()
	origLyric, origDoodle := lyricRoundTime, doodleRoundTime
	origBreak, origPause, origTick := BreakTime, RankingPause, CountdownTick
	lyricRoundTime = 2 * time.Second
	doodleRoundTime = 2 * time.Second
	BreakTime = 30 * time.Millisecond
	RankingPause = 10 * time.Millisecond
	CountdownTick = 50 * time.Millisecond
	t.Cleanup(func() {
		lyricRoundTime, doodleRoundTime = origLyric, origDoodle
		BreakTime, RankingPause, CountdownTick = origBreak, origPause, origTick
	})
}

const doodleJSON = `{
  "word": "cactus",
  "acceptable_answers": ["cactus", "cacti"],
  "drawing_prompt": "a simple black line doodle of a potted desert plant with two arms",
  "hints": ["it lives in the desert", "starts with C"]
}`

func lyricJSON(title, artist string) string {
	return fmt.Sprintf(`{
	  "song_title": %q,
	  "artist": %q,
	  "lyric_lines": ["la la la"],
	  "hints": ["a hint", "another hint"],
	  "acceptable_title_answers": [%q],
	  "acceptable_artist_answers": [%q]
	}`, title, artist, strings.ToLower(title), strings.ToLower(artist))
}

// fakeProvider replays a fixed script of completions; the last entry
// repeats once the script runs out.
type fakeProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (f *fakeProvider) Complete(_ context.Context, _ string, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeProvider) CompleteWithSystem(ctx context.Context, model, _ string, prompt string) (string, error) {
	return f.Complete(ctx, model, prompt)
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeImageProvider adds image support on top of the script.
type fakeImageProvider struct {
	fakeProvider
	image []byte
}

func (f *fakeImageProvider) GenerateImage(_ context.Context, _ string, _ string) ([]byte, error) {
	return f.image, nil
}

type sentEmbed struct {
	channelID string
	body      channel.Renderable
}

// fakeGateway records everything the game renders and feeds inbound
// messages through a single shared inbox.
type fakeGateway struct {
	mu           sync.Mutex
	nextID       int
	embeds       []sentEmbed
	texts        []string
	edits        map[string][]channel.Renderable
	reactions    []string
	editErr      error
	editAttempts int

	inbox chan channel.Message
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		edits: make(map[string][]channel.Renderable),
		inbox: make(chan channel.Message, 64),
	}
}

func (f *fakeGateway) Send(_ context.Context, channelID string, r channel.Renderable) (channel.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.embeds = append(f.embeds, sentEmbed{channelID: channelID, body: r})
	return channel.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", f.nextID)}, nil
}

func (f *fakeGateway) SendText(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeGateway) Edit(_ context.Context, ref channel.MessageRef, r channel.Renderable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editAttempts++
	if f.editErr != nil {
		return f.editErr
	}
	f.edits[ref.MessageID] = append(f.edits[ref.MessageID], r)
	return nil
}

func (f *fakeGateway) React(_ context.Context, _ channel.MessageRef, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, emoji)
	return nil
}

func (f *fakeGateway) Fetch(_ context.Context, ref channel.MessageRef) (channel.Message, error) {
	return channel.Message{ID: ref.MessageID, ChannelID: ref.ChannelID}, nil
}

func (f *fakeGateway) Subscribe(_ string) (<-chan channel.Message, func()) {
	return f.inbox, func() {}
}

func (f *fakeGateway) say(channelID, author, content string) {
	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("u%d", f.nextID)
	f.mu.Unlock()
	f.inbox <- channel.Message{ID: id, ChannelID: channelID, AuthorID: author, Content: content}
}

func (f *fakeGateway) embedCount(titlePart string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.embeds {
		if strings.Contains(e.body.Title, titlePart) {
			n++
		}
	}
	return n
}

func (f *fakeGateway) hasText(part string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.texts {
		if strings.Contains(s, part) {
			return true
		}
	}
	return false
}

func (f *fakeGateway) reactionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reactions)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
