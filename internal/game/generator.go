package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kiliankoe/micmate/internal/ai"
	"github.com/kiliankoe/micmate/internal/retry"
)

// ErrGeneratorFailed means the retry ceiling was exhausted without a
// single structurally valid candidate. The caller must abort the round
// and tell the channel; there is no fallback payload.
var ErrGeneratorFailed = errors.New("generator failed")

// Request carries the constraints for one round's content.
type Request struct {
	Kind       Kind
	Avoid      []string // normalized titles already used this session
	LastTitle  string   // previous round, hard exclude
	LastArtist string
	Genre      string
	Era        string
}

// Source wraps an AI provider with the parse/validate/anti-repeat loop.
type Source struct {
	Provider   ai.Provider
	ChatModel  string
	ImageModel string
}

func NewSource(provider ai.Provider, chatModel, imageModel string) *Source {
	return &Source{Provider: provider, ChatModel: chatModel, ImageModel: imageModel}
}

// Next produces the payload for the next round. Structurally invalid
// responses are retried up to the kind's ceiling; candidates colliding
// with the avoid set or the previous round are rejected but remembered,
// and the last one is accepted if the ceiling runs out. Repetition
// avoidance is best-effort, never a guarantee.
func (s *Source) Next(ctx context.Context, req Request) (*Payload, error) {
	var imgProvider ai.ImageProvider
	if req.Kind == KindDoodle {
		ip, ok := s.Provider.(ai.ImageProvider)
		if !ok {
			return nil, fmt.Errorf("%w: provider has no image support", ErrGeneratorFailed)
		}
		imgProvider = ip
	}

	prompt := req.prompt()

	payload, err := retry.Value(req.Kind.RetryLimit(), func(attempt int) (*Payload, error) {
		raw, err := s.Provider.Complete(ctx, s.ChatModel, prompt)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("generator request failed")
			return nil, err
		}
		var p *Payload
		if req.Kind == KindDoodle {
			p, err = parseDoodlePayload(raw)
		} else {
			p, err = parseLyricPayload(raw)
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("raw", clip(raw, 200)).Msg("generator payload rejected")
			return nil, err
		}
		if imgProvider != nil {
			img, err := imgProvider.GenerateImage(ctx, s.ImageModel, p.DrawPrompt)
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt).Msg("doodle image failed")
				return nil, err
			}
			p.Image = img
		}
		return p, nil
	}, func(p *Payload) bool {
		return !req.collides(p)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorFailed, err)
	}
	return payload, nil
}

func (r Request) collides(p *Payload) bool {
	title := norm(p.Title)
	if norm(r.LastTitle) != "" && title == norm(r.LastTitle) && norm(p.Artist) == norm(r.LastArtist) {
		return true
	}
	for _, used := range r.Avoid {
		if title == used {
			return true
		}
	}
	return false
}

func (r Request) prompt() string {
	if r.Kind == KindDoodle {
		return r.doodlePrompt()
	}
	return r.lyricPrompt()
}

func (r Request) lyricPrompt() string {
	var b strings.Builder
	b.WriteString(`You are powering a Discord "guess the song" game using lyrics.

Pick a well-known, globally recognisable song that many people are likely to know.

You MUST NOT choose "Shape of You" by Ed Sheeran for this game.
`)
	if r.Genre != "" {
		fmt.Fprintf(&b, "The song MUST belong to the genre: %s.\n", r.Genre)
	}
	if r.Era != "" {
		fmt.Fprintf(&b, "The song MUST be from this era: %s.\n", r.Era)
	}
	if r.LastTitle != "" {
		fmt.Fprintf(&b, "\nThe previous round used: %q by %s.\nYou MUST NOT choose that same song again this round.\n", r.LastTitle, r.LastArtist)
	}
	if len(r.Avoid) > 0 {
		fmt.Fprintf(&b, "\nThese songs were already played, avoid all of them: %s.\n", strings.Join(r.Avoid, "; "))
	}
	b.WriteString(`
Return ONLY a compact JSON object with this exact structure:

{
  "song_title": "...",
  "artist": "...",
  "lyric_lines": ["...", "...", "..."],
  "hints": ["...", "..."],
  "acceptable_title_answers": ["...", "..."],
  "acceptable_artist_answers": ["...", "..."]
}

Rules:
- "lyric_lines" must contain 1 to 3 very short lyric-style lines:
  - Each line MUST be 8 words or fewer.
  - The TOTAL characters across all lines MUST stay safely under 90 characters.
  - Do NOT output full verses or long passages.
- It is OK if lines resemble real lyrics, as long as they stay under the above limits.
- "hints" must contain up to 3 short non-lyric hints (release year, genre, first letter of the title).
- In "acceptable_title_answers":
  - include sensible variations of the song title (title alone, title + artist, common short forms).
- In "acceptable_artist_answers":
  - include reasonable variations of the artist name (full name, common short name).
- Do not include any explanation or text outside the JSON object.`)
	return b.String()
}

func (r Request) doodlePrompt() string {
	var b strings.Builder
	b.WriteString(`You are powering a Discord "guess the doodle" game.

Pick ONE simple, concrete, widely recognisable thing that can be drawn as a doodle.
`)
	if r.Genre != "" {
		fmt.Fprintf(&b, "The thing MUST fit the theme: %s.\n", r.Genre)
	}
	if r.LastTitle != "" {
		fmt.Fprintf(&b, "\nThe previous round used %q. You MUST NOT choose it again.\n", r.LastTitle)
	}
	if len(r.Avoid) > 0 {
		fmt.Fprintf(&b, "\nThese were already played, avoid all of them: %s.\n", strings.Join(r.Avoid, "; "))
	}
	b.WriteString(`
Return ONLY a compact JSON object with this exact structure:

{
  "word": "...",
  "acceptable_answers": ["...", "..."],
  "drawing_prompt": "...",
  "hints": ["...", "..."]
}

Rules:
- "word" is the single thing to guess.
- "acceptable_answers" must include the word itself plus common synonyms and plural forms.
- "drawing_prompt" describes a simple black-on-white doodle of the word WITHOUT naming it in any visible text.
- "hints" must contain up to 3 short hints (category, first letter).
- Do not include any explanation or text outside the JSON object.`)
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
