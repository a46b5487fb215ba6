package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	maxExcerptLines = 3
	maxLineTokens   = 8
	maxExcerptChars = 90
	maxHintLines    = 3
)

// Payload is the immutable content of one round.
type Payload struct {
	Title         string
	Artist        string
	LyricLines    []string
	HintLines     []string
	TitleAnswers  []string
	ArtistAnswers []string
	Strict        bool
	Mode          Mode
	DrawPrompt    string // doodle only, consumed by image generation
	Image         []byte // doodle only
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.Trim(text, "`")
		if strings.HasPrefix(strings.ToLower(text), "json") {
			text = text[4:]
		}
	}
	return strings.TrimSpace(text)
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func foldList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := norm(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// capExcerpt enforces the display limits on lyric lines: each line is
// cut to 8 tokens, and lines stop accumulating once the running
// character total would pass 90. A line that would blow the budget is
// dropped whole, never truncated mid-line.
func capExcerpt(lines []string) []string {
	if len(lines) > maxExcerptLines {
		lines = lines[:maxExcerptLines]
	}
	safe := make([]string, 0, len(lines))
	total := 0
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) > maxLineTokens {
			words = words[:maxLineTokens]
		}
		short := strings.Join(words, " ")
		if total+len(short) > maxExcerptChars {
			break
		}
		total += len(short)
		safe = append(safe, short)
	}
	return safe
}

func parseLyricPayload(raw string) (*Payload, error) {
	var data struct {
		SongTitle               string   `json:"song_title"`
		Artist                  string   `json:"artist"`
		LyricLines              []string `json:"lyric_lines"`
		Hints                   []string `json:"hints"`
		AcceptableTitleAnswers  []string `json:"acceptable_title_answers"`
		AcceptableArtistAnswers []string `json:"acceptable_artist_answers"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &data); err != nil {
		return nil, fmt.Errorf("lyric payload: %w", err)
	}

	title := strings.TrimSpace(data.SongTitle)
	lines := capExcerpt(trimList(data.LyricLines))
	if title == "" || len(lines) == 0 {
		return nil, fmt.Errorf("lyric payload: missing song_title or lyric_lines")
	}

	artist := strings.TrimSpace(data.Artist)
	if artist == "" {
		artist = "Unknown"
	}
	hints := trimList(data.Hints)
	if len(hints) > maxHintLines {
		hints = hints[:maxHintLines]
	}

	return &Payload{
		Title:         title,
		Artist:        artist,
		LyricLines:    lines,
		HintLines:     hints,
		TitleAnswers:  foldList(data.AcceptableTitleAnswers),
		ArtistAnswers: foldList(data.AcceptableArtistAnswers),
		Strict:        true,
		Mode:          ModeEither,
	}, nil
}

func parseDoodlePayload(raw string) (*Payload, error) {
	var data struct {
		Word              string   `json:"word"`
		AcceptableAnswers []string `json:"acceptable_answers"`
		DrawingPrompt     string   `json:"drawing_prompt"`
		Hints             []string `json:"hints"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &data); err != nil {
		return nil, fmt.Errorf("doodle payload: %w", err)
	}

	word := strings.TrimSpace(data.Word)
	answers := foldList(data.AcceptableAnswers)
	drawPrompt := strings.TrimSpace(data.DrawingPrompt)
	if word == "" || len(answers) == 0 || drawPrompt == "" {
		return nil, fmt.Errorf("doodle payload: missing word, answers or drawing_prompt")
	}
	hints := trimList(data.Hints)
	if len(hints) > maxHintLines {
		hints = hints[:maxHintLines]
	}

	return &Payload{
		Title:        word,
		LyricLines:   nil,
		HintLines:    hints,
		TitleAnswers: answers,
		Strict:       false,
		Mode:         ModeTitleOnly,
		DrawPrompt:   drawPrompt,
	}, nil
}

// Answer is the human-readable reveal line for this payload.
func (p *Payload) Answer() string {
	if p.Artist == "" {
		return p.Title
	}
	return fmt.Sprintf("%s – %s", p.Title, p.Artist)
}
