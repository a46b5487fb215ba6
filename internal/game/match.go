package game

import "strings"

// norm lowercases, trims and collapses internal whitespace.
func norm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// IsCorrect decides whether a free-text guess hits this payload. It is
// pure and deterministic.
//
// Loose policy: exact match against any accepted variant, or the
// normalized title/artist appearing as a substring of the guess.
//
// Strict policy: exact variant match, exact title/artist match, or a
// guess containing both the full title and the full artist. Strict
// exists so a guess carrying only an artist's surname that happens to
// be an ordinary word doesn't win a lyric round.
func (p *Payload) IsCorrect(guess string) bool {
	g := norm(guess)
	if g == "" {
		return false
	}

	titleEligible := p.Mode != ModeArtistOnly
	artistEligible := p.Mode != ModeTitleOnly
	title := norm(p.Title)
	artist := norm(p.Artist)

	if titleEligible {
		for _, ans := range p.TitleAnswers {
			if g == norm(ans) {
				return true
			}
		}
		if title != "" && g == title {
			return true
		}
	}
	if artistEligible {
		for _, ans := range p.ArtistAnswers {
			if g == norm(ans) {
				return true
			}
		}
		if artist != "" && g == artist {
			return true
		}
	}

	if p.Strict {
		if titleEligible && artistEligible && title != "" && artist != "" &&
			strings.Contains(g, title) && strings.Contains(g, artist) {
			return true
		}
		return false
	}

	if titleEligible && title != "" && strings.Contains(g, title) {
		return true
	}
	if artistEligible && artist != "" && strings.Contains(g, artist) {
		return true
	}
	return false
}
