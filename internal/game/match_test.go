package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lyricPayloadFixture() *Payload {
	return &Payload{
		Title:         "Imagine",
		Artist:        "John Lennon",
		LyricLines:    []string{"You may say I'm a dreamer"},
		TitleAnswers:  []string{"imagine", "imagine john lennon"},
		ArtistAnswers: []string{"john lennon", "lennon"},
		Strict:        true,
		Mode:          ModeEither,
	}
}

func TestIsCorrectAcceptedVariants(t *testing.T) {
	p := lyricPayloadFixture()
	for _, guess := range []string{"imagine", "imagine john lennon", "john lennon", "lennon"} {
		assert.True(t, p.IsCorrect(guess), "variant %q should match", guess)
	}
}

func TestIsCorrectNormalizationIdempotence(t *testing.T) {
	p := lyricPayloadFixture()
	assert.True(t, p.IsCorrect("  IMAGINE  "))
	assert.True(t, p.IsCorrect("Imagine   John   Lennon"))
	assert.True(t, p.IsCorrect("JOHN lennon"))
}

func TestIsCorrectStrictRejectsCommonWordSubstring(t *testing.T) {
	p := &Payload{
		Title:         "Yellow",
		Artist:        "Coldplay",
		TitleAnswers:  []string{"yellow"},
		ArtistAnswers: []string{"coldplay"},
		Strict:        true,
		Mode:          ModeEither,
	}
	// "yellow" inside a sentence is not an exact variant and carries
	// only one side; strict mode demands both sides for substrings
	assert.False(t, p.IsCorrect("i like the color yellow a lot"))
	assert.True(t, p.IsCorrect("yellow"))
	assert.True(t, p.IsCorrect("that's yellow by coldplay"))
}

func TestIsCorrectStrictBothSubstrings(t *testing.T) {
	p := lyricPayloadFixture()
	assert.True(t, p.IsCorrect("is it imagine by john lennon?"))
	assert.False(t, p.IsCorrect("something by lennon maybe"))
}

func TestIsCorrectLoose(t *testing.T) {
	p := &Payload{
		Title:        "Cat",
		TitleAnswers: []string{"cat", "kitty"},
		Strict:       false,
		Mode:         ModeTitleOnly,
	}
	assert.True(t, p.IsCorrect("kitty"))
	assert.True(t, p.IsCorrect("is that a cat?"))
	assert.False(t, p.IsCorrect("dog"))
}

func TestIsCorrectModeGating(t *testing.T) {
	p := lyricPayloadFixture()
	p.Mode = ModeTitleOnly
	assert.True(t, p.IsCorrect("imagine"))
	assert.False(t, p.IsCorrect("john lennon"))

	p = lyricPayloadFixture()
	p.Mode = ModeArtistOnly
	assert.False(t, p.IsCorrect("imagine"))
	assert.True(t, p.IsCorrect("john lennon"))
}

func TestIsCorrectEmptyGuess(t *testing.T) {
	p := lyricPayloadFixture()
	assert.False(t, p.IsCorrect(""))
	assert.False(t, p.IsCorrect("   "))
}

func TestNorm(t *testing.T) {
	assert.Equal(t, "hey jude", norm("  Hey   JUDE "))
	assert.Equal(t, "", norm("   "))
}
