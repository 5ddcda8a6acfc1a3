package reply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testKeywords = []string{"python", "coding"}

func TestShouldReplyRequiresKeywordMatch(t *testing.T) {
	g := NewGenerator()

	assert.True(t, g.ShouldReply("learning python the hard way", testKeywords))
	assert.True(t, g.ShouldReply("Late night CODING session", testKeywords))
	assert.False(t, g.ShouldReply("cooking pasta tonight", testKeywords))
	assert.False(t, g.ShouldReply("python is great", nil))
}

func TestShouldReplySkipsRetweets(t *testing.T) {
	g := NewGenerator()
	assert.False(t, g.ShouldReply("RT @someone: python is great", testKeywords))
}

func TestShouldReplySkipsHashtagSpam(t *testing.T) {
	g := NewGenerator()

	spam := "python #a #b #c #d #e #f"
	assert.False(t, g.ShouldReply(spam, testKeywords))

	// Five hashtags are still acceptable.
	assert.True(t, g.ShouldReply("python #a #b #c #d #e", testKeywords))
}

func TestShouldReplyIgnoresEmptyKeywords(t *testing.T) {
	g := NewGenerator()
	assert.False(t, g.ShouldReply("anything at all", []string{"", ""}))
}

func TestComposeDrawsFromMatchingPool(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 20; i++ {
		text := g.Compose("deep dive into python internals", testKeywords)
		assert.Contains(t, g.pools["python"], text)
	}
}

func TestComposeUsesFirstMatchingKeyword(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 20; i++ {
		text := g.Compose("a coding tutorial in python", []string{"tutorial", "python"})
		assert.Contains(t, g.pools["tutorial"], text)
	}
}

func TestComposeFallsBackForUnknownKeyword(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 20; i++ {
		text := g.Compose("great golang thread", []string{"golang"})
		assert.Contains(t, g.fallback, text)
	}
}

func TestComposeTruncatesLongTemplates(t *testing.T) {
	g := &Generator{
		pools:    map[string][]string{"python": {strings.Repeat("x", 400)}},
		fallback: []string{"short"},
	}

	text := g.Compose("python", []string{"python"})
	assert.Len(t, text, MaxLength)
	assert.True(t, strings.HasSuffix(text, "..."))
}
