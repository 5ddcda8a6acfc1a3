// Package reply composes reply text for discovered tweets from keyword-matched
// template pools. Plain string templating, nothing generated.
package reply

import (
	"math/rand"
	"strings"
)

// MaxLength is the tweet character limit replies are truncated to.
const MaxLength = 280

// Generator picks replies for tweets that match the configured keywords.
type Generator struct {
	pools    map[string][]string
	fallback []string
}

// NewGenerator returns a generator with the built-in template pools.
func NewGenerator() *Generator {
	return &Generator{
		pools: map[string][]string{
			"python": {
				"Python makes this so much nicer than it has any right to be.",
				"Always good to see more Python content on here!",
				"Nice one, the Python ecosystem keeps surprising me.",
			},
			"programming": {
				"Solid point. Half of programming is naming things anyway.",
				"This is the kind of programming content worth following.",
			},
			"coding": {
				"Relatable. Coding is 10% typing and 90% staring.",
				"Good stuff, bookmarking this for my next coding session.",
			},
			"tutorial": {
				"Thanks for the tutorial, adding it to my reading list!",
				"Great walkthrough, wish I had this when I started.",
			},
		},
		fallback: []string{
			"Thanks for sharing!",
			"Great point, thanks for posting this.",
			"Interesting take, appreciate you putting it out there.",
		},
	}
}

// ShouldReply decides whether a tweet deserves an automated reply: it must
// match at least one keyword, must not be a retweet, and must not look like
// hashtag spam.
func (g *Generator) ShouldReply(text string, keywords []string) bool {
	if strings.HasPrefix(text, "RT @") {
		return false
	}
	if strings.Count(text, "#") > 5 {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Compose returns a reply for the tweet, drawn from the pool of the first
// matching keyword or from the generic fallback pool, truncated to MaxLength.
func (g *Generator) Compose(text string, keywords []string) string {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		key := strings.ToLower(kw)
		if key == "" || !strings.Contains(lower, key) {
			continue
		}
		if pool, ok := g.pools[key]; ok && len(pool) > 0 {
			return truncate(pool[rand.Intn(len(pool))])
		}
	}
	return truncate(g.fallback[rand.Intn(len(g.fallback))])
}

func truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	return s[:MaxLength-3] + "..."
}
