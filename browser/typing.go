package browser

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"

	"github.com/Nehilsa2/twitter_automation/stealth"
)

// TypingConfig controls human-like keystroke timing. Instant text insertion
// produces zero keystroke events, which is an obvious automation tell.
type TypingConfig struct {
	BaseDelayMs           int
	VariationMs           int
	ThinkPauseProbability int // percent chance of a longer pause per keystroke
	ThinkPauseMinMs       int
	ThinkPauseMaxMs       int
}

// DefaultTypingConfig approximates an average typist (~75 WPM).
func DefaultTypingConfig() *TypingConfig {
	return &TypingConfig{
		BaseDelayMs:           80,
		VariationMs:           40,
		ThinkPauseProbability: 5,
		ThinkPauseMinMs:       300,
		ThinkPauseMaxMs:       800,
	}
}

// typeInto finds the element and types text into it character by character
// with human-like delays.
func typeInto(page *rod.Page, selector, text string, cfg *TypingConfig) error {
	if cfg == nil {
		cfg = DefaultTypingConfig()
	}

	element, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}

	if err := element.Focus(); err != nil {
		return fmt.Errorf("focus %s: %w", selector, err)
	}
	stealth.SleepMillis(50, 100)

	for i, char := range text {
		if err := element.Input(string(char)); err != nil {
			return fmt.Errorf("type into %s: %w", selector, err)
		}
		time.Sleep(keystrokeDelay(char, cfg, i))
	}
	return nil
}

// keystrokeDelay varies timing per character: word boundaries and punctuation
// pause longer, shifted characters type slower, and occasionally the "typist"
// stops to think.
func keystrokeDelay(char rune, cfg *TypingConfig, position int) time.Duration {
	base := cfg.BaseDelayMs

	switch {
	case char == ' ':
		base = int(float64(base) * 1.3)
	case char == '.' || char == '!' || char == '?':
		base = int(float64(base) * 1.8)
	case char == ',' || char == ';' || char == ':':
		base = int(float64(base) * 1.4)
	case char >= 'A' && char <= 'Z':
		base = int(float64(base) * 1.2)
	case char == '@' || char == '#':
		base = int(float64(base) * 1.4)
	}

	if position == 0 {
		base = int(float64(base) * 1.5)
	}

	delay := base + rand.Intn(cfg.VariationMs*2+1) - cfg.VariationMs
	if delay < 30 {
		delay = 30
	}

	if rand.Intn(100) < cfg.ThinkPauseProbability {
		delay += cfg.ThinkPauseMinMs + rand.Intn(cfg.ThinkPauseMaxMs-cfg.ThinkPauseMinMs+1)
	}

	return time.Duration(delay) * time.Millisecond
}
