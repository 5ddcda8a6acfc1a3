package settings

import (
	"fmt"
	"strings"
)

// Sane bounds for numeric settings. Values outside these ranges are rejected
// at the point of write, never silently clamped.
const (
	MaxCeiling    = 10000
	MaxDelayBound = 86400
)

// FieldError describes a single invalid configuration field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors collects every offending field of a rejected configuration.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks every field and reports all violations, not just the first.
// A nil return means the configuration is usable.
func (c Config) Validate() error {
	var errs FieldErrors

	ceiling := func(field string, v int) {
		if v < 1 || v > MaxCeiling {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxCeiling, v),
			})
		}
	}
	delay := func(field string, v int) {
		if v < 1 || v > MaxDelayBound {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("must be between 1 and %d seconds, got %d", MaxDelayBound, v),
			})
		}
	}

	if strings.TrimSpace(c.SearchQuery) == "" {
		errs = append(errs, FieldError{Field: "SEARCH_QUERY", Message: "must not be empty"})
	}

	ceiling("MAX_REPLIES_PER_DAY", c.MaxRepliesPerDay)
	ceiling("MAX_REPLIES_PER_HOUR", c.MaxRepliesPerHour)
	ceiling("MAX_FOLLOWS_PER_DAY", c.MaxFollowsPerDay)
	ceiling("MAX_LIKES_PER_DAY", c.MaxLikesPerDay)
	ceiling("MAX_LIKES_PER_HOUR", c.MaxLikesPerHour)

	delay("MIN_DELAY_SECONDS", c.MinDelaySeconds)
	delay("MAX_DELAY_SECONDS", c.MaxDelaySeconds)
	if c.MinDelaySeconds >= 1 && c.MaxDelaySeconds >= 1 && c.MinDelaySeconds > c.MaxDelaySeconds {
		errs = append(errs, FieldError{
			Field:   "MIN_DELAY_SECONDS",
			Message: fmt.Sprintf("must not exceed MAX_DELAY_SECONDS (%d > %d)", c.MinDelaySeconds, c.MaxDelaySeconds),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
