// Package settings owns the bot configuration: built-in defaults overlaid by
// the persisted config file and environment variables, validated on every
// write and saved atomically.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// DefaultConfigFile is where tunables are persisted unless CONFIG_FILE says otherwise.
const DefaultConfigFile = "config.json"

// Config holds the tunable bot settings. JSON tags match the keys in the
// persisted config file and the matching environment variable names.
//
// Valid ranges: every ceiling must be in [1, MaxCeiling], every delay bound
// in [1, MaxDelayBound] seconds with MIN_DELAY_SECONDS <= MAX_DELAY_SECONDS.
type Config struct {
	SearchQuery   string `json:"SEARCH_QUERY"`
	ReplyKeywords string `json:"REPLY_KEYWORDS"`

	MaxRepliesPerDay  int `json:"MAX_REPLIES_PER_DAY"`
	MaxRepliesPerHour int `json:"MAX_REPLIES_PER_HOUR"`
	MinDelaySeconds   int `json:"MIN_DELAY_SECONDS"`
	MaxDelaySeconds   int `json:"MAX_DELAY_SECONDS"`
	MaxFollowsPerDay  int `json:"MAX_FOLLOWS_PER_DAY"`
	MaxLikesPerDay    int `json:"MAX_LIKES_PER_DAY"`
	MaxLikesPerHour   int `json:"MAX_LIKES_PER_HOUR"`

	EnableAutoFollowBack    bool `json:"ENABLE_AUTO_FOLLOW_BACK"`
	EnableAutoLikeFollowing bool `json:"ENABLE_AUTO_LIKE_FOLLOWING"`
}

// Keywords returns the reply keywords as a trimmed list.
func (c Config) Keywords() []string {
	parts := strings.Split(c.ReplyKeywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SearchQuery:             "python programming",
		ReplyKeywords:           "python,programming,coding,tutorial",
		MaxRepliesPerDay:        50,
		MaxRepliesPerHour:       10,
		MinDelaySeconds:         60,
		MaxDelaySeconds:         180,
		MaxFollowsPerDay:        20,
		MaxLikesPerDay:          100,
		MaxLikesPerHour:         15,
		EnableAutoFollowBack:    true,
		EnableAutoLikeFollowing: true,
	}
}

// Partial is a sparse configuration update from the control panel. Nil fields
// keep their current value.
type Partial struct {
	SearchQuery   *string `json:"SEARCH_QUERY"`
	ReplyKeywords *string `json:"REPLY_KEYWORDS"`

	MaxRepliesPerDay  *int `json:"MAX_REPLIES_PER_DAY"`
	MaxRepliesPerHour *int `json:"MAX_REPLIES_PER_HOUR"`
	MinDelaySeconds   *int `json:"MIN_DELAY_SECONDS"`
	MaxDelaySeconds   *int `json:"MAX_DELAY_SECONDS"`
	MaxFollowsPerDay  *int `json:"MAX_FOLLOWS_PER_DAY"`
	MaxLikesPerDay    *int `json:"MAX_LIKES_PER_DAY"`
	MaxLikesPerHour   *int `json:"MAX_LIKES_PER_HOUR"`

	EnableAutoFollowBack    *bool `json:"ENABLE_AUTO_FOLLOW_BACK"`
	EnableAutoLikeFollowing *bool `json:"ENABLE_AUTO_LIKE_FOLLOWING"`
}

func (p Partial) apply(c Config) Config {
	if p.SearchQuery != nil {
		c.SearchQuery = *p.SearchQuery
	}
	if p.ReplyKeywords != nil {
		c.ReplyKeywords = *p.ReplyKeywords
	}
	if p.MaxRepliesPerDay != nil {
		c.MaxRepliesPerDay = *p.MaxRepliesPerDay
	}
	if p.MaxRepliesPerHour != nil {
		c.MaxRepliesPerHour = *p.MaxRepliesPerHour
	}
	if p.MinDelaySeconds != nil {
		c.MinDelaySeconds = *p.MinDelaySeconds
	}
	if p.MaxDelaySeconds != nil {
		c.MaxDelaySeconds = *p.MaxDelaySeconds
	}
	if p.MaxFollowsPerDay != nil {
		c.MaxFollowsPerDay = *p.MaxFollowsPerDay
	}
	if p.MaxLikesPerDay != nil {
		c.MaxLikesPerDay = *p.MaxLikesPerDay
	}
	if p.MaxLikesPerHour != nil {
		c.MaxLikesPerHour = *p.MaxLikesPerHour
	}
	if p.EnableAutoFollowBack != nil {
		c.EnableAutoFollowBack = *p.EnableAutoFollowBack
	}
	if p.EnableAutoLikeFollowing != nil {
		c.EnableAutoLikeFollowing = *p.EnableAutoLikeFollowing
	}
	return c
}

// Store loads, serves and persists the configuration. Reads hand out copies,
// so callers never share mutable state with the store.
type Store struct {
	path string

	mu  sync.RWMutex
	cfg Config
}

// NewStore creates a store backed by the given file path. Call Load before use.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultConfigFile
	}
	return &Store{path: path, cfg: Defaults()}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load merges defaults, environment overrides and the persisted file, in that
// order, so the file wins for tunable behavior. A missing file is created with
// the defaults; an unreadable one is an error rather than a silent reset.
func (s *Store) Load() error {
	cfg := Defaults()

	if errs := applyEnv(&cfg); len(errs) > 0 {
		return errs
	}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		if err := writeAtomic(s.path, Defaults()); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read config file: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse %s: %w", s.path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// DelayBounds returns the current inter-action delay bounds in seconds. The
// timing policy reads these fresh on every call so a live edit takes effect
// without restarting the bot.
func (s *Store) DelayBounds() (min, max int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.MinDelaySeconds, s.cfg.MaxDelaySeconds
}

// Update validates the merged result of the partial update and, only if every
// field passes, persists it atomically and swaps it in. On failure neither
// the file nor the in-memory configuration changes.
func (s *Store) Update(p Partial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := p.apply(s.cfg)
	if err := merged.Validate(); err != nil {
		return err
	}
	if err := writeAtomic(s.path, merged); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.cfg = merged
	return nil
}

// writeAtomic persists cfg with write-temp-then-rename semantics so a crash
// mid-write never leaves a corrupt config file behind.
func writeAtomic(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// applyEnv overlays environment variables named after the JSON keys onto cfg.
// Unparsable values are reported per field rather than ignored.
func applyEnv(cfg *Config) FieldErrors {
	var errs FieldErrors

	envString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, FieldError{Field: key, Message: fmt.Sprintf("environment value %q is not an integer", v)})
			return
		}
		*dst = n
	}
	envBool := func(key string, dst *bool) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		default:
			errs = append(errs, FieldError{Field: key, Message: fmt.Sprintf("environment value %q is not a boolean", v)})
		}
	}

	envString("SEARCH_QUERY", &cfg.SearchQuery)
	envString("REPLY_KEYWORDS", &cfg.ReplyKeywords)
	envInt("MAX_REPLIES_PER_DAY", &cfg.MaxRepliesPerDay)
	envInt("MAX_REPLIES_PER_HOUR", &cfg.MaxRepliesPerHour)
	envInt("MIN_DELAY_SECONDS", &cfg.MinDelaySeconds)
	envInt("MAX_DELAY_SECONDS", &cfg.MaxDelaySeconds)
	envInt("MAX_FOLLOWS_PER_DAY", &cfg.MaxFollowsPerDay)
	envInt("MAX_LIKES_PER_DAY", &cfg.MaxLikesPerDay)
	envInt("MAX_LIKES_PER_HOUR", &cfg.MaxLikesPerHour)
	envBool("ENABLE_AUTO_FOLLOW_BACK", &cfg.EnableAutoFollowBack)
	envBool("ENABLE_AUTO_LIKE_FOLLOWING", &cfg.EnableAutoLikeFollowing)

	return errs
}
