// Package stealth gates and paces automated actions so the bot stays inside
// configured ceilings and keeps human-looking timing between interactions.
package stealth

import (
	"sync"
	"time"

	"github.com/Nehilsa2/twitter_automation/settings"
)

// Kind identifies a rate-limited action.
type Kind string

const (
	KindReply  Kind = "reply"
	KindLike   Kind = "like"
	KindFollow Kind = "follow"
)

// Kinds lists every rate-limited action kind.
var Kinds = []Kind{KindReply, KindLike, KindFollow}

// Window lengths for the two counters kept per kind.
const (
	hourWindow = time.Hour
	dayWindow  = 24 * time.Hour
)

// Limits are the ceilings for one action kind. A zero limit means unlimited.
type Limits struct {
	Hourly int
	Daily  int
}

// LimitsFromConfig maps the configured ceilings onto per-kind limits. Follows
// only carry a daily ceiling.
func LimitsFromConfig(cfg settings.Config) map[Kind]Limits {
	return map[Kind]Limits{
		KindReply:  {Hourly: cfg.MaxRepliesPerHour, Daily: cfg.MaxRepliesPerDay},
		KindLike:   {Hourly: cfg.MaxLikesPerHour, Daily: cfg.MaxLikesPerDay},
		KindFollow: {Daily: cfg.MaxFollowsPerDay},
	}
}

// window is a fixed-size counting window. It resets lazily: whenever it is
// touched after a full window length has elapsed, the count drops to zero and
// the window restarts at that moment.
type window struct {
	count int
	start time.Time
}

func (w *window) rollover(now time.Time, length time.Duration) {
	if now.Sub(w.start) >= length {
		w.count = 0
		w.start = now
	}
}

// Limiter tracks per-kind hourly and daily action counts against fixed
// windows. The window resets exactly at the boundary rather than sliding, so
// a burst right after rollover is possible; that trade-off is deliberate.
type Limiter struct {
	mu     sync.Mutex
	now    func() time.Time
	limits map[Kind]Limits
	hourly map[Kind]*window
	daily  map[Kind]*window
}

// LimiterOption customizes a Limiter.
type LimiterOption func(*Limiter)

// WithClock substitutes the time source, for deterministic tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter creates a limiter with the given per-kind ceilings.
func NewLimiter(limits map[Kind]Limits, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		now:    time.Now,
		limits: limits,
		hourly: make(map[Kind]*window),
		daily:  make(map[Kind]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CanPerform reports whether an action of the given kind is currently within
// both its hourly and daily ceilings. Expired windows are rolled over first.
// It never consumes quota; call Record after the action actually succeeded.
func (l *Limiter) CanPerform(kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	limits := l.limits[kind]
	hour := l.win(l.hourly, kind, now)
	day := l.win(l.daily, kind, now)
	hour.rollover(now, hourWindow)
	day.rollover(now, dayWindow)

	if limits.Hourly > 0 && hour.count >= limits.Hourly {
		return false
	}
	if limits.Daily > 0 && day.count >= limits.Daily {
		return false
	}
	return true
}

// Record counts one successfully performed action against both windows.
func (l *Limiter) Record(kind Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hour := l.win(l.hourly, kind, now)
	day := l.win(l.daily, kind, now)
	hour.rollover(now, hourWindow)
	day.rollover(now, dayWindow)
	hour.count++
	day.count++
}

// Stats is a point-in-time view of one kind's counters, for the dashboard.
type Stats struct {
	Kind        Kind `json:"kind"`
	HourlyCount int  `json:"hourly_count"`
	HourlyLimit int  `json:"hourly_limit,omitempty"`
	DailyCount  int  `json:"daily_count"`
	DailyLimit  int  `json:"daily_limit,omitempty"`
}

// Stats returns current counts and ceilings for a kind, after rollover.
func (l *Limiter) Stats(kind Kind) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	limits := l.limits[kind]
	hour := l.win(l.hourly, kind, now)
	day := l.win(l.daily, kind, now)
	hour.rollover(now, hourWindow)
	day.rollover(now, dayWindow)

	return Stats{
		Kind:        kind,
		HourlyCount: hour.count,
		HourlyLimit: limits.Hourly,
		DailyCount:  day.count,
		DailyLimit:  limits.Daily,
	}
}

func (l *Limiter) win(m map[Kind]*window, kind Kind, now time.Time) *window {
	w, ok := m[kind]
	if !ok {
		w = &window{start: now}
		m[kind] = w
	}
	return w
}
