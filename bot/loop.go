package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/reply"
	"github.com/Nehilsa2/twitter_automation/settings"
	"github.com/Nehilsa2/twitter_automation/stealth"
)

// loop is one run of the automation cycle: search for candidates, act on them
// within the rate limits, sleep a humanized delay, repeat until cancelled.
// Ceilings are fixed from the configuration snapshot taken at start; only the
// delay bounds are re-read live through the store.
type loop struct {
	cfg      settings.Config
	keywords []string
	driver   Driver
	limiter  *stealth.Limiter
	delays   *stealth.Delays
	replies  *reply.Generator
	log      *zap.Logger

	// IDs of tweets already replied to this run, so one candidate showing up
	// in several searches is answered once.
	replied map[string]struct{}
}

func newLoop(cfg settings.Config, store *settings.Store, driver Driver, log *zap.Logger) *loop {
	return &loop{
		cfg:      cfg,
		keywords: cfg.Keywords(),
		driver:   driver,
		limiter:  stealth.NewLimiter(stealth.LimitsFromConfig(cfg)),
		delays:   stealth.NewDelays(store.DelayBounds),
		replies:  reply.NewGenerator(),
		log:      log,
		replied:  make(map[string]struct{}),
	}
}

// run executes iterations until ctx is cancelled or a non-transient failure
// escapes the driver. ready is closed right before the first iteration so the
// controller can report Running deterministically.
func (l *loop) run(ctx context.Context, ready chan<- struct{}) error {
	close(ready)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		candidates, err := l.driver.Search(ctx, l.cfg.SearchQuery)
		if err != nil {
			if !IsTransient(err) {
				return fmt.Errorf("search %q: %w", l.cfg.SearchQuery, err)
			}
			l.log.Warn("search failed, will retry next cycle", zap.Error(err))
		}

		for _, candidate := range candidates {
			if err := l.process(ctx, candidate); err != nil {
				return err
			}
		}

		if err := l.delays.Wait(ctx); err != nil {
			return err
		}
	}
}

// process runs every enabled action kind for one candidate. Transient action
// failures are logged and skipped; any other error is fatal for the run.
func (l *loop) process(ctx context.Context, c Candidate) error {
	if c.CanReply && l.replies.ShouldReply(c.Text, l.keywords) {
		if _, seen := l.replied[c.ID]; !seen {
			text := l.replies.Compose(c.Text, l.keywords)
			done, err := l.attempt(ctx, stealth.KindReply, c, func(ctx context.Context) error {
				return l.driver.Reply(ctx, c, text)
			})
			if err != nil {
				return err
			}
			if done {
				l.replied[c.ID] = struct{}{}
			}
		}
	}

	if l.cfg.EnableAutoLikeFollowing && c.CanLike {
		if _, err := l.attempt(ctx, stealth.KindLike, c, func(ctx context.Context) error {
			return l.driver.Like(ctx, c)
		}); err != nil {
			return err
		}
	}

	if l.cfg.EnableAutoFollowBack && c.CanFollow {
		if _, err := l.attempt(ctx, stealth.KindFollow, c, func(ctx context.Context) error {
			return l.driver.Follow(ctx, c.Author)
		}); err != nil {
			return err
		}
	}

	return nil
}

// attempt gates one action behind the limiter and records it only after the
// driver reports success, so failed actions never consume quota. The first
// return value reports whether the action was actually performed.
func (l *loop) attempt(ctx context.Context, kind stealth.Kind, c Candidate, act func(context.Context) error) (bool, error) {
	if !l.limiter.CanPerform(kind) {
		l.log.Debug("action gated by rate limit",
			zap.String("kind", string(kind)),
			zap.String("candidate", c.ID))
		return false, nil
	}

	if err := act(ctx); err != nil {
		if IsTransient(err) {
			l.log.Warn("action skipped",
				zap.String("kind", string(kind)),
				zap.String("candidate", c.ID),
				zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("%s %s: %w", kind, c.ID, err)
	}

	l.limiter.Record(kind)
	l.log.Info("action performed",
		zap.String("kind", string(kind)),
		zap.String("candidate", c.ID),
		zap.String("author", c.Author))
	return true, nil
}
