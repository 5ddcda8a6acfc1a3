package stealth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nehilsa2/twitter_automation/settings"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(limits map[Kind]Limits) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewLimiter(limits, WithClock(clock.Now)), clock
}

func TestHourlyCeilingBlocksThirdLike(t *testing.T) {
	limiter, clock := newTestLimiter(map[Kind]Limits{
		KindLike: {Hourly: 2, Daily: 100},
	})

	require.True(t, limiter.CanPerform(KindLike))
	limiter.Record(KindLike)
	require.True(t, limiter.CanPerform(KindLike))
	limiter.Record(KindLike)
	assert.False(t, limiter.CanPerform(KindLike))

	clock.Advance(3601 * time.Second)
	assert.True(t, limiter.CanPerform(KindLike))
	assert.Equal(t, 0, limiter.Stats(KindLike).HourlyCount)
}

func TestDailyCeilingOutlastsHourlyRollover(t *testing.T) {
	limiter, clock := newTestLimiter(map[Kind]Limits{
		KindReply: {Hourly: 10, Daily: 3},
	})

	for i := 0; i < 3; i++ {
		require.True(t, limiter.CanPerform(KindReply), "record %d", i)
		limiter.Record(KindReply)
	}
	assert.False(t, limiter.CanPerform(KindReply))

	// An hour later the hourly window has rolled but the daily one has not.
	clock.Advance(2 * time.Hour)
	assert.False(t, limiter.CanPerform(KindReply))

	clock.Advance(23 * time.Hour)
	assert.True(t, limiter.CanPerform(KindReply))

	stats := limiter.Stats(KindReply)
	assert.Equal(t, 0, stats.HourlyCount)
	assert.Equal(t, 0, stats.DailyCount)
}

func TestCanPerformNeverLetsCounterExceedCeiling(t *testing.T) {
	limiter, _ := newTestLimiter(map[Kind]Limits{
		KindFollow: {Daily: 5},
	})

	performed := 0
	for i := 0; i < 50; i++ {
		if limiter.CanPerform(KindFollow) {
			limiter.Record(KindFollow)
			performed++
		}
	}

	assert.Equal(t, 5, performed)
	assert.Equal(t, 5, limiter.Stats(KindFollow).DailyCount)
}

func TestZeroLimitMeansUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(map[Kind]Limits{
		KindFollow: {Daily: 2}, // no hourly ceiling configured
	})

	limiter.Record(KindFollow)
	assert.True(t, limiter.CanPerform(KindFollow))
	limiter.Record(KindFollow)
	assert.False(t, limiter.CanPerform(KindFollow))
}

func TestRolloverResetsExactlyAtBoundary(t *testing.T) {
	limiter, clock := newTestLimiter(map[Kind]Limits{
		KindLike: {Hourly: 1, Daily: 100},
	})

	limiter.Record(KindLike)
	assert.False(t, limiter.CanPerform(KindLike))

	clock.Advance(3599 * time.Second)
	assert.False(t, limiter.CanPerform(KindLike))

	clock.Advance(time.Second)
	assert.True(t, limiter.CanPerform(KindLike))
}

func TestLimitsFromConfig(t *testing.T) {
	cfg := settings.Defaults()
	limits := LimitsFromConfig(cfg)

	assert.Equal(t, Limits{Hourly: 10, Daily: 50}, limits[KindReply])
	assert.Equal(t, Limits{Hourly: 15, Daily: 100}, limits[KindLike])
	assert.Equal(t, Limits{Daily: 20}, limits[KindFollow])
}
