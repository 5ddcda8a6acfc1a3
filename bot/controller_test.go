package bot

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/settings"
)

// fakeDriver counts the actions it receives and fails on demand.
type fakeDriver struct {
	mu          sync.Mutex
	candidates  []Candidate
	searchErr   error
	replyErr    error
	likeErr     error
	followErr   error
	searchCalls int
	replies     int
	likes       int
	follows     int
}

func (d *fakeDriver) Search(ctx context.Context, query string) ([]Candidate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.searchCalls++
	return d.candidates, d.searchErr
}

func (d *fakeDriver) Reply(ctx context.Context, c Candidate, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.replyErr != nil {
		return d.replyErr
	}
	d.replies++
	return nil
}

func (d *fakeDriver) Like(ctx context.Context, c Candidate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.likeErr != nil {
		return d.likeErr
	}
	d.likes++
	return nil
}

func (d *fakeDriver) Follow(ctx context.Context, author string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.followErr != nil {
		return d.followErr
	}
	d.follows++
	return nil
}

func (d *fakeDriver) Close() error { return nil }

func (d *fakeDriver) counts() (searches, replies, likes, follows int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.searchCalls, d.replies, d.likes, d.follows
}

func newTestStore(t *testing.T) *settings.Store {
	t.Helper()
	store := settings.NewStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, store.Load())

	// Short delays so loop iterations do not slow the tests down.
	min, max := 1, 1
	require.NoError(t, store.Update(settings.Partial{MinDelaySeconds: &min, MaxDelaySeconds: &max}))
	return store
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.Status().State == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("controller never reached state %s, stuck at %s", want, c.Status().State)
}

func TestStartTwiceYieldsAlreadyRunningAndOneLoop(t *testing.T) {
	store := newTestStore(t)
	driver := &fakeDriver{}

	var factoryCalls int
	controller := NewController(store, func(cfg settings.Config) (Driver, error) {
		factoryCalls++
		return driver, nil
	}, zap.NewNop())

	require.NoError(t, controller.Start())
	defer func() {
		_ = controller.Stop()
		controller.Wait()
	}()

	err := controller.Start()
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, 1, factoryCalls, "only one loop instance may exist")
	assert.Equal(t, Running, controller.Status().State)
}

func TestStopWhenStoppedYieldsNotRunning(t *testing.T) {
	controller := NewController(newTestStore(t), func(cfg settings.Config) (Driver, error) {
		return &fakeDriver{}, nil
	}, zap.NewNop())

	require.ErrorIs(t, controller.Stop(), ErrNotRunning)
}

func TestStartStopSettlesToStopped(t *testing.T) {
	store := newTestStore(t)
	driver := &fakeDriver{}
	controller := NewController(store, func(cfg settings.Config) (Driver, error) {
		return driver, nil
	}, zap.NewNop())

	require.NoError(t, controller.Start())
	require.NoError(t, controller.Stop())
	controller.Wait()

	st := controller.Status()
	assert.Equal(t, Stopped, st.State)
	assert.Empty(t, st.LastError, "a requested stop is not an error")
	assert.True(t, st.StartedAt.IsZero())

	// The loop stays down: no further searches happen after the join.
	searches, _, _, _ := driver.counts()
	time.Sleep(30 * time.Millisecond)
	searchesAfter, _, _, _ := driver.counts()
	assert.Equal(t, searches, searchesAfter)
	assert.Equal(t, Stopped, controller.Status().State)
}

func TestDriverInitFailureLeavesStoppedWithLastError(t *testing.T) {
	controller := NewController(newTestStore(t), func(cfg settings.Config) (Driver, error) {
		return nil, errors.New("browser would not launch")
	}, zap.NewNop())

	err := controller.Start()
	require.Error(t, err)

	st := controller.Status()
	assert.Equal(t, Stopped, st.State)
	assert.Contains(t, st.LastError, "browser would not launch")

	// The failed start left the controller usable.
	require.ErrorIs(t, controller.Stop(), ErrNotRunning)
}

func TestFatalLoopFailureSurfacesViaStatus(t *testing.T) {
	store := newTestStore(t)
	driver := &fakeDriver{searchErr: errors.New("session torn down")}
	controller := NewController(store, func(cfg settings.Config) (Driver, error) {
		return driver, nil
	}, zap.NewNop())

	require.NoError(t, controller.Start())
	controller.Wait()

	waitForState(t, controller, Stopped)
	assert.Contains(t, controller.Status().LastError, "session torn down")
}

func TestSuccessfulStartClearsLastError(t *testing.T) {
	store := newTestStore(t)
	bad := &fakeDriver{searchErr: errors.New("session torn down")}
	good := &fakeDriver{}
	drivers := []Driver{bad, good}

	controller := NewController(store, func(cfg settings.Config) (Driver, error) {
		d := drivers[0]
		drivers = drivers[1:]
		return d, nil
	}, zap.NewNop())

	require.NoError(t, controller.Start())
	controller.Wait()
	waitForState(t, controller, Stopped)
	require.NotEmpty(t, controller.Status().LastError)

	require.NoError(t, controller.Start())
	assert.Empty(t, controller.Status().LastError)

	require.NoError(t, controller.Stop())
	controller.Wait()
}
