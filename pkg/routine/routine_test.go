package routine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/routine"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// poller succeeds on the given iteration, failing on the ones listed in fail.
type poller struct {
	succeedAt int
	fail      map[int]bool
	finalized int
	finalErr  error
}

func (p *poller) RepeatableRoutine(_ context.Context, s *routine.Session) (string, bool, error) {
	if p.fail[s.Iteration()] {
		return "", false, errors.New("not yet")
	}
	if s.Iteration() >= p.succeedAt {
		return "ready", true, nil
	}
	return "", false, nil
}

func (p *poller) Finalize(_ context.Context, _ string, err error) error {
	p.finalized++
	p.finalErr = err
	return nil
}

func TestRoutine_RepeatsUntilOutput(t *testing.T) {
	p := &poller{succeedAt: 4, fail: map[int]bool{2: true}}

	h := routine.Spawn[string](p, routine.WithInterval(time.Millisecond))
	out, err := h.Join(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ready", out)
	assert.Equal(t, 1, h.Failures().Len(), "body errors are recorded and retried")
	assert.Equal(t, 1, p.finalized)
	assert.NoError(t, p.finalErr)
}

// sleeper never produces output; each iteration blocks on ctx or a short delay.
type sleeper struct {
	limit     time.Duration
	finalized int
}

func (s *sleeper) RepeatableRoutine(ctx context.Context, _ *routine.Session) (int, bool, error) {
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return 0, false, nil
	}
}

func (s *sleeper) TimeLimit() time.Duration { return s.limit }

func (s *sleeper) Finalize(context.Context, int, error) error {
	s.finalized++
	return nil
}

func TestRoutine_TimeLimit(t *testing.T) {
	const limit = 50 * time.Millisecond
	s := &sleeper{limit: limit}

	start := time.Now()
	_, err := routine.Run[int](context.Background(), s, routine.WithInterval(time.Millisecond))
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.GreaterOrEqual(t, elapsed, limit)
	assert.Less(t, elapsed, limit+200*time.Millisecond)
	assert.Equal(t, 1, s.finalized)
}

func TestRoutine_ForcedStopAborts(t *testing.T) {
	s := &sleeper{}
	h := routine.Spawn[int](s, routine.WithInterval(time.Millisecond))

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, h.Interrupt())

	_, err := h.Join(context.Background())
	assert.ErrorIs(t, err, domain.ErrAborted)
	assert.Equal(t, 1, s.finalized)
}

func TestRoutine_AbortWinsOverTimeout(t *testing.T) {
	const limit = 20 * time.Millisecond
	release := make(chan struct{})
	body := routine.TaskFunc(func(ctx context.Context) error {
		<-ctx.Done()
		<-release
		return ctx.Err()
	})

	h := routine.SpawnTask(body, routine.WithTimeLimit(limit))
	time.Sleep(2 * limit)
	// The time limit already elapsed; the abort arrives before the body returns.
	require.NoError(t, h.Interrupt())
	close(release)

	assert.ErrorIs(t, h.Join(context.Background()), domain.ErrAborted)
}

func TestRoutine_GracefulStopInterrupts(t *testing.T) {
	s := &sleeper{}
	h := routine.Spawn[int](s, routine.WithInterval(time.Hour))

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, h.Interruptor().Stop(false))

	_, err := h.Join(context.Background())
	assert.ErrorIs(t, err, domain.ErrInterrupted)
	assert.Equal(t, 1, s.finalized)
}

func TestRoutine_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := routine.Run[int](ctx, &sleeper{}, routine.WithInterval(time.Millisecond))
	assert.ErrorIs(t, err, domain.ErrAborted)
}

type tuned struct{ limit time.Duration }

func (t *tuned) InitializeRoutine(_ context.Context, s *routine.Session) error {
	s.SetTimeLimit(t.limit)
	s.SetInterval(time.Millisecond)
	return nil
}

func (t *tuned) RepeatableRoutine(ctx context.Context, _ *routine.Session) (int, bool, error) {
	<-ctx.Done()
	return 0, false, ctx.Err()
}

func TestRoutine_InitializerOverridesLimit(t *testing.T) {
	_, err := routine.Run[int](context.Background(), &tuned{limit: 10 * time.Millisecond},
		routine.WithTimeLimit(time.Hour))
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

// countdown allows a fixed number of retries.
type countdown struct{ left int }

func (c *countdown) NextBackOff() time.Duration {
	if c.left == 0 {
		return backoff.Stop
	}
	c.left--
	return time.Millisecond
}

func (c *countdown) Reset() {}

type giveUp struct{}

func (giveUp) RepeatableRoutine(context.Context, *routine.Session) (int, bool, error) {
	return 0, false, errors.New("unavailable")
}

func TestBackoffWait_GivesUp(t *testing.T) {
	h := routine.Spawn[int](giveUp{}, routine.WithWait(routine.BackoffWait(&countdown{left: 3})))
	_, err := h.Join(context.Background())

	assert.ErrorIs(t, err, domain.ErrInterrupted)
	assert.Equal(t, 4, h.Failures().Len())
}

func TestTask_RunsOnce(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	h := routine.SpawnTask(routine.TaskFunc(func(context.Context) error {
		calls++
		return boom
	}))
	err := h.Join(context.Background())

	assert.ErrorIs(t, err, boom)
	var failed *domain.FailedError
	assert.ErrorAs(t, err, &failed, "a body error is surfaced like an agent Fail")
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, h.Failures().Err(), boom, "the outcome is recorded")
}

func TestTask_Success(t *testing.T) {
	err := routine.RunTask(context.Background(), routine.TaskFunc(func(context.Context) error { return nil }))
	assert.NoError(t, err)
}

func TestRoutine_Hooks(t *testing.T) {
	var statuses []domain.Status
	var steps []domain.StepOutcome
	hooks := domain.LifecycleHooks{
		OnStatus: func(_ context.Context, e *domain.StatusEvent) { statuses = append(statuses, e.To) },
		OnStep:   func(_ context.Context, e *domain.StepEvent) { steps = append(steps, e.Outcome) },
	}

	_, err := routine.Run[string](context.Background(), &poller{succeedAt: 2},
		routine.WithInterval(time.Millisecond), routine.WithHooks(hooks))

	require.NoError(t, err)
	assert.Equal(t, []domain.Status{
		domain.StatusInitializing,
		domain.StatusRunning,
		domain.StatusFinalizing,
		domain.StatusTerminated,
	}, statuses)
	assert.Equal(t, []domain.StepOutcome{domain.StepNext, domain.StepDone}, steps)
}
