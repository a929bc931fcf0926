package agent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/agentry/pkg/agent"
	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGrind = errors.New("grind failed")

// --- Counting for a fixed window: self-looping state vs self-sending mailbox ---

type spinner struct {
	agent.Base[*spinner]
	n         int
	finalized int
}

func (s *spinner) Begin() agent.Next[*spinner] { return agent.DoAsync[*spinner](spin{}) }

func (s *spinner) Finalize(*agent.Context[*spinner]) { s.finalized++ }

type spin struct{}

func (spin) Once(_ context.Context, u *spinner, _ *agent.Context[*spinner]) (agent.Next[*spinner], error) {
	u.n++
	return agent.DoAsync[*spinner](spin{}), nil
}

// echoer keeps one message in flight by sending it again from its handler.
type echoer struct {
	agent.Base[*echoer]
	n         int
	finalized int
}

func (e *echoer) Initialize(c *agent.Context[*echoer]) agent.Next[*echoer] {
	_ = c.Address().Send(ping{})
	return agent.Events[*echoer]()
}

func (e *echoer) Finalize(*agent.Context[*echoer]) { e.finalized++ }

type ping struct{}

func (ping) Handle(_ context.Context, u *echoer, c *agent.Context[*echoer]) error {
	u.n++
	if err := c.Address().Send(ping{}); err != nil && !errors.Is(err, domain.ErrMailboxClosed) {
		return err
	}
	return nil
}

func TestCounter_WallClockWindow(t *testing.T) {
	const window = 50 * time.Millisecond

	fsm := agent.Spawn(&spinner{})
	box := agent.Spawn(&echoer{})
	time.Sleep(window)
	require.NoError(t, fsm.Interrupt())
	require.NoError(t, box.Interrupt())

	s, err := fsm.Join(joinCtx(t))
	require.NoError(t, err)
	e, err := box.Join(joinCtx(t))
	require.NoError(t, err)

	assert.Positive(t, s.n)
	assert.Positive(t, e.n)
	assert.Equal(t, 1, s.finalized)
	assert.Equal(t, 1, e.finalized)
	assert.Zero(t, box.Failures().Len())
	t.Logf("in %v: state machine %d, mailbox %d", window, s.n, e.n)
}

// --- Repeaters ---

// poller never produces a result, so only a stop ends its state.
type poller struct {
	agent.Base[*poller]
	started   chan struct{}
	polls     int
	fallbacks int
}

func (p *poller) Begin() agent.Next[*poller] { return agent.DoAsync[*poller](poll{}) }

type poll struct{}

func (poll) Once(context.Context, *poller, *agent.Context[*poller]) (agent.Next[*poller], error) {
	return agent.Done[*poller](), nil
}

func (poll) Many(_ context.Context, u *poller, _ *agent.Context[*poller]) (agent.Next[*poller], bool, error) {
	u.polls++
	if u.polls == 1 {
		close(u.started)
	}
	return agent.Next[*poller]{}, false, nil
}

func (poll) Fallback(u *poller, err error) agent.Next[*poller] {
	u.fallbacks++
	return agent.Fail[*poller](err)
}

func TestAsync_RepeaterYieldsInterruptWhenStopped(t *testing.T) {
	var steps []domain.StepOutcome
	var statuses []domain.Status
	hooks := domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			steps = append(steps, e.Outcome)
		},
		OnStatus: func(_ context.Context, e *domain.StatusEvent) {
			statuses = append(statuses, e.To)
		},
	}

	p := &poller{started: make(chan struct{})}
	addr := agent.Spawn(p, agent.WithHooks(hooks))
	<-p.started
	require.NoError(t, addr.Interrupt())

	out, err := addr.Join(joinCtx(t))
	require.NoError(t, err)
	assert.Greater(t, out.polls, 1, "Many is retried while the unit is active")
	assert.Zero(t, out.fallbacks)
	assert.Equal(t, []domain.StepOutcome{domain.StepNext}, steps)
	assert.Equal(t, []domain.Status{
		domain.StatusInitializing,
		domain.StatusRunning,
		domain.StatusInterrupting,
		domain.StatusFinalizing,
		domain.StatusTerminated,
	}, statuses)
}

// grinder works on the pool, failing every other call and repairing each failure.
type grinder struct {
	agent.Base[*grinder]
	started   chan struct{}
	calls     int
	repairs   int
	finalized int
}

func (g *grinder) Begin() agent.Next[*grinder] { return agent.DoSync[*grinder](grind{}) }

func (g *grinder) Finalize(*agent.Context[*grinder]) { g.finalized++ }

type grind struct{}

func (grind) Once(*grinder, control.Interruptor) (agent.Next[*grinder], error) {
	return agent.Done[*grinder](), nil
}

func (grind) Many(u *grinder, _ control.Interruptor) (agent.Next[*grinder], bool, error) {
	u.calls++
	if u.calls == 1 {
		close(u.started)
	}
	if u.calls%2 == 0 {
		return agent.Next[*grinder]{}, false, errGrind
	}
	return agent.Next[*grinder]{}, false, nil
}

func (grind) Repair(u *grinder, err error) error {
	u.repairs++
	return nil
}

func TestSync_RepeaterAndRepairerRunUntilStopped(t *testing.T) {
	g := &grinder{started: make(chan struct{})}
	addr := agent.Spawn(g)
	<-g.started
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, addr.Interrupt())

	out, err := addr.Join(joinCtx(t))
	require.NoError(t, err)
	assert.Greater(t, out.calls, 1)
	assert.Equal(t, out.calls/2, out.repairs, "every failing call was repaired")
	assert.Equal(t, 1, out.finalized)
}

// stubborn keeps failing; its repairer gives up after three attempts.
type stubborn struct {
	agent.Base[*stubborn]
	calls   int
	repairs int
}

func (s *stubborn) Begin() agent.Next[*stubborn] { return agent.DoSync[*stubborn](stubbornState{}) }

type stubbornState struct{}

func (stubbornState) Once(u *stubborn, _ control.Interruptor) (agent.Next[*stubborn], error) {
	u.calls++
	return agent.Next[*stubborn]{}, errGrind
}

func (stubbornState) Repair(u *stubborn, err error) error {
	u.repairs++
	if u.repairs > 3 {
		return err
	}
	return nil
}

func TestSync_UnrepairedErrorFailsUnit(t *testing.T) {
	out, err := agent.Run(context.Background(), &stubborn{})

	assert.ErrorIs(t, err, errGrind)
	var failed *domain.FailedError
	assert.ErrorAs(t, err, &failed)
	assert.Equal(t, 4, out.calls)
	assert.Equal(t, 4, out.repairs)
}
