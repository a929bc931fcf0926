package agent_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/agentry/internal/logging"
	"github.com/aretw0/agentry/pkg/agent"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idle struct {
	agent.Base[*idle]
}

// respawner starts two workers and restarts each finished one until it has
// respawned twice. It shuts down once Finished sees an empty tracker.
type respawner struct {
	agent.Base[*respawner]
	respawned int
	finished  int
	waited    int
	shutdowns int
	groups    []any
	tracked   int
}

func (r *respawner) Initialize(c *agent.Context[*respawner]) agent.Next[*respawner] {
	r.spawn(c)
	r.spawn(c)
	return agent.Events[*respawner]()
}

func (r *respawner) spawn(c *agent.Context[*respawner]) {
	agent.SpawnAgent(c, agent.NewAsyncFn(func(context.Context) error { return nil }), "worker")
}

func (r *respawner) Finished(rel *agent.Relation, c *agent.Context[*respawner]) {
	r.finished++
	r.groups = append(r.groups, rel.Group)
	if r.respawned < 2 {
		r.respawned++
		r.spawn(c)
		return
	}
	if !c.Tracker().IsEmpty() {
		r.waited++
		return
	}
	r.shutdowns++
	c.Shutdown()
}

func (r *respawner) Finalize(c *agent.Context[*respawner]) {
	r.tracked = c.Tracker().Len()
}

func TestSupervisor_RespawnThenShutdown(t *testing.T) {
	out, err := agent.Run(context.Background(), &respawner{})

	require.NoError(t, err)
	assert.Equal(t, 4, out.finished)
	assert.Equal(t, 1, out.waited, "the third exit still has a live sibling")
	assert.Equal(t, 1, out.shutdowns)
	assert.Equal(t, []any{"worker", "worker", "worker", "worker"}, out.groups)
	assert.Equal(t, 0, out.tracked)
}

func TestSpawnAgent_ChildLogsItsOwnIdentityOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)

	_, err := agent.Run(context.Background(), &respawner{}, agent.WithLogger(logger), agent.WithName("parent"))
	require.NoError(t, err)

	var childLines int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, strings.Count(line, " unit="), 1, line)
		assert.LessOrEqual(t, strings.Count(line, " unit_id="), 1, line)
		if strings.Contains(line, " unit=AsyncFn") {
			childLines++
		}
	}
	assert.Positive(t, childLines)
}

// pool keeps N idle children alive until it is interrupted.
type pool struct {
	agent.Base[*pool]
	size     int
	spawned  chan struct{}
	finished int
	tracked  int
	groups   []any
}

func (p *pool) Initialize(c *agent.Context[*pool]) agent.Next[*pool] {
	for i := 0; i < p.size; i++ {
		group := "even"
		if i%2 == 1 {
			group = "odd"
		}
		agent.SpawnAgent(c, &idle{}, group)
	}
	p.groups = c.Tracker().Groups()
	close(p.spawned)
	return agent.Events[*pool]()
}

func (p *pool) Finished(*agent.Relation, *agent.Context[*pool]) {
	p.finished++
}

func (p *pool) Finalize(c *agent.Context[*pool]) {
	p.tracked = c.Tracker().Len()
}

func TestSupervisor_InterruptStopsAndAwaitsChildren(t *testing.T) {
	for _, force := range []bool{false, true} {
		p := &pool{size: 5, spawned: make(chan struct{})}
		var childEvents int
		hooks := domain.LifecycleHooks{
			OnChildFinished: func(context.Context, *domain.ChildEvent) { childEvents++ },
		}
		addr := agent.Spawn(p, agent.WithHooks(hooks))
		<-p.spawned

		require.NoError(t, addr.Interruptor().Stop(force))
		out, err := addr.Join(joinCtx(t))

		require.NoError(t, err)
		assert.Equal(t, 5, out.finished, "force=%v", force)
		assert.Equal(t, 0, out.tracked, "force=%v", force)
		assert.Equal(t, []any{"even", "odd"}, out.groups)
		// Children inherit the parent hooks, so their own status events do not count here.
		assert.Equal(t, 5, childEvents)
	}
}

// blocker children only stop when their step context is cancelled.
type blocker struct {
	agent.Base[*blocker]
}

func (b *blocker) Begin() agent.Next[*blocker] {
	return agent.DoAsync[*blocker](waitCancel{})
}

type waitCancel struct{}

func (waitCancel) Once(ctx context.Context, _ *blocker, _ *agent.Context[*blocker]) (agent.Next[*blocker], error) {
	<-ctx.Done()
	return agent.Interrupt[*blocker](), nil
}

type blockerParent struct {
	agent.Base[*blockerParent]
	ready    chan struct{}
	finished int
}

func (p *blockerParent) Initialize(c *agent.Context[*blockerParent]) agent.Next[*blockerParent] {
	for i := 0; i < 3; i++ {
		agent.SpawnAgent(c, &blocker{}, "blockers")
	}
	close(p.ready)
	return agent.Events[*blockerParent]()
}

func (p *blockerParent) Finished(*agent.Relation, *agent.Context[*blockerParent]) {
	p.finished++
}

func TestSupervisor_ForcedStopReachesBlockedChildren(t *testing.T) {
	p := &blockerParent{ready: make(chan struct{})}
	addr := agent.Spawn(p)
	<-p.ready

	// A graceful stop leaves the blocked children running.
	require.NoError(t, addr.Interrupt())
	select {
	case <-addr.Done():
		t.Fatal("parent terminated before its children")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, addr.Interruptor().Stop(true))
	out, err := addr.Join(joinCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 3, out.finished)
}

// grouped interrupts one group from a message handler.
type grouped struct {
	agent.Base[*grouped]
	ready    chan struct{}
	finished []any
}

func (g *grouped) Initialize(c *agent.Context[*grouped]) agent.Next[*grouped] {
	agent.SpawnAgent(c, &idle{}, "a")
	agent.SpawnAgent(c, &idle{}, "b")
	agent.SpawnAgent(c, &idle{}, "b")
	close(g.ready)
	return agent.Events[*grouped]()
}

func (g *grouped) Finished(rel *agent.Relation, c *agent.Context[*grouped]) {
	g.finished = append(g.finished, rel.Group)
	if len(g.finished) == 2 {
		c.Shutdown()
	}
}

func TestTracker_InterruptGroup(t *testing.T) {
	g := &grouped{ready: make(chan struct{})}
	addr := agent.Spawn(g)
	<-g.ready

	require.NoError(t, addr.Do(func(_ context.Context, _ *grouped, c *agent.Context[*grouped]) error {
		c.Tracker().InterruptGroup("b", false)
		return nil
	}))

	out, err := addr.Join(joinCtx(t))
	require.NoError(t, err)
	require.Len(t, out.finished, 3)
	assert.Equal(t, []any{"b", "b", "a"}, out.finished)
}

// doneParent returns Done right after spawning a child that only stops on a forced stop.
type doneParent struct {
	agent.Base[*doneParent]
	ready     chan struct{}
	finished  int
	finalized int
}

func (p *doneParent) Initialize(c *agent.Context[*doneParent]) agent.Next[*doneParent] {
	agent.SpawnAgent(c, &blocker{}, "blockers")
	close(p.ready)
	return agent.Done[*doneParent]()
}

func (p *doneParent) Finished(*agent.Relation, *agent.Context[*doneParent]) {
	p.finished++
}

func (p *doneParent) Finalize(*agent.Context[*doneParent]) {
	p.finalized++
}

func TestSupervisor_ForcedStopAfterDoneReachesChildren(t *testing.T) {
	p := &doneParent{ready: make(chan struct{})}
	addr := agent.Spawn(p)
	<-p.ready

	select {
	case <-addr.Done():
		t.Fatal("parent finalized before its child")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, addr.Interruptor().Stop(true))
	out, err := addr.Join(joinCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 1, out.finished)
	assert.Equal(t, 1, out.finalized)
}

func TestRun_CancelAfterDoneReachesChildren(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	type result struct {
		out *doneParent
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := agent.Run(ctx, &doneParent{ready: make(chan struct{})})
		done <- result{out, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, 1, res.out.finished)
		assert.Equal(t, 1, res.out.finalized)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after its context was cancelled")
	}
}

func TestAddress_SendWhileAwaitingChildrenIsRejected(t *testing.T) {
	p := &doneParent{ready: make(chan struct{})}
	addr := agent.Spawn(p)
	<-p.ready

	noop := func(context.Context, *doneParent, *agent.Context[*doneParent]) error { return nil }
	assert.Eventually(t, func() bool {
		return errors.Is(addr.Do(noop), domain.ErrMailboxClosed)
	}, time.Second, 5*time.Millisecond)

	select {
	case <-addr.Done():
		t.Fatal("parent finalized before its child")
	default:
	}

	require.NoError(t, addr.Interruptor().Stop(true))
	_, err := addr.Join(joinCtx(t))
	require.NoError(t, err)
}
