package agent

import (
	"time"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/google/uuid"
)

// Relation describes one supervised child.
type Relation struct {
	ID          uuid.UUID
	Group       any
	Interruptor control.Interruptor
	Handle      Joiner
	Started     time.Time
}

// Tracker holds the live children of a unit.
// It belongs to the parent's loop and must only be used from it.
type Tracker struct {
	children map[uuid.UUID]*Relation
	groups   map[any]map[uuid.UUID]struct{}
	order    []any
}

func newTracker() *Tracker {
	return &Tracker{
		children: make(map[uuid.UUID]*Relation),
		groups:   make(map[any]map[uuid.UUID]struct{}),
	}
}

// Len returns the number of live children.
func (t *Tracker) Len() int { return len(t.children) }

// IsEmpty reports whether no child is alive.
func (t *Tracker) IsEmpty() bool { return len(t.children) == 0 }

// Get returns the relation of a live child.
func (t *Tracker) Get(id uuid.UUID) (*Relation, bool) {
	rel, ok := t.children[id]
	return rel, ok
}

// Group returns the live children spawned under key.
func (t *Tracker) Group(key any) []*Relation {
	ids := t.groups[key]
	out := make([]*Relation, 0, len(ids))
	for id := range ids {
		out = append(out, t.children[id])
	}
	return out
}

// Groups returns the keys with at least one live child, in first-spawn order.
func (t *Tracker) Groups() []any {
	out := make([]any, 0, len(t.order))
	for _, key := range t.order {
		if len(t.groups[key]) > 0 {
			out = append(out, key)
		}
	}
	return out
}

// InterruptGroup stops every child spawned under key.
func (t *Tracker) InterruptGroup(key any, force bool) {
	for id := range t.groups[key] {
		_ = t.children[id].Interruptor.Stop(force)
	}
}

// InterruptAll stops every live child.
func (t *Tracker) InterruptAll(force bool) {
	for _, rel := range t.children {
		_ = rel.Interruptor.Stop(force)
	}
}

func (t *Tracker) insert(rel *Relation) {
	t.children[rel.ID] = rel
	ids, ok := t.groups[rel.Group]
	if !ok {
		ids = make(map[uuid.UUID]struct{})
		t.groups[rel.Group] = ids
		t.order = append(t.order, rel.Group)
	}
	ids[rel.ID] = struct{}{}
}

// remove drops the child once. Repeated removals return nil.
func (t *Tracker) remove(id uuid.UUID) *Relation {
	rel, ok := t.children[id]
	if !ok {
		return nil
	}
	delete(t.children, id)
	ids := t.groups[rel.Group]
	delete(ids, id)
	if len(ids) == 0 {
		delete(t.groups, rel.Group)
		for i, key := range t.order {
			if key == rel.Group {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	return rel
}

// SpawnAgent starts child under the supervision of the unit owning c.
// The group key must be comparable.
// The parent is notified through Supervisor.Finished on its own loop when the child terminates.
// A child spawned while the parent is shutting down is interrupted right away.
func SpawnAgent[T any, C Agent[C]](c *Context[T], child C, group any, opts ...Option) *Address[C] {
	inherited := []Option{
		WithLogger(c.baseLogger),
		WithPool(c.pool),
		WithHooks(c.hooks),
		WithFailureOptions(c.failureOpts...),
	}
	inherited = append(inherited, opts...)

	id := uuid.New()
	exits := c.exits
	inherited = append(inherited, func(o *options) {
		o.id = id
		o.onExit = func() {
			// The parent waits for every child before terminating, so the push only fails after it is gone.
			_ = exits.Push(id)
		}
	})

	addr := spawn(child, inherited)
	c.tracker.insert(&Relation{
		ID:          id,
		Group:       group,
		Interruptor: addr.Interruptor(),
		Handle:      addr,
		Started:     time.Now(),
	})
	if c.closing || c.interrupted {
		_ = addr.Interruptor().Stop(c.controller.Forced())
	}
	return addr
}
