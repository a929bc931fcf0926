// Package workers bounds the execution of blocking work offloaded by agents.
//
// A Pool hands out a fixed number of slots. Offloaded steps acquire a slot,
// run on their own goroutine and release the slot when they return. Panics
// are recovered and surfaced as *PanicError so a misbehaving step cannot take
// the process down.
package workers

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/semaphore"
)

// PanicError reports a panic recovered from offloaded work.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in offloaded work: %v", e.Value)
}

// Pool is a bounded set of execution slots for blocking work.
type Pool struct {
	sem      *semaphore.Weighted
	size     int
	inFlight atomic.Int64
}

// NewPool creates a pool with size slots.
// A non-positive size falls back to GOMAXPROCS.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the process-wide pool, created on first use.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = NewPool(0)
	})
	return defaultPool
}

// Size returns the number of slots.
func (p *Pool) Size() int { return p.size }

// InFlight returns the number of slots currently held.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// Do runs fn on a pool slot and waits for it to return.
//
// Acquiring the slot honours ctx; once fn started, Do waits for it regardless of
// ctx so in-flight work is never abandoned. A panic inside fn is returned as
// *PanicError.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.inFlight.Add(1)

	done := make(chan *panics.Recovered, 1)
	go func() {
		defer func() {
			p.inFlight.Add(-1)
			p.sem.Release(1)
		}()
		var catcher panics.Catcher
		catcher.Try(fn)
		done <- catcher.Recovered()
	}()

	if r := <-done; r != nil {
		return &PanicError{Value: r.Value, Stack: r.Stack}
	}
	return nil
}
