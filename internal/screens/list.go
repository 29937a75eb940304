// Package screens drives the list screens: one fetch per activation, an
// explicit idle/loading/loaded/error state, and a generation tag that makes
// a slow, superseded fetch unable to overwrite a newer one.
package screens

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/logging"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Snapshot is a consistent read of a List.
type Snapshot[T any] struct {
	State    State
	Items    []T
	Err      error
	LoadedAt time.Time
	// Stale is set on the result of a Load that was superseded before it
	// finished; its data was not committed.
	Stale bool
}

func (s Snapshot[T]) Empty() bool { return len(s.Items) == 0 }

type List[T any] struct {
	mu       sync.Mutex
	state    State
	gen      uint64
	items    []T
	err      error
	loadedAt time.Time
	now      func() time.Time
}

func NewList[T any]() *List[T] {
	return &List[T]{now: time.Now}
}

// Begin moves the list to loading and returns the tag the caller must
// present to Commit or Fail.
func (l *List[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state = Loading
	return l.gen
}

// Commit replaces the collection wholesale. It returns false, and changes
// nothing, when gen is not the latest Begin.
func (l *List[T]) Commit(gen uint64, items []T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.items = items
	l.err = nil
	l.state = Loaded
	l.loadedAt = l.clock()
	return true
}

// Fail records err and empties the collection, under the same rule as Commit.
func (l *List[T]) Fail(gen uint64, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.items = nil
	l.err = err
	l.state = Failed
	return true
}

func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot[T]{State: l.state, Items: l.items, Err: l.err, LoadedAt: l.loadedAt}
}

func (l *List[T]) clock() time.Time {
	if l.now == nil {
		return time.Now()
	}
	return l.now()
}

// Load runs fetch once and commits its outcome. Failures are logged and
// leave the list empty; there is no retry.
func (l *List[T]) Load(ctx context.Context, name string, fetch func(context.Context) ([]T, error)) Snapshot[T] {
	gen := l.Begin()
	items, err := fetch(ctx)
	if err != nil {
		stale := !l.Fail(gen, err)
		if !stale {
			logging.FromContext(ctx).Warn("list load failed", zap.String("screen", name), zap.Error(err))
		}
		return Snapshot[T]{State: Failed, Err: err, Stale: stale}
	}
	stale := !l.Commit(gen, items)
	return Snapshot[T]{State: Loaded, Items: items, LoadedAt: l.clock(), Stale: stale}
}
