package session

import (
	"sync"

	"github.com/vantix/vantix/internal/screens"
)

// Views keeps one list per screen for a session, so overlapping requests
// from the same user share a generation counter.
type Views struct {
	mu    sync.Mutex
	lists map[string]any
}

func NewViews() *Views {
	return &Views{lists: map[string]any{}}
}

// ListFor returns the session's list for screen, creating it on first use.
func ListFor[T any](v *Views, screen string) *screens.List[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if existing, ok := v.lists[screen].(*screens.List[T]); ok {
		return existing
	}
	l := screens.NewList[T]()
	v.lists[screen] = l
	return l
}
