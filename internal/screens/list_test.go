package screens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vantix/vantix/internal/vantixapi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestListStartsIdle(t *testing.T) {
	l := NewList[int]()
	snap := l.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.True(t, snap.Empty())
}

func TestStaleCommitIsDiscarded(t *testing.T) {
	l := NewList[string]()
	older := l.Begin()
	newer := l.Begin()

	require.True(t, l.Commit(newer, []string{"new"}))
	require.False(t, l.Commit(older, []string{"old"}))
	require.False(t, l.Fail(older, errors.New("late failure")))

	snap := l.Snapshot()
	assert.Equal(t, Loaded, snap.State)
	assert.Equal(t, []string{"new"}, snap.Items)
	assert.NoError(t, snap.Err)
}

func TestLoadFailureEmptiesCollection(t *testing.T) {
	l := NewList[int]()
	l.Load(context.Background(), "test", func(context.Context) ([]int, error) { return []int{1, 2}, nil })

	boom := errors.New("boom")
	snap := l.Load(context.Background(), "test", func(context.Context) ([]int, error) { return nil, boom })
	assert.Equal(t, Failed, snap.State)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Empty(t, snap.Items)
}

func TestOverlappingLoadsKeepNewest(t *testing.T) {
	l := NewList[string]()
	releaseSlow := make(chan struct{})
	slowStarted := make(chan struct{})

	var wg sync.WaitGroup
	var slow Snapshot[string]
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow = l.Load(context.Background(), "test", func(context.Context) ([]string, error) {
			close(slowStarted)
			<-releaseSlow
			return []string{"employee-1"}, nil
		})
	}()
	<-slowStarted

	fast := l.Load(context.Background(), "test", func(context.Context) ([]string, error) {
		return []string{"employee-2"}, nil
	})
	close(releaseSlow)
	wg.Wait()

	assert.False(t, fast.Stale)
	assert.True(t, slow.Stale)
	assert.Equal(t, []string{"employee-2"}, l.Snapshot().Items)
}

func TestResolveViewedEmployee(t *testing.T) {
	seller := vantixapi.Employee{ID: 4}
	admin := vantixapi.Employee{ID: 1, IsAdmin: true}
	assert.Equal(t, int64(4), ResolveViewedEmployee(seller, 9))
	assert.Equal(t, int64(9), ResolveViewedEmployee(admin, 9))
	assert.Equal(t, int64(1), ResolveViewedEmployee(admin, 0))
}

type fakePlans struct {
	plans []vantixapi.Plan
	err   error
	got   vantixapi.PlanFilter
}

func (f *fakePlans) ListPlans(_ context.Context, _ string, filter vantixapi.PlanFilter) ([]vantixapi.Plan, error) {
	f.got = filter
	return f.plans, f.err
}

func TestLoadPlanScopeSelection(t *testing.T) {
	api := &fakePlans{plans: []vantixapi.Plan{
		{ID: 1, WeekStart: vantixapi.NewDate(2024, 1, 1)},
		{ID: 2, WeekStart: vantixapi.NewDate(2024, 1, 8)},
	}}
	today := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	scope, err := LoadPlanScope(context.Background(), api, "t", 7, 0, today)
	require.NoError(t, err)
	assert.Equal(t, int64(7), api.got.EmployeeID)
	assert.True(t, scope.HasPlan)
	assert.Equal(t, int64(2), scope.Selected.ID)

	scope, err = LoadPlanScope(context.Background(), api, "t", 7, 1, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), scope.Selected.ID)

	scope, err = LoadPlanScope(context.Background(), api, "t", 7, 99, today)
	require.NoError(t, err)
	assert.Equal(t, int64(2), scope.Selected.ID, "unknown plan id falls back to auto selection")
}

func TestSecondarySwallowsFailuresButNotExpiry(t *testing.T) {
	items, err := Secondary(context.Background(), "visits", func(context.Context) ([]int, error) {
		return nil, &vantixapi.RequestError{Status: 500, Message: "x"}
	})
	assert.NoError(t, err)
	assert.Empty(t, items)

	_, err = Secondary(context.Background(), "visits", func(context.Context) ([]int, error) {
		return nil, vantixapi.ErrSessionExpired
	})
	assert.ErrorIs(t, err, vantixapi.ErrSessionExpired)
}
