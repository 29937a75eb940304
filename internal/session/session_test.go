package session

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vantix/vantix/internal/vantixapi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func login(token string) vantixapi.Login {
	return vantixapi.Login{Token: token, User: vantixapi.Employee{ID: 3, FullName: "Ana Ríos"}}
}

func TestCreateAndGet(t *testing.T) {
	store := NewStore()
	sess, err := store.Create(login("tok"))
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotEmpty(t, sess.CSRF)
	assert.NotEqual(t, sess.ID, sess.CSRF)

	got := store.Get(sess.ID)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Token)
	assert.NotNil(t, got.Views())
	assert.Nil(t, store.Get("unknown"))
	assert.Nil(t, store.Get(""))
}

func TestExpireClearsOnceUnderConcurrency(t *testing.T) {
	store := NewStore()
	sess, err := store.Create(login("stale"))
	require.NoError(t, err)

	var cleared atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Expire(sess.ID, "stale") {
				cleared.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), cleared.Load())
	assert.Nil(t, store.Get(sess.ID))
}

func TestExpireIgnoresOtherToken(t *testing.T) {
	store := NewStore()
	sess, err := store.Create(login("fresh"))
	require.NoError(t, err)
	assert.False(t, store.Expire(sess.ID, "older"))
	assert.NotNil(t, store.Get(sess.ID))
}

func TestSetViewedEmployee(t *testing.T) {
	store := NewStore()
	sess, err := store.Create(login("tok"))
	require.NoError(t, err)
	store.SetViewedEmployee(sess.ID, 12)
	assert.Equal(t, int64(12), store.Get(sess.ID).ViewedEmployeeID)
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sessions.json.xz")
	store := NewStore()
	a, err := store.Create(login("tok-a"))
	require.NoError(t, err)
	_, err = store.Create(login("tok-b"))
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(path))

	restored := NewStore()
	n, err := restored.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, restored.Len())

	got := restored.Get(a.ID)
	require.NotNil(t, got)
	assert.Equal(t, "tok-a", got.Token)
	assert.Equal(t, a.CSRF, got.CSRF)
	assert.Equal(t, "Ana Ríos", got.User.FullName)
	assert.NotNil(t, got.Views())
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	n, err := NewStore().LoadSnapshot(filepath.Join(t.TempDir(), "none.xz"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListForReusesList(t *testing.T) {
	v := NewViews()
	a := ListFor[int](v, "visits")
	b := ListFor[int](v, "visits")
	assert.Same(t, a, b)
	c := ListFor[string](v, "calls")
	assert.NotNil(t, c)
}
