package optimistic

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func increment(n int) int { return n + 1 }

func TestTracker_ConfirmKeepsOptimisticValue(t *testing.T) {
	tr := New(10)
	assert.Equal(t, Idle, tr.State())

	id, err := tr.Begin(increment)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, tr.MutationID())
	assert.Equal(t, Pending, tr.State())
	assert.Equal(t, 11, tr.Value())

	require.NoError(t, tr.Confirm())
	assert.Equal(t, Confirmed, tr.State())
	assert.Equal(t, 11, tr.Value())
	assert.Empty(t, tr.MutationID())
}

func TestTracker_RollbackRestoresSnapshot(t *testing.T) {
	tr := New(10)
	_, err := tr.Begin(increment)
	require.NoError(t, err)

	require.NoError(t, tr.Rollback())
	assert.Equal(t, RolledBack, tr.State())
	assert.Equal(t, 10, tr.Value())
}

func TestTracker_ConfirmWithUsesServerValue(t *testing.T) {
	tr := New(10)
	_, err := tr.Begin(increment)
	require.NoError(t, err)

	require.NoError(t, tr.ConfirmWith(42))
	assert.Equal(t, 42, tr.Value())
	assert.Equal(t, Confirmed, tr.State())
}

func TestTracker_InvalidTransitions(t *testing.T) {
	tr := New("a")
	assert.ErrorIs(t, tr.Confirm(), ErrNotPending)
	assert.ErrorIs(t, tr.Rollback(), ErrNotPending)
	assert.ErrorIs(t, tr.ConfirmWith("b"), ErrNotPending)

	_, err := tr.Begin(func(s string) string { return s + "b" })
	require.NoError(t, err)
	_, err = tr.Begin(func(s string) string { return s + "c" })
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, "ab", tr.Value(), "rejected mutation leaves the value alone")

	require.NoError(t, tr.Rollback())
	assert.ErrorIs(t, tr.Confirm(), ErrNotPending, "a settled mutation cannot settle again")
}

func TestTracker_NewMutationAfterSettling(t *testing.T) {
	tr := New(0)
	for i := 0; i < 3; i++ {
		first, err := tr.Begin(increment)
		require.NoError(t, err)
		require.NoError(t, tr.Confirm())

		second, err := tr.Begin(increment)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		require.NoError(t, tr.Rollback())
	}
	assert.Equal(t, 3, tr.Value())
}

func TestTracker_ConcurrentBeginAdmitsOne(t *testing.T) {
	tr := New(0)
	var wg sync.WaitGroup
	var admitted, rejected atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Begin(increment); err != nil {
				rejected.Add(1)
				return
			}
			admitted.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, int32(19), rejected.Load())
	assert.Equal(t, 1, tr.Value())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "rolled_back", RolledBack.String())
	assert.Equal(t, "State(9)", State(9).String())
}
