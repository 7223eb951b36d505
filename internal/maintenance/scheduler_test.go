package maintenance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeSweeper struct {
	removed int
	sweeps  atomic.Int32
	flushes atomic.Int32
}

func (f *fakeSweeper) Sweep() int {
	f.sweeps.Add(1)
	return f.removed
}

func (f *fakeSweeper) Flush() { f.flushes.Add(1) }

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every hour")
	assert.Error(t, err)

	_, err = NewScheduler("@every 1h")
	assert.NoError(t, err)
}

func TestRunNowUpdatesStatus(t *testing.T) {
	s, err := NewScheduler("@every 1h")
	require.NoError(t, err)

	sw := &fakeSweeper{removed: 3}
	s.RegisterTask(RetentionTask{Learning: sw})
	s.RunNow(context.Background())

	assert.Equal(t, int32(1), sw.sweeps.Load())
	assert.Equal(t, int32(1), sw.flushes.Load())

	st := s.Status()["learning_retention"]
	assert.Equal(t, 1, st.Runs)
	assert.True(t, st.LastResult.Success)
	assert.Equal(t, 3, st.LastResult.RecordsProcessed)
	assert.Equal(t, "removed 3 stale patterns", st.LastResult.Message)
	assert.False(t, st.LastRun.IsZero())
}

func TestRetentionTaskCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sw := &fakeSweeper{}
	res := RetentionTask{Learning: sw}.Execute(ctx)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Error, context.Canceled)
	assert.Equal(t, int32(0), sw.sweeps.Load())
}

func TestStartRunsOnSchedule(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, err := NewScheduler("@every 1s")
	require.NoError(t, err)

	sw := &fakeSweeper{}
	s.RegisterTask(RetentionTask{Learning: sw})
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(), "second start fails")

	require.Eventually(t, func() bool { return sw.sweeps.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

	s.Stop(5 * time.Second)
	assert.False(t, s.IsRunning())
	s.Stop(time.Second)
}
