package team

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		config    Config
		expect    interface{}
		expectErr bool
	}{
		{name: "default passive", config: Config{}, expect: &Passive{}},
		{name: "pool", config: Config{Type: TypePool, Workers: 2}, expect: &Pool{}},
		{name: "dedicated", config: Config{Type: TypeDedicated}, expect: &Pool{}},
		{name: "on demand", config: Config{Type: TypeOnDemand, MaxConcurrent: 2}, expect: &OnDemand{}},
		{name: "unknown", config: Config{Type: "fancy"}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			aTeam, err := New("t", tc.config, nil)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tc.expect, aTeam)
		})
	}
}

func TestPassive_AssignJob(t *testing.T) {
	var logs bytes.Buffer
	aTeam := NewPassive("passive", slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, aTeam.StartWorking(context.Background()))
	ran := false
	require.NoError(t, aTeam.AssignJob(JobFunc(func() { ran = true })))
	// job ran on the caller goroutine before AssignJob returned
	assert.True(t, ran)

	// a panicking job still ran, the passive team survives it
	assert.NoError(t, aTeam.AssignJob(JobFunc(func() { panic("boom") })))
	assert.Contains(t, logs.String(), "team=passive")
	aTeam.StopWorking()
}

func TestPool_RunsEveryJobOnce(t *testing.T) {
	aTeam := NewPool("pool", PoolConfig{Workers: 4, QueueSize: 100}, nil)
	require.NoError(t, aTeam.StartWorking(context.Background()))

	var count int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, aTeam.AssignJob(JobFunc(func() {
			defer wg.Done()
			atomic.AddInt32(&count, 1)
		})))
	}
	wg.Wait()
	aTeam.StopWorking()
	assert.EqualValues(t, 50, atomic.LoadInt32(&count))
}

func TestPool_Overload(t *testing.T) {
	aTeam := NewPool("bounded", PoolConfig{Workers: 1, QueueSize: 1}, nil)
	require.NoError(t, aTeam.StartWorking(context.Background()))

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, aTeam.AssignJob(JobFunc(func() {
		close(started)
		<-release
	})))
	<-started
	// occupies the single queue slot
	require.NoError(t, aTeam.AssignJob(JobFunc(func() {})))

	err := aTeam.AssignJob(JobFunc(func() {}))
	assert.ErrorIs(t, err, ErrOverload)
	close(release)
	aTeam.StopWorking()
}

func TestPool_NotWorking(t *testing.T) {
	aTeam := NewPool("idle", DefaultPoolConfig(), nil)
	assert.ErrorIs(t, aTeam.AssignJob(JobFunc(func() {})), ErrNotWorking)

	require.NoError(t, aTeam.StartWorking(context.Background()))
	aTeam.StopWorking()
	assert.ErrorIs(t, aTeam.AssignJob(JobFunc(func() {})), ErrNotWorking)
}

func TestPool_StopDrainsAcceptedJobs(t *testing.T) {
	aTeam := NewDedicated("dedicated", 10, nil)
	require.NoError(t, aTeam.StartWorking(context.Background()))
	var order []int
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, aTeam.AssignJob(JobFunc(func() {
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})))
	}
	aTeam.StopWorking()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestPool_PanicKeepsWorker(t *testing.T) {
	aTeam := NewDedicated("dedicated", 10, nil)
	require.NoError(t, aTeam.StartWorking(context.Background()))
	done := make(chan struct{})
	require.NoError(t, aTeam.AssignJob(JobFunc(func() { panic("boom") })))
	require.NoError(t, aTeam.AssignJob(JobFunc(func() { close(done) })))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panic")
	}
	assert.Equal(t, 1, aTeam.Failed())
	aTeam.StopWorking()
}

func TestOnDemand_Overload(t *testing.T) {
	aTeam := NewOnDemand("onDemand", 1, nil)
	require.NoError(t, aTeam.StartWorking(context.Background()))
	release := make(chan struct{})
	require.NoError(t, aTeam.AssignJob(JobFunc(func() { <-release })))
	assert.ErrorIs(t, aTeam.AssignJob(JobFunc(func() {})), ErrOverload)
	close(release)
	aTeam.StopWorking()
	assert.ErrorIs(t, aTeam.AssignJob(JobFunc(func() {})), ErrNotWorking)
}
