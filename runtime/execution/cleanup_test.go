package execution

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/floor/team"
)

func TestCleanupSequence_OrderAndFailures(t *testing.T) {
	testCases := []struct {
		description string
		newTeam     func() team.Team
		jobs        int
		failing     []int
	}{
		{description: "passive, no failure", newTeam: func() team.Team { return team.NewPassive("p", nil) }, jobs: 5},
		{description: "passive, first fails", newTeam: func() team.Team { return team.NewPassive("p", nil) }, jobs: 5, failing: []int{1}},
		{description: "passive, last fails", newTeam: func() team.Team { return team.NewPassive("p", nil) }, jobs: 5, failing: []int{5}},
		{description: "pool, several fail", newTeam: func() team.Team {
			return team.NewPool("w", team.PoolConfig{Workers: 4, QueueSize: 10}, nil)
		}, jobs: 20, failing: []int{2, 7, 20}},
		{description: "on demand, middle fails", newTeam: func() team.Team { return team.NewOnDemand("o", 0, nil) }, jobs: 10, failing: []int{5}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			aTeam := testCase.newTeam()
			require.NoError(t, aTeam.StartWorking(context.Background()))
			defer aTeam.StopWorking()

			failing := map[int]bool{}
			for _, k := range testCase.failing {
				failing[k] = true
			}
			sequence := NewCleanupSequence(context.Background(), aTeam, nil)
			var mux sync.Mutex
			var order []int
			var concurrent, maxConcurrent int32
			for i := 1; i <= testCase.jobs; i++ {
				k := i
				sequence.Register(&CleanupJob{
					Object: fmt.Sprintf("mo%v", k),
					Type:   reflect.TypeOf(k),
					Run: func(ctx context.Context) error {
						current := atomic.AddInt32(&concurrent, 1)
						for {
							seen := atomic.LoadInt32(&maxConcurrent)
							if current <= seen || atomic.CompareAndSwapInt32(&maxConcurrent, seen, current) {
								break
							}
						}
						time.Sleep(time.Millisecond)
						mux.Lock()
						order = append(order, k)
						mux.Unlock()
						atomic.AddInt32(&concurrent, -1)
						if failing[k] {
							return fmt.Errorf("failed %v", k)
						}
						return nil
					},
				})
			}
			drained := make(chan struct{})
			sequence.Seal(func() { close(drained) })
			select {
			case <-drained:
			case <-time.After(5 * time.Second):
				t.Fatal("cleanup did not drain")
			}

			expectOrder := make([]int, 0, testCase.jobs)
			for i := 1; i <= testCase.jobs; i++ {
				expectOrder = append(expectOrder, i)
			}
			assert.Equal(t, expectOrder, order)
			assert.EqualValues(t, 1, atomic.LoadInt32(&maxConcurrent))
			assert.Equal(t, testCase.jobs, sequence.Ran())

			escalations := sequence.Escalations()
			require.Len(t, escalations, len(testCase.failing))
			for i, k := range testCase.failing {
				assert.Equal(t, fmt.Sprintf("mo%v", k), escalations[i].Object)
				assert.Equal(t, reflect.TypeOf(0), escalations[i].Type)
				assert.EqualError(t, escalations[i].Err, fmt.Sprintf("failed %v", k))
			}
		})
	}
}

func TestCleanupSequence_PassiveDoesNotRecurse(t *testing.T) {
	sequence := NewCleanupSequence(context.Background(), team.NewPassive("p", nil), nil)
	var count int
	jobs := make([]*CleanupJob, 0, 100000)
	for i := 0; i < 100000; i++ {
		jobs = append(jobs, &CleanupJob{Object: "mo", Run: func(ctx context.Context) error {
			count++
			return nil
		}})
	}
	sequence.Register(jobs...)
	assert.Equal(t, 100000, count)
	assert.Equal(t, 0, sequence.Pending())
}

func TestCleanupSequence_PanicIsEscalation(t *testing.T) {
	sequence := NewCleanupSequence(context.Background(), nil, nil)
	ran := false
	sequence.Register(
		&CleanupJob{Object: "a", Run: func(ctx context.Context) error { panic("boom") }},
		&CleanupJob{Object: "b", Run: func(ctx context.Context) error { ran = true; return nil }},
	)
	assert.True(t, ran)
	escalations := sequence.Escalations()
	require.Len(t, escalations, 1)
	assert.Equal(t, "a", escalations[0].Object)
}

func TestCleanupSequence_SealWhenIdle(t *testing.T) {
	sequence := NewCleanupSequence(context.Background(), nil, nil)
	drained := false
	sequence.Seal(func() { drained = true })
	assert.True(t, drained)
}

func TestCleanupSequence_RejectingTeamRunsInline(t *testing.T) {
	aTeam := team.NewPool("stopped", team.PoolConfig{Workers: 1, QueueSize: 1}, nil)
	sequence := NewCleanupSequence(context.Background(), aTeam, nil)
	failure := errors.New("x")
	sequence.Register(&CleanupJob{Object: "a", Run: func(ctx context.Context) error { return failure }})
	escalations := sequence.Escalations()
	require.Len(t, escalations, 1)
	assert.ErrorIs(t, escalations[0], failure)
}
