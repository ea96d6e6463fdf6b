package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/dao"
)

func TestService_List(t *testing.T) {
	ctx := context.Background()
	srv := New()
	processes := []*execution.ProcessState{
		execution.NewProcessState(ctx, "p1", "handle", nil),
		execution.NewProcessState(ctx, "p2", "handle", nil),
		execution.NewProcessState(ctx, "p3", "report", nil),
	}
	processes[1].State = execution.StateCleaning
	for _, process := range processes {
		require.NoError(t, srv.Save(ctx, process))
	}

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []string
	}{
		{description: "all", expect: []string{"p1", "p2", "p3"}},
		{description: "by state", parameters: []*dao.Parameter{dao.NewParameter(dao.ParameterState, execution.StateOpen)}, expect: []string{"p1", "p3"}},
		{description: "by any state", parameters: []*dao.Parameter{dao.NewParameter(dao.ParameterState, execution.StateOpen, execution.StateCleaning)}, expect: []string{"p1", "p2", "p3"}},
		{description: "by function", parameters: []*dao.Parameter{dao.NewParameter(dao.ParameterFunction, "handle")}, expect: []string{"p1", "p2"}},
		{
			description: "by state and function",
			parameters: []*dao.Parameter{
				dao.NewParameter(dao.ParameterState, execution.StateOpen),
				dao.NewParameter(dao.ParameterFunction, "handle"),
			},
			expect: []string{"p1"},
		},
		{description: "unknown field", parameters: []*dao.Parameter{dao.NewParameter("Owner", "x")}, expect: []string{"p1", "p2", "p3"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := srv.List(ctx, testCase.parameters...)
			require.NoError(t, err)
			var ids []string
			for _, process := range actual {
				ids = append(ids, process.ID)
			}
			assert.Equal(t, testCase.expect, ids)
		})
	}
}
