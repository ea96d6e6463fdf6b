package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/floor/function"
	"github.com/viant/floor/model/graph"
)

func body(ctx function.Context) (interface{}, error) { return nil, nil }

func TestOffice_Validate(t *testing.T) {
	testCases := []struct {
		description string
		office      func() *Office
		expectCount int
	}{
		{
			description: "valid office",
			office: func() *Office {
				return NewOffice("o").
					WithObject(graph.NewManagedObject("db", "pg", graph.ScopeProcess),
						graph.NewManagedObject("repo", "repo", graph.ScopeThread).WithDependencies("db")).
					WithFunction(graph.NewFunction("a", function.Func(body)).WithObject("repo", "").WithNext("b"),
						graph.NewFunction("b", function.Func(body))).
					WithWork("w", "a").
					WithEscalation(graph.EscalationOf[error]("b"))
			},
		},
		{
			description: "unknown references",
			office: func() *Office {
				return NewOffice("o").
					WithFunction(graph.NewFunction("a", function.Func(body)).
						WithObject("missing", "").
						WithFlow("x", graph.StrategySpawn).
						WithNext("y")).
					WithWork("w", "z")
			},
			expectCount: 4,
		},
		{
			description: "duplicate function",
			office: func() *Office {
				return NewOffice("o").WithFunction(graph.NewFunction("a", function.Func(body)), graph.NewFunction("a", function.Func(body)))
			},
			expectCount: 1,
		},
		{
			description: "dependency cycle",
			office: func() *Office {
				return NewOffice("o").WithObject(
					graph.NewManagedObject("a", "s", "").WithDependencies("b"),
					graph.NewManagedObject("b", "s", "").WithDependencies("a"))
			},
			expectCount: 1,
		},
		{
			description: "work without initial function",
			office: func() *Office {
				return NewOffice("o").WithWork("w", "")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			issues := testCase.office().Validate()
			assert.Len(t, issues, testCase.expectCount, "%v", issues)
		})
	}
}

func TestOffice_Lookup(t *testing.T) {
	office := NewOffice("o").
		WithFunction(graph.NewFunction("a", function.Func(body))).
		WithObject(graph.NewManagedObject("db", "pg", "")).
		WithWork("w", "a")
	fn, ok := office.Function("a")
	assert.True(t, ok)
	assert.Equal(t, "a", fn.Name)
	_, ok = office.Object("db")
	assert.True(t, ok)
	work, ok := office.Work("w")
	assert.True(t, ok)
	assert.Equal(t, "a", work.Initial)
	office.WithFunction(graph.NewFunction("b", function.Func(body)))
	_, ok = office.Function("b")
	assert.True(t, ok)
}
