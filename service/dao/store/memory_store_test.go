package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/dao/criteria"
)

type record struct {
	ID    string
	State string
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStore[string, record](func(r *record) string { return r.ID }).
		WithFilter(func(r *record, parameters []*dao.Parameter) bool {
			return criteria.Match(func(name string) (string, bool) {
				if name == dao.ParameterState {
					return r.State, true
				}
				return "", false
			}, parameters)
		})

	require.NoError(t, aStore.Save(ctx, &record{ID: "b", State: "open"}))
	require.NoError(t, aStore.Save(ctx, &record{ID: "a", State: "cleaning"}))
	require.NoError(t, aStore.Save(ctx, &record{ID: "c", State: "open"}))
	assert.ErrorIs(t, aStore.Save(ctx, nil), dao.ErrNilEntity)
	assert.Equal(t, 3, aStore.Len())

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []string
	}{
		{description: "all in insertion order", expect: []string{"b", "a", "c"}},
		{description: "single state", parameters: []*dao.Parameter{dao.NewParameter(dao.ParameterState, "open")}, expect: []string{"b", "c"}},
		{description: "many states", parameters: []*dao.Parameter{dao.NewParameter(dao.ParameterState, "open", "cleaning")}, expect: []string{"b", "a", "c"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			records, err := aStore.List(ctx, testCase.parameters...)
			require.NoError(t, err)
			var ids []string
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, testCase.expect, ids)
		})
	}

	loaded, err := aStore.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "cleaning", loaded.State)
	require.NoError(t, aStore.Delete(ctx, "a"))
	_, err = aStore.Load(ctx, "a")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, aStore.Delete(ctx, "a"), dao.ErrNotFound)
}
