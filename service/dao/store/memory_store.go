package store

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/floor/service/dao"
)

// Filter decides whether a record matches list parameters
type Filter[T any] func(record *T, parameters []*dao.Parameter) bool

// MemoryStore is a generic in-memory implementation of dao.Service keeping
// entities of type *T by a comparable key obtained with keySelector.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	order       map[K]uint64
	seq         uint64
	keySelector func(*T) K
	filter      Filter[T]
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		order:       make(map[K]uint64),
		keySelector: keySelector,
	}
}

// WithFilter sets the filter applied by List
func (s *MemoryStore[K, T]) WithFilter(filter Filter[T]) *MemoryStore[K, T] {
	s.filter = filter
	return s
}

// Save stores v, or overwrites the record with the same key
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		s.seq++
		s.order[key] = s.seq
	}
	s.records[key] = v
	return nil
}

// Load returns a record by key, or dao.ErrNotFound
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return v, nil
}

// Delete removes a record, or returns dao.ErrNotFound
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	delete(s.order, key)
	return nil
}

// List returns matching records in insertion order
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	keys := make([]K, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return s.order[keys[i]] < s.order[keys[j]] })
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.records[k])
	}
	filter := s.filter
	s.mu.RUnlock()
	if filter == nil || len(parameters) == 0 {
		return out, nil
	}
	ret := out[:0]
	for _, v := range out {
		if filter(v, parameters) {
			ret = append(ret, v)
		}
	}
	return ret, nil
}

// Len returns number of records
func (s *MemoryStore[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ dao.Service[string, struct{}] = (*MemoryStore[string, struct{}])(nil)
