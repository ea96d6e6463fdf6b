package allocator

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/floor/internal/clock"
	"github.com/viant/floor/internal/idgen"
)

// Config represents allocator service configuration
type Config struct {
	// PollingInterval is how often the allocator checks for due invocations
	PollingInterval time.Duration
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		PollingInterval: 20 * time.Millisecond,
	}
}

// Invocation represents a delayed invocation
type Invocation struct {
	ID  string
	Due time.Time
	Run func()

	seq   uint64
	index int
}

// Service releases delayed invocations once due
type Service struct {
	config     Config
	logger     *slog.Logger
	mux        sync.Mutex
	pending    invocations
	byID       map[string]*Invocation
	seq        uint64
	shutdownCh chan struct{}
	once       sync.Once
}

// New creates an allocator service
func New(config Config, logger *slog.Logger) *Service {
	if config.PollingInterval <= 0 {
		config.PollingInterval = DefaultConfig().PollingInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config:     config,
		logger:     logger,
		byID:       make(map[string]*Invocation),
		shutdownCh: make(chan struct{}),
	}
}

// Schedule registers fn to run once delay elapsed, it returns the invocation id
func (s *Service) Schedule(delay time.Duration, fn func()) string {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.seq++
	invocation := &Invocation{ID: idgen.New(), Due: clock.Now().Add(delay), Run: fn, seq: s.seq}
	heap.Push(&s.pending, invocation)
	s.byID[invocation.ID] = invocation
	return invocation.ID
}

// Cancel removes a pending invocation, it returns false if it was not pending
func (s *Service) Cancel(id string) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	invocation, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.pending, invocation.index)
	delete(s.byID, id)
	return true
}

// Pending returns number of pending invocations
func (s *Service) Pending() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.pending)
}

// Start runs the polling loop until ctx is done or Shutdown is called
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			s.release()
		}
	}
}

// Shutdown stops the polling loop, pending invocations are dropped
func (s *Service) Shutdown() int {
	s.once.Do(func() { close(s.shutdownCh) })
	s.mux.Lock()
	defer s.mux.Unlock()
	dropped := len(s.pending)
	s.pending = nil
	s.byID = make(map[string]*Invocation)
	return dropped
}

// release runs every due invocation in due order
func (s *Service) release() {
	now := clock.Now()
	for {
		s.mux.Lock()
		if len(s.pending) == 0 || s.pending[0].Due.After(now) {
			s.mux.Unlock()
			return
		}
		invocation := heap.Pop(&s.pending).(*Invocation)
		delete(s.byID, invocation.ID)
		s.mux.Unlock()
		s.run(invocation)
	}
}

func (s *Service) run(invocation *Invocation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("delayed invocation panicked", "id", invocation.ID, "panic", r)
		}
	}()
	invocation.Run()
}

// invocations implements heap.Interface ordered by due time then scheduling order
type invocations []*Invocation

func (h invocations) Len() int { return len(h) }

func (h invocations) Less(i, j int) bool {
	if h[i].Due.Equal(h[j].Due) {
		return h[i].seq < h[j].seq
	}
	return h[i].Due.Before(h[j].Due)
}

func (h invocations) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *invocations) Push(x any) {
	invocation := x.(*Invocation)
	invocation.index = len(*h)
	*h = append(*h, invocation)
}

func (h *invocations) Pop() any {
	old := *h
	n := len(old)
	invocation := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	invocation.index = -1
	return invocation
}
