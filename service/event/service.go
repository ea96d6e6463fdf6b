package event

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/viant/floor/service/messaging"
	"github.com/viant/floor/service/messaging/memory"
)

// Service routes typed events over in-memory queues, every event is also
// published to the catch-all queue consumed by SetListener.
type Service struct {
	publisher         *Publisher[any]
	listener          *Listener[any]
	typedPublishers   map[reflect.Type]any
	typedListener     map[reflect.Type]any
	queues            []interface{ Close() }
	mux               *sync.RWMutex
	logger            *slog.Logger
	memNewQueueConfig func(name string) memory.Config
}

// DefaultQueueConfig returns configuration used when none was supplied
func DefaultQueueConfig(string) memory.Config {
	return memory.Config{QueueBuffer: 1024}
}

func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	previous := s.listener
	s.listener = NewListener[any](s.publisher, handler, s.logger)
	s.listener.Start()
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
}

func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers:   make(map[reflect.Type]any),
		typedListener:     make(map[reflect.Type]any),
		mux:               &sync.RWMutex{},
		logger:            slog.Default(),
		memNewQueueConfig: DefaultQueueConfig,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.publisher = NewPublisher[any](QueueOf[Event[any]](ret, "any"))
	return ret
}

func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	queue := memory.NewQueue[T](s.memNewQueueConfig(name))
	s.mux.Lock()
	s.queues = append(s.queues, queue)
	s.mux.Unlock()
	return queue
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	publisher := PublisherOf[T](s)
	listener := NewListener[T](publisher, handler, s.logger)
	s.mux.Lock()
	previous, ok := s.typedListener[key]
	s.typedListener[key] = listener
	listener.Start()
	s.mux.Unlock()
	if ok {
		previous.(*Listener[T]).Stop()
	}
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	queue := QueueOf[Event[T]](s, key.String())
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		queue.Close()
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](queue)
	publisher.anyQueue = s.publisher.queue
	s.typedPublishers[key] = publisher
	return publisher
}

// Close stops listeners and closes queues
func (s *Service) Close() {
	s.mux.Lock()
	queues := s.queues
	s.queues = nil
	s.mux.Unlock()
	for _, queue := range queues {
		queue.Close()
	}
}
