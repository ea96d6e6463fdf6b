package event

import (
	"time"

	"github.com/viant/floor/internal/clock"
)

// Event types
const (
	TypeProcessCompleted = "processCompleted"
	TypeProcessFailed    = "processFailed"
	TypeThreadFailed     = "threadFailed"
	TypeCleanupFailed    = "cleanupFailed"
)

type Context struct {
	ProcessID   string `json:"processID"`
	ThreadID    string `json:"threadID,omitempty"`
	EventType   string `json:"eventType"`
	Name        string `json:"name,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
