// Package pool provides pooling of managed objects in front of a Source.
package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/floor/managed"
)

// ErrClosed is delivered to users waiting on an emptied pool
var ErrClosed = errors.New("pool: closed")

// Pool hands out objects sourced by an underlying source and takes them back
// once their scope ends.
type Pool interface {
	// Source delivers a pooled object to user
	Source(ctx context.Context, user managed.User)
	// Return puts a recycled object back into the pool
	Return(object managed.Object)
	// Lost discards an object that can no longer be used
	Lost(object managed.Object, err error)
	// Empty releases idle objects and fails waiting users
	Empty()
}

// Bounded pools at most size objects; users beyond that wait for a Return.
type Bounded struct {
	source  managed.Source
	size    int
	mu      sync.Mutex
	idle    []managed.Object
	created int
	waiting []managed.User
	closed  bool
}

// New creates a bounded pool; size <= 0 means unbounded
func New(source managed.Source, size int) *Bounded {
	return &Bounded{source: source, size: size}
}

// Source delivers an idle object, sources a new one, or queues the user
func (p *Bounded) Source(ctx context.Context, user managed.User) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		user.SetFailure(ErrClosed)
		return
	}
	if n := len(p.idle); n > 0 {
		object := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		user.SetObject(object)
		return
	}
	if p.size > 0 && p.created >= p.size {
		p.waiting = append(p.waiting, user)
		p.mu.Unlock()
		return
	}
	p.created++
	p.mu.Unlock()
	p.source.Source(ctx, &sourcingUser{pool: p, user: user})
}

// Return hands the object to the next waiting user or keeps it idle
func (p *Bounded) Return(object managed.Object) {
	p.mu.Lock()
	if p.closed {
		p.created--
		p.mu.Unlock()
		return
	}
	if len(p.waiting) > 0 {
		user := p.waiting[0]
		p.waiting = p.waiting[1:]
		p.mu.Unlock()
		user.SetObject(object)
		return
	}
	p.idle = append(p.idle, object)
	p.mu.Unlock()
}

// Lost discards the object, freeing capacity for a waiting user
func (p *Bounded) Lost(object managed.Object, _ error) {
	p.mu.Lock()
	p.created--
	if p.closed || len(p.waiting) == 0 {
		p.mu.Unlock()
		return
	}
	user := p.waiting[0]
	p.waiting = p.waiting[1:]
	p.created++
	p.mu.Unlock()
	p.source.Source(context.Background(), &sourcingUser{pool: p, user: user})
}

// Empty drops idle objects and fails waiting users
func (p *Bounded) Empty() {
	p.mu.Lock()
	p.closed = true
	p.created -= len(p.idle)
	p.idle = nil
	waiting := p.waiting
	p.waiting = nil
	p.mu.Unlock()
	for _, user := range waiting {
		user.SetFailure(ErrClosed)
	}
}

// Idle returns number of idle objects
func (p *Bounded) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Created returns number of objects currently owned by the pool
func (p *Bounded) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

type sourcingUser struct {
	pool *Bounded
	user managed.User
}

func (u *sourcingUser) SetObject(object managed.Object) {
	u.user.SetObject(object)
}

func (u *sourcingUser) SetFailure(err error) {
	u.pool.mu.Lock()
	u.pool.created--
	u.pool.mu.Unlock()
	u.user.SetFailure(err)
}

var _ Pool = (*Bounded)(nil)
