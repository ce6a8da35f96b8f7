package bootstrap

import (
	"context"
	"sync"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Phase tracks application start-up. It moves forward only:
// uninitialized -> initializing -> ready | failed.
type Phase struct {
	mu    sync.RWMutex
	state State
	err   error
	done  chan struct{}
}

func NewPhase() *Phase {
	return &Phase{state: StateUninitialized, done: make(chan struct{})}
}

// Begin moves to initializing. It reports false if start-up already began.
func (p *Phase) Begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateUninitialized {
		return false
	}
	p.state = StateInitializing
	return true
}

func (p *Phase) MarkReady() {
	p.finish(StateReady, nil)
}

func (p *Phase) Fail(err error) {
	p.finish(StateFailed, err)
}

func (p *Phase) finish(s State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateReady || p.state == StateFailed {
		return
	}
	p.state = s
	p.err = err
	close(p.done)
}

func (p *Phase) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Phase) Ready() bool {
	return p.State() == StateReady
}

// Err is the start-up failure, if any.
func (p *Phase) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Done is closed once start-up has finished either way.
func (p *Phase) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until start-up finishes or ctx ends. It returns the start-up
// error, or ctx's error if it gave up first.
func (p *Phase) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
