// Package authstate persists the pending-authorization blob written before
// the browser is redirected to the provider's login page and read back when
// the redirect completes.
package authstate

import (
	"context"
	"sync"
)

// Pending is the transient blob for one generate-token flow. It is created
// when the flow starts, consumed exactly once by the redirect callback, or
// silently orphaned if the user abandons the flow.
type Pending struct {
	AppID       string `json:"applicationId"`
	SecretID    string `json:"secretId"`
	RedirectURI string `json:"redirectUri"`
}

// Store is a single named slot, not a queue: Put overwrites (last write
// wins) and Take reads-and-deletes exactly once.
type Store interface {
	Put(ctx context.Context, p Pending) error
	Take(ctx context.Context) (Pending, bool, error)
}

// Memory is the in-process Store used for single-session runs and tests.
type Memory struct {
	mu   sync.Mutex
	slot *Pending
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Put(_ context.Context, p Pending) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = &p
	return nil
}

func (m *Memory) Take(_ context.Context) (Pending, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == nil {
		return Pending{}, false, nil
	}
	p := *m.slot
	m.slot = nil
	return p, true, nil
}
