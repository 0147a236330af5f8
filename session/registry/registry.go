// Package registry tracks the per-login-session stores the server
// creates on sign-in: the session store and the agency settings store
// that share one cookie-scoped lifetime.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tourcompanion/portal-server/agency"
	errs "github.com/tourcompanion/portal-server/internal/errors"
	"github.com/tourcompanion/portal-server/session"
)

// Entry bundles the activation-scoped stores for one login session.
type Entry struct {
	ID        string
	Session   *session.Store
	Agency    *agency.Store
	CreatedAt time.Time
}

// Close tears down the entry's stores.
func (e *Entry) Close() {
	if e.Session != nil {
		e.Session.Close()
	}
}

type Repo interface {
	Put(entry *Entry) error
	Get(id string) (*Entry, error)
	Delete(id string) error
	CloseAll()
}

// NewID returns a fresh login-session identifier.
func NewID() string {
	return uuid.New().String()
}

// InMemory is the in-process Repo implementation.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ Repo = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]*Entry)}
}

func (r *InMemory) Put(entry *Entry) error {
	if entry == nil || entry.ID == "" {
		return errors.New("entry with ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *InMemory) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.Wrap(errs.ErrSessionNotFound, "empty id")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrSessionNotFound, id)
	}
	return entry, nil
}

// Delete removes and tears down the entry. Deleting an unknown ID is
// not an error.
func (r *InMemory) Delete(id string) error {
	r.mu.Lock()
	entry, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		entry.Close()
	}
	return nil
}

// CloseAll tears down every entry; called at process shutdown.
func (r *InMemory) CloseAll() {
	r.mu.Lock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.Close()
	}
}
