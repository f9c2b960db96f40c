package session

import (
	"context"
	"errors"
	"sync"
)

var ErrNoToken = errors.New("session: empty token")

// Manager owns the current access token. Every change goes through Set or
// Clear, which persist it and then notify subscribers in registration order.
type Manager struct {
	mu      sync.Mutex
	token   string
	storage Storage
	subs    []func(token string)
}

// NewManager restores the stored token. A stored token is trusted as-is.
func NewManager(ctx context.Context, storage Storage) (*Manager, error) {
	if storage == nil {
		storage = &MemoryStorage{}
	}
	tok, err := storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{
		token:   tok,
		storage: storage,
	}, nil
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// Set stores a new token. The in-memory session changes even when persisting
// fails; that error is returned after subscribers have run.
func (m *Manager) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	m.mu.Lock()
	m.token = token
	err := m.storage.Save(ctx, token)
	m.mu.Unlock()

	m.notify(token)
	return err
}

// Clear forgets the token locally. The server is not told.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	err := m.storage.Clear(ctx)
	m.mu.Unlock()

	m.notify("")
	return err
}

// Subscribe registers fn for every later token change ("" on logout) and
// returns a func that removes it.
func (m *Manager) Subscribe(fn func(token string)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.subs)
	m.subs = append(m.subs, fn)
	return func() {
		m.mu.Lock()
		m.subs[i] = nil
		m.mu.Unlock()
	}
}

func (m *Manager) notify(token string) {
	m.mu.Lock()
	subs := append(([]func(string))(nil), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(token)
		}
	}
}
