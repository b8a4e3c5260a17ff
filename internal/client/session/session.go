// Package session holds the client-side bearer token and authenticated flag.
package session

import "sync"

// Manager is safe for concurrent use.
type Manager struct {
	mu            sync.RWMutex
	token         string
	authenticated bool
}

func NewManager() *Manager {
	return &Manager{}
}

// Login stores token and marks the session authenticated. An empty token logs out.
func (m *Manager) Login(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.authenticated = token != ""
}

// Logout forgets the token.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.authenticated = false
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}
