package checkout

import (
	"sync"
)

// Manager keeps each student's in-progress checkout flow between requests
type Manager struct {
	mu    sync.RWMutex
	flows map[string]*Flow // studentID -> Flow
}

func NewManager() *Manager {
	return &Manager{
		flows: make(map[string]*Flow),
	}
}

// Get returns the student's current flow, nil if none
func (m *Manager) Get(studentID string) *Flow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.flows[studentID]
}

// Start replaces the student's flow with a fresh one
func (m *Manager) Start(studentID string, flow *Flow) *Flow {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flows[studentID] = flow
	return flow
}

// Clear drops the student's flow, e.g. after commit or logout
func (m *Manager) Clear(studentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.flows, studentID)
}
