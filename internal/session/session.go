// Package session tracks per-conversation history for the query API.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const DefaultMaxHistory = 2

// Exchange is one completed user/assistant turn.
type Exchange struct {
	UserMessage      string
	AssistantMessage string
}

// Manager keeps a bounded window of recent exchanges per session. Sessions
// live in memory only; a restart starts everyone fresh.
type Manager struct {
	maxHistory int

	mu       sync.RWMutex
	sessions map[string][]Exchange
}

func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		maxHistory: maxHistory,
		sessions:   make(map[string][]Exchange),
	}
}

// Create returns a fresh session id.
func (m *Manager) Create() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()
	return id
}

// AddExchange records a completed turn, trimming the window to the newest
// maxHistory exchanges.
func (m *Manager) AddExchange(sessionID, userMessage, assistantMessage string) {
	if sessionID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.sessions[sessionID], Exchange{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.sessions[sessionID] = history
}

// FormatHistory renders the window as prompt text, oldest first. Unknown
// sessions and empty histories yield "".
func (m *Manager) FormatHistory(sessionID string) string {
	m.mu.RLock()
	history := m.sessions[sessionID]
	m.mu.RUnlock()
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history))
	for _, exchange := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", exchange.UserMessage, exchange.AssistantMessage))
	}
	return strings.Join(lines, "\n")
}

// Clear drops one session's history but keeps the session alive.
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	m.sessions[sessionID] = nil
	m.mu.Unlock()
}
