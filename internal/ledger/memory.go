package ledger

import (
	"context"
	"sync"
)

// Memory keeps stacks in process memory. Stacks are lost on restart.
type Memory struct {
	mu           sync.Mutex
	stacks       map[string]int
	defaultStack int
}

// NewMemory creates an empty in-memory ledger.
func NewMemory(defaultStack int) *Memory {
	return &Memory{stacks: make(map[string]int), defaultStack: defaultStack}
}

func (m *Memory) Load(_ context.Context, playerID string) (int, error) {
	if err := validate(playerID, 0); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chips, ok := m.stacks[playerID]
	if !ok {
		chips = m.defaultStack
		m.stacks[playerID] = chips
	}
	return chips, nil
}

func (m *Memory) Save(_ context.Context, playerID string, chips int) error {
	if err := validate(playerID, chips); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stacks[playerID] = chips
	return nil
}

func (m *Memory) Close() error { return nil }
