package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	contractx "github.com/careerninja/learntube/agent/contract"
)

// InProcStore keeps facts in memory. It backs wiring without Postgres and
// the test suites; it honors the same overwrite-by-key contract.
type InProcStore struct {
	mu    sync.RWMutex
	facts map[string]map[string]contractx.Fact
	now   func() time.Time
}

var _ contractx.MemoryStore = (*InProcStore)(nil)

func NewInProcStore() *InProcStore {
	return &InProcStore{
		facts: make(map[string]map[string]contractx.Fact),
		now:   time.Now,
	}
}

func (s *InProcStore) Get(_ context.Context, userID, key string) (contractx.Fact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey, ok := s.facts[userID]
	if !ok {
		return contractx.Fact{}, false, nil
	}
	fact, ok := byKey[key]
	return fact, ok, nil
}

func (s *InProcStore) Put(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.facts[userID]
	if !ok {
		byKey = make(map[string]contractx.Fact)
		s.facts[userID] = byKey
	}
	byKey[key] = contractx.Fact{
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	return nil
}

func (s *InProcStore) List(_ context.Context, userID string) ([]contractx.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.facts[userID]
	facts := make([]contractx.Fact, 0, len(byKey))
	for _, fact := range byKey {
		facts = append(facts, fact)
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].UpdatedAt.Equal(facts[j].UpdatedAt) {
			return facts[i].Key < facts[j].Key
		}
		return facts[i].UpdatedAt.After(facts[j].UpdatedAt)
	})
	return facts, nil
}
