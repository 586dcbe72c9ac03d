package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Cache for single-instance deployments and tests.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	counts map[uint]FollowCounts
	viewed map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{
		now:    time.Now,
		counts: make(map[uint]FollowCounts),
		viewed: make(map[string]time.Time),
	}
}

func (m *Memory) GetFollowCounts(_ context.Context, userID uint) (FollowCounts, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counts[userID]
	return c, ok, nil
}

func (m *Memory) SetFollowCounts(_ context.Context, userID uint, counts FollowCounts) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID] = counts
	return nil
}

func (m *Memory) InvalidateFollowCounts(_ context.Context, userIDs ...uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range userIDs {
		delete(m.counts, id)
	}
	return nil
}

func (m *Memory) MarkViewed(_ context.Context, blogID, viewer string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := blogID + ":" + viewer
	now := m.now()
	if until, ok := m.viewed[key]; ok && now.Before(until) {
		return false, nil
	}
	m.viewed[key] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Close() error {
	return nil
}
