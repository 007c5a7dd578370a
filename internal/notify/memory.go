package notify

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byUser map[string][]Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]Notification)}
}

func (s *MemoryStore) Append(_ context.Context, recipientID, text string) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n := Notification{
		ID:          s.nextID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   time.Now(),
	}
	s.byUser[recipientID] = append(s.byUser[recipientID], n)
	return &n, nil
}

func (s *MemoryStore) ListByRecipient(_ context.Context, recipientID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.byUser[recipientID]
	out := make([]Notification, 0, len(entries))
	// Append order is creation order, so walk backwards for newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (s *MemoryStore) CountUnread(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.byUser[recipientID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.byUser[recipientID]
	for i := range entries {
		entries[i].Read = true
	}
	return nil
}
