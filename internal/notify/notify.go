// Package notify implements the per person notification log. Entries are
// appended by the scheduler on lifecycle transitions and read by the
// client-facing layers; nothing here blocks on delivery.
package notify

import (
	"context"
	"time"
)

type Notification struct {
	ID          int64
	RecipientID string
	Text        string
	Read        bool
	CreatedAt   time.Time
}

// Store is the persistence behind the notification log.
type Store interface {
	Append(ctx context.Context, recipientID, text string) (*Notification, error)

	// ListByRecipient returns notifications newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkAllRead(ctx context.Context, recipientID string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Emit appends one unread notification for the recipient.
func (s *Service) Emit(ctx context.Context, recipientID, text string) error {
	_, err := s.store.Append(ctx, recipientID, text)
	return err
}

func (s *Service) List(ctx context.Context, recipientID string) ([]Notification, error) {
	return s.store.ListByRecipient(ctx, recipientID)
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.store.CountUnread(ctx, recipientID)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.store.MarkAllRead(ctx, recipientID)
}
