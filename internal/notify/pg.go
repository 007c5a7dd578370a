package notify

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Append(ctx context.Context, recipientID, text string) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, text, read, created_at)
		VALUES ($1, $2, false, now())
		RETURNING id, recipient_id, text, read, created_at
	`, recipientID, text)

	var n Notification
	if err := row.Scan(&n.ID, &n.RecipientID, &n.Text, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *PgStore) ListByRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipient_id, text, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
	`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Text, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_id = $1
		  AND read = false
	`, recipientID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PgStore) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read = true
		WHERE recipient_id = $1
	`, recipientID)
	return err
}
