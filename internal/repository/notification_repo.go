package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/bellamaterna/storefront/internal/models"
)

// notificationLimit caps how many notifications a client ever loads.
const notificationLimit = 100

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// ListByUser returns the user's notifications newest-first, capped at
// the 100 most recent.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, notificationLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = models.NotificationType(kind)
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	return err
}

// Insert is used by the order-event ingester; the shop flow only reads.
func (r *NotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, read, created_at)
		VALUES ($1,$2,$3,$4,$5,false,NOW())
	`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Message, string(n.Type))
	return err
}
