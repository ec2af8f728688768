package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresNotificationRepo はPostgreSQLを使用した通知リポジトリ。
type PostgresNotificationRepo struct {
	db *sql.DB
}

// NewPostgresNotificationRepo はPostgresNotificationRepoを生成する。
func NewPostgresNotificationRepo(db *sql.DB) *PostgresNotificationRepo {
	return &PostgresNotificationRepo{db: db}
}

// Create は通知を作成する。
func (r *PostgresNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (notification_id, user_id, title, message, type, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("通知の作成に失敗しました: %w", err)
	}
	return nil
}

// ListByUser はユーザーの通知を作成日降順で返す。
func (r *PostgresNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	query := `SELECT notification_id, user_id, title, message, type, is_read, created_at, read_at
	          FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		n := &model.Notification{}
		var readAt sql.NullTime
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type,
			&n.IsRead, &n.CreatedAt, &readAt,
		); err != nil {
			return nil, fmt.Errorf("通知の読み取りに失敗しました: %w", err)
		}
		n.ReadAt = timePtr(readAt)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("通知の走査に失敗しました: %w", err)
	}
	return notifications, nil
}

// MarkRead は通知を既読にする。
func (r *PostgresNotificationRepo) MarkRead(ctx context.Context, notificationID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE notification_id = $1`,
		notificationID, at,
	)
	if err != nil {
		return fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}
	return nil
}

// DeleteReadBefore は指定日時より前に既読になった通知を削除し、削除件数を返す。
func (r *PostgresNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE is_read = TRUE AND read_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("既読通知の削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の確認に失敗しました: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ NotificationRepository = (*PostgresNotificationRepo)(nil)
