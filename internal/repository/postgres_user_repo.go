package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	user := &model.User{}
	var lastLogin sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, role, is_active, last_login, created_at, updated_at
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(
		&user.UserID, &user.Email, &user.Role, &user.IsActive,
		&lastLogin, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	user.LastLogin = timePtr(lastLogin)
	return user, nil
}

// Insert はユーザーを作成する。同一user_idの行が既に存在する場合は
// 何もせずfalseを返す。同時プロビジョニングの競合はここで吸収される。
func (r *PostgresUserRepo) Insert(ctx context.Context, user *model.User) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, role, is_active, last_login, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO NOTHING`,
		user.UserID, user.Email, user.Role, user.IsActive,
		nullTimePtr(user.LastLogin), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ユーザー作成結果の確認に失敗しました: %w", err)
	}
	return n > 0, nil
}

// UpdateLastLogin は最終ログイン日時を更新する。
func (r *PostgresUserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = $2, updated_at = now() WHERE user_id = $1`,
		userID, at,
	)
	if err != nil {
		return fmt.Errorf("最終ログイン日時の更新に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
