package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresCredentialRepo はPostgreSQLを使用した認証情報リポジトリ。
type PostgresCredentialRepo struct {
	db *sql.DB
}

// NewPostgresCredentialRepo はPostgresCredentialRepoを生成する。
func NewPostgresCredentialRepo(db *sql.DB) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{db: db}
}

// FindByEmail はメールアドレスで認証情報を検索する。見つからない場合はnilを返す。
func (r *PostgresCredentialRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	cred := &model.Credential{}
	err := r.db.QueryRowContext(ctx,
		`SELECT subject_id, email, password_hash, first_name, last_name, requested_role, created_at
		 FROM credentials WHERE email = $1`,
		email,
	).Scan(
		&cred.SubjectID, &cred.Email, &cred.PasswordHash,
		&cred.FirstName, &cred.LastName, &cred.RequestedRole, &cred.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("認証情報の検索に失敗しました: %w", err)
	}

	return cred, nil
}

// FindBySubjectID は指定subjectの認証情報を取得する。見つからない場合はnilを返す。
func (r *PostgresCredentialRepo) FindBySubjectID(ctx context.Context, subjectID string) (*model.Credential, error) {
	cred := &model.Credential{}
	err := r.db.QueryRowContext(ctx,
		`SELECT subject_id, email, password_hash, first_name, last_name, requested_role, created_at
		 FROM credentials WHERE subject_id = $1`,
		subjectID,
	).Scan(
		&cred.SubjectID, &cred.Email, &cred.PasswordHash,
		&cred.FirstName, &cred.LastName, &cred.RequestedRole, &cred.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("認証情報の取得に失敗しました: %w", err)
	}

	return cred, nil
}

// Create は認証情報を作成する。メールアドレス重複時はmodel.ErrCodeEmailTakenの
// APIErrorを返す。
func (r *PostgresCredentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (subject_id, email, password_hash, first_name, last_name, requested_role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cred.SubjectID, cred.Email, cred.PasswordHash,
		cred.FirstName, cred.LastName, cred.RequestedRole, cred.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewEmailTakenError()
		}
		return fmt.Errorf("認証情報の作成に失敗しました: %w", err)
	}
	return nil
}

// isUniqueViolation はPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// compile-time interface check
var _ CredentialRepository = (*PostgresCredentialRepo)(nil)
