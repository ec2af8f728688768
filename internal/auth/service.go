// Package auth はメール＋パスワード認証、セッション管理、
// アカウントの遅延プロビジョニングを提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// Metrics はサインイン結果とプロビジョニング失敗の記録先。
type Metrics interface {
	RecordSignInSuccess()
	RecordSignInFailure(reason string)
	RecordProvisioningFailure(table string)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）

	// ProfileQueryTimeout はusersテーブル照会の上限。超過時は最小プロフィールに縮退する。
	ProfileQueryTimeout time.Duration
	// EmployeeQueryTimeout はemployeesテーブル照会の上限。超過時は致命的エラー。
	EmployeeQueryTimeout time.Duration
	// RelationLookupTimeout は部署・職位・メール照会の上限。超過時は該当項目をnilのまま返す。
	RelationLookupTimeout time.Duration

	// Metrics はメトリクスの記録先。nilの場合は記録しない。
	Metrics Metrics
}

// Service は認証に関するビジネスロジックを提供する。
// 初回サインイン時にusersとemployeesの行を冪等に自動作成する。
type Service struct {
	credRepo     repository.CredentialRepository
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	employeeRepo repository.EmployeeRepository
	orgRepo      repository.OrgRepository
	events       *Broadcaster
	config       ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	credRepo repository.CredentialRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	employeeRepo repository.EmployeeRepository,
	orgRepo repository.OrgRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		credRepo:     credRepo,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		orgRepo:      orgRepo,
		events:       NewBroadcaster(),
		config:       config,
	}
}

// Events は認証イベントのブロードキャスターを返す。
func (s *Service) Events() *Broadcaster {
	return s.events
}

// SignUp は認証情報を作成する。usersとemployeesの行はこの時点では作成せず、
// 初回サインイン時のプロビジョニングに委ねる。
func (s *Service) SignUp(ctx context.Context, email, password, firstName, lastName string, requestedRole model.Role) (*model.Credential, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, model.NewValidationError("メールアドレスの形式が不正です")
	}
	if len(password) < 8 {
		return nil, model.NewValidationError("パスワードは8文字以上で入力してください")
	}
	if requestedRole == "" {
		requestedRole = model.RoleEmployee
	}
	if !requestedRole.IsValid() {
		return nil, model.NewValidationError("不明なロールが指定されました")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &model.Credential{
		SubjectID:     uuid.New().String(),
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     strings.TrimSpace(firstName),
		LastName:      strings.TrimSpace(lastName),
		RequestedRole: requestedRole,
		CreatedAt:     time.Now(),
	}

	if err := s.credRepo.Create(ctx, cred); err != nil {
		return nil, err
	}

	slog.Info("credential created",
		slog.String("subject_id", cred.SubjectID),
		slog.String("email", cred.Email),
	)
	return cred, nil
}

// SignIn は認証情報を検証し、セッションを発行する。
// サインイン成功後にアカウントのプロビジョニングを冪等に実行する。
// プロビジョニングに失敗した場合は発行済みセッションを破棄し、
// 失敗したテーブル名を含む致命的エラーを返す。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	cred, err := s.credRepo.FindByEmail(ctx, email)
	if err != nil {
		s.recordSignInFailure("store_error")
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	if cred == nil {
		s.recordSignInFailure("invalid_credentials")
		return nil, model.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.recordSignInFailure("invalid_credentials")
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, cred.SubjectID)
	if err != nil {
		s.recordSignInFailure("session_error")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.ensureAccountRecords(ctx, cred); err != nil {
		s.recordSignInFailure("provisioning_failed")
		// プロビジョニング失敗時は認証済み状態を残さない
		if delErr := s.sessionRepo.DeleteByID(ctx, session.ID); delErr != nil {
			slog.Error("failed to roll back session after provisioning failure",
				slog.String("session_id", session.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, err
	}

	// 最終ログイン日時の更新失敗はサインインを妨げない
	if err := s.userRepo.UpdateLastLogin(ctx, cred.SubjectID, time.Now()); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", cred.SubjectID),
			slog.String("error", err.Error()),
		)
	}

	if s.config.Metrics != nil {
		s.config.Metrics.RecordSignInSuccess()
	}
	slog.Info("user signed in", slog.String("subject_id", cred.SubjectID))
	s.events.Publish(Event{
		Kind:      EventSignedIn,
		SessionID: session.ID,
		SubjectID: cred.SubjectID,
		At:        time.Now(),
	})
	return session, nil
}

// ensureAccountRecords はusersとemployeesの行を冪等に作成する。
// 各テーブルについて存在確認の後に挿入を試みる。挿入はON CONFLICT DO NOTHINGで
// 行われるため、同時サインインで両方が挿入を試みても一方が静かに譲る。
// 存在確認そのものの失敗は一時的なストア障害とみなし、警告を残して
// 挿入へ進む。挿入の失敗のみプロビジョニングエラーとして扱う。
func (s *Service) ensureAccountRecords(ctx context.Context, cred *model.Credential) error {
	user, err := s.userRepo.FindByID(ctx, cred.SubjectID)
	if err != nil {
		slog.Warn("user profile lookup failed, attempting insert anyway",
			slog.String("user_id", cred.SubjectID),
			slog.String("error", err.Error()),
		)
	}
	if user == nil {
		role := cred.RequestedRole
		if !role.IsValid() {
			role = model.RoleEmployee
		}
		now := time.Now()
		created, err := s.userRepo.Insert(ctx, &model.User{
			UserID:    cred.SubjectID,
			Email:     cred.Email,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			s.recordProvisioningFailure("users")
			return model.NewProvisioningError("users", err)
		}
		if created {
			slog.Info("user profile provisioned",
				slog.String("user_id", cred.SubjectID),
				slog.String("role", string(role)),
			)
		}
	}

	employee, err := s.employeeRepo.FindByUserID(ctx, cred.SubjectID)
	if err != nil {
		slog.Warn("employee record lookup failed, attempting insert anyway",
			slog.String("user_id", cred.SubjectID),
			slog.String("error", err.Error()),
		)
	}
	if employee == nil {
		now := time.Now()
		userID := cred.SubjectID
		created, err := s.employeeRepo.Insert(ctx, &model.Employee{
			EmployeeID:       uuid.New().String(),
			UserID:           &userID,
			FirstName:        cred.FirstName,
			LastName:         cred.LastName,
			EmployeeCode:     generateEmployeeCode(),
			JoinDate:         now,
			EmploymentStatus: model.EmploymentActive,
			EmploymentType:   model.EmploymentFullTime,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			s.recordProvisioningFailure("employees")
			return model.NewProvisioningError("employees", err)
		}
		if created {
			slog.Info("employee record provisioned", slog.String("user_id", cred.SubjectID))
		}
	}

	return nil
}

func (s *Service) recordSignInFailure(reason string) {
	if s.config.Metrics != nil {
		s.config.Metrics.RecordSignInFailure(reason)
	}
}

func (s *Service) recordProvisioningFailure(table string) {
	if s.config.Metrics != nil {
		s.config.Metrics.RecordProvisioningFailure(table)
	}
}

// generateEmployeeCode は従業員コードを生成する。
// UUID先頭8文字の大文字表記をサフィックスとして使い、
// 時刻ベースの採番と異なり同時生成でも衝突しない。
func generateEmployeeCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "EMP-" + suffix
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find session: %w", err)
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	event := Event{Kind: EventSignedOut, SessionID: sessionID, At: time.Now()}
	if session != nil {
		event.SubjectID = session.SubjectID
	}
	slog.Info("user signed out", slog.String("session_id", sessionID))
	s.events.Publish(event)
	return nil
}

// GetSession は指定IDのセッションを取得する。存在しない・期限切れの場合はnilを返す。
func (s *Service) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// GetCurrentIdentity はセッションに対応する認証情報を取得する。
// セッションが無効な場合はnilを返す。
func (s *Service) GetCurrentIdentity(ctx context.Context, sessionID string) (*model.Credential, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	cred, err := s.credRepo.FindBySubjectID(ctx, session.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return cred, nil
}

// GetCurrentUser はセッションから現在のユーザープロフィールを取得する。
// usersテーブルの照会はProfileQueryTimeoutで打ち切り、タイムアウトまたは
// 一時的な失敗の場合はEMPLOYEEロールの最小プロフィールに縮退する。
// 未認証の場合はnilを返す。全体の時間予算は呼び出し側のctxが持つ。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.ProfileQueryTimeout)
	defer cancel()

	user, err := s.userRepo.FindByID(queryCtx, session.SubjectID)
	if err != nil {
		// 呼び出し側の予算超過はそのまま伝播する
		if ctx.Err() != nil {
			return nil, model.NewTimeoutError("load-user")
		}
		slog.Warn("profile query degraded to minimal profile",
			slog.String("user_id", session.SubjectID),
			slog.String("error", err.Error()),
		)
		return s.minimalProfile(ctx, session.SubjectID), nil
	}
	if user == nil {
		// プロフィール行が存在しない。プロビジョニング前のセッションか、
		// 行が削除された状態。呼び出し側でサインアウトを判断する。
		return nil, nil
	}

	return user, nil
}

// minimalProfile は縮退時の最小プロフィールを構築する。
// メールアドレスは認証情報から補完を試み、失敗時は空のままにする。
func (s *Service) minimalProfile(ctx context.Context, subjectID string) *model.User {
	user := &model.User{
		UserID:   subjectID,
		Role:     model.RoleEmployee,
		IsActive: true,
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.config.RelationLookupTimeout)
	defer cancel()
	if cred, err := s.credRepo.FindBySubjectID(lookupCtx, subjectID); err == nil && cred != nil {
		user.Email = cred.Email
	}
	return user
}

// GetCurrentEmployee はセッションから現在の従業員プロフィールを取得する。
// employeesテーブルの照会はEmployeeQueryTimeoutで打ち切り、タイムアウト時は
// 致命的エラーを返す。部署・職位・メールの照会はRelationLookupTimeoutで
// 打ち切り、失敗しても該当項目をnil（メールは認証情報の値）のまま返す。
func (s *Service) GetCurrentEmployee(ctx context.Context, sessionID string) (*model.EmployeeProfile, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	empCtx, cancel := context.WithTimeout(ctx, s.config.EmployeeQueryTimeout)
	employee, err := s.employeeRepo.FindByUserID(empCtx, session.SubjectID)
	cancel()
	if err != nil {
		if model.IsTimeout(err) || empCtx.Err() == context.DeadlineExceeded {
			return nil, model.NewTimeoutError("employee-query")
		}
		return nil, model.NewTransientStoreError()
	}
	if employee == nil {
		return nil, nil
	}

	profile := &model.EmployeeProfile{Employee: *employee}

	if employee.DepartmentID != nil {
		deptCtx, cancel := context.WithTimeout(ctx, s.config.RelationLookupTimeout)
		if dept, err := s.orgRepo.FindDepartmentByID(deptCtx, *employee.DepartmentID); err == nil {
			profile.Department = dept
		} else {
			slog.Warn("department lookup degraded",
				slog.String("employee_id", employee.EmployeeID),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}

	if employee.PositionID != nil {
		posCtx, cancel := context.WithTimeout(ctx, s.config.RelationLookupTimeout)
		if pos, err := s.orgRepo.FindPositionByID(posCtx, *employee.PositionID); err == nil {
			profile.Position = pos
		} else {
			slog.Warn("position lookup degraded",
				slog.String("employee_id", employee.EmployeeID),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}

	emailCtx, cancel := context.WithTimeout(ctx, s.config.RelationLookupTimeout)
	user, userErr := s.userRepo.FindByID(emailCtx, session.SubjectID)
	cancel()
	if userErr == nil && user != nil {
		profile.Email = user.Email
	} else {
		// フォールバックにも1回分の照会予算を与える。前段がタイムアウトで
		// 予算を使い切っていても、こちらは独立して試行できる。
		credCtx, cancel := context.WithTimeout(ctx, s.config.RelationLookupTimeout)
		if cred, err := s.credRepo.FindBySubjectID(credCtx, session.SubjectID); err == nil && cred != nil {
			profile.Email = cred.Email
		}
		cancel()
	}

	return profile, nil
}

// RefreshToken はセッションの有効期限を延長し、TOKEN_REFRESHEDイベントを配信する。
// 購読側の状態は変化しない。
func (s *Service) RefreshToken(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return model.NewUnauthorizedError()
	}

	expiresAt := time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second)
	if err := s.sessionRepo.ExtendExpiry(ctx, sessionID, expiresAt); err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}

	s.events.Publish(Event{
		Kind:      EventTokenRefreshed,
		SessionID: sessionID,
		SubjectID: session.SubjectID,
		At:        time.Now(),
	})
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, subjectID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		SubjectID: subjectID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
