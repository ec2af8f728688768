package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/teamify/internal/model"
)

func testConfig() ServiceConfig {
	return ServiceConfig{
		SessionMaxAge:         86400,
		ProfileQueryTimeout:   5 * time.Second,
		EmployeeQueryTimeout:  5 * time.Second,
		RelationLookupTimeout: 2 * time.Second,
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(h)
}

// --- SignUp ---

func TestSignUp_CreatesCredentialWithHashedPassword(t *testing.T) {
	var saved *model.Credential
	credRepo := &mockCredentialRepo{
		createFn: func(_ context.Context, cred *model.Credential) error {
			saved = cred
			return nil
		},
	}
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	cred, err := svc.SignUp(context.Background(), "Taro@Example.com", "password123", "太郎", "山田", model.RoleEmployee)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if saved == nil {
		t.Fatal("credential was not saved")
	}
	if cred.Email != "taro@example.com" {
		t.Errorf("email = %q, want lowercased %q", cred.Email, "taro@example.com")
	}
	if cred.PasswordHash == "password123" {
		t.Error("password was stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not verify against original password: %v", err)
	}
	if cred.SubjectID == "" {
		t.Error("subject ID was not assigned")
	}
}

func TestSignUp_ValidationErrors(t *testing.T) {
	svc := NewService(&mockCredentialRepo{}, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	tests := []struct {
		name     string
		email    string
		password string
		role     model.Role
	}{
		{"メール形式不正", "not-an-email", "password123", model.RoleEmployee},
		{"空メール", "", "password123", model.RoleEmployee},
		{"短いパスワード", "a@example.com", "short", model.RoleEmployee},
		{"不明なロール", "a@example.com", "password123", model.Role("SUPERUSER")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.email, tt.password, "", "", tt.role)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSignUp_DefaultsRoleToEmployee(t *testing.T) {
	var saved *model.Credential
	credRepo := &mockCredentialRepo{
		createFn: func(_ context.Context, cred *model.Credential) error {
			saved = cred
			return nil
		},
	}
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	if _, err := svc.SignUp(context.Background(), "a@example.com", "password123", "", "", ""); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if saved.RequestedRole != model.RoleEmployee {
		t.Errorf("requested role = %q, want EMPLOYEE", saved.RequestedRole)
	}
}

// --- SignIn ---

func TestSignIn_InvalidCredentials(t *testing.T) {
	hash := hashOf(t, "correct-password")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.Credential, error) {
			if email == "known@example.com" {
				return &model.Credential{SubjectID: "subj-1", Email: email, PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	// 未知のメールアドレス
	if _, err := svc.SignIn(context.Background(), "unknown@example.com", "whatever"); err == nil {
		t.Error("expected error for unknown email")
	}

	// パスワード不一致
	_, err := svc.SignIn(context.Background(), "known@example.com", "wrong-password")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("expected invalid credentials error, got %v", err)
	}
}

func TestSignIn_FirstLogin_ProvisionsUserAndEmployee(t *testing.T) {
	hash := hashOf(t, "password123")
	cred := &model.Credential{
		SubjectID:     "subj-1",
		Email:         "taro@example.com",
		PasswordHash:  hash,
		FirstName:     "太郎",
		LastName:      "山田",
		RequestedRole: model.RoleHRAdmin,
	}
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return cred, nil
		},
	}

	var insertedUser *model.User
	userRepo := &mockUserRepo{
		insertFn: func(_ context.Context, user *model.User) (bool, error) {
			insertedUser = user
			return true, nil
		},
	}
	var insertedEmployee *model.Employee
	employeeRepo := &mockEmployeeRepo{
		insertFn: func(_ context.Context, emp *model.Employee) (bool, error) {
			insertedEmployee = emp
			return true, nil
		},
	}

	svc := NewService(credRepo, &mockSessionRepo{}, userRepo, employeeRepo, &mockOrgRepo{}, testConfig())

	session, err := svc.SignIn(context.Background(), "taro@example.com", "password123")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if session == nil || session.SubjectID != "subj-1" {
		t.Fatalf("session = %+v, want subject subj-1", session)
	}

	if insertedUser == nil {
		t.Fatal("user profile was not provisioned")
	}
	if insertedUser.Role != model.RoleHRAdmin {
		t.Errorf("provisioned role = %q, want requested HR_ADMIN", insertedUser.Role)
	}
	if !insertedUser.IsActive {
		t.Error("provisioned user should be active")
	}

	if insertedEmployee == nil {
		t.Fatal("employee record was not provisioned")
	}
	if insertedEmployee.UserID == nil || *insertedEmployee.UserID != "subj-1" {
		t.Errorf("employee user_id = %v, want subj-1", insertedEmployee.UserID)
	}
	if !strings.HasPrefix(insertedEmployee.EmployeeCode, "EMP-") {
		t.Errorf("employee code = %q, want EMP- prefix", insertedEmployee.EmployeeCode)
	}
	if len(insertedEmployee.EmployeeCode) != len("EMP-")+8 {
		t.Errorf("employee code = %q, want 8-char suffix", insertedEmployee.EmployeeCode)
	}
	if insertedEmployee.EmploymentStatus != model.EmploymentActive {
		t.Errorf("employment status = %q, want ACTIVE", insertedEmployee.EmploymentStatus)
	}
	if insertedEmployee.JoinDate.IsZero() {
		t.Error("join date was not set")
	}
}

func TestSignIn_SecondLogin_IsIdempotent(t *testing.T) {
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	userInserts := 0
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return &model.User{UserID: "subj-1", Role: model.RoleEmployee, IsActive: true}, nil
		},
		insertFn: func(_ context.Context, _ *model.User) (bool, error) {
			userInserts++
			return true, nil
		},
	}
	employeeInserts := 0
	employeeRepo := &mockEmployeeRepo{
		findByUserIDFn: func(_ context.Context, _ string) (*model.Employee, error) {
			return &model.Employee{EmployeeID: "emp-1"}, nil
		},
		insertFn: func(_ context.Context, _ *model.Employee) (bool, error) {
			employeeInserts++
			return true, nil
		},
	}

	svc := NewService(credRepo, &mockSessionRepo{}, userRepo, employeeRepo, &mockOrgRepo{}, testConfig())

	if _, err := svc.SignIn(context.Background(), "a@example.com", "password123"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if userInserts != 0 {
		t.Errorf("user inserts = %d, want 0 on repeat login", userInserts)
	}
	if employeeInserts != 0 {
		t.Errorf("employee inserts = %d, want 0 on repeat login", employeeInserts)
	}
}

func TestSignIn_ProvisioningFailure_RollsBackSession(t *testing.T) {
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	deletedSessions := []string{}
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(_ context.Context, id string) error {
			deletedSessions = append(deletedSessions, id)
			return nil
		},
	}
	employeeRepo := &mockEmployeeRepo{
		insertFn: func(_ context.Context, _ *model.Employee) (bool, error) {
			return false, errors.New("connection reset")
		},
	}

	svc := NewService(credRepo, sessionRepo, &mockUserRepo{}, employeeRepo, &mockOrgRepo{}, testConfig())

	_, err := svc.SignIn(context.Background(), "a@example.com", "password123")
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	if !model.IsProvisioningFailure(err) {
		t.Errorf("expected provisioning failure, got %v", err)
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if !strings.Contains(apiErr.Message, "employees") {
			t.Errorf("error message %q should name the failed table", apiErr.Message)
		}
	}
	if len(deletedSessions) != 1 {
		t.Errorf("deleted sessions = %d, want 1 (rollback)", len(deletedSessions))
	}
}

func TestSignIn_LookupFailure_ProceedsToInsert(t *testing.T) {
	// 存在確認の一時的な失敗はサインインを止めない。
	// 挿入はON CONFLICT DO NOTHINGなので重複しても安全。
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	userInserts := 0
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
		insertFn: func(_ context.Context, _ *model.User) (bool, error) {
			userInserts++
			return false, nil
		},
	}
	employeeInserts := 0
	employeeRepo := &mockEmployeeRepo{
		findByUserIDFn: func(_ context.Context, _ string) (*model.Employee, error) {
			return nil, errors.New("connection refused")
		},
		insertFn: func(_ context.Context, _ *model.Employee) (bool, error) {
			employeeInserts++
			return false, nil
		},
	}

	svc := NewService(credRepo, &mockSessionRepo{}, userRepo, employeeRepo, &mockOrgRepo{}, testConfig())

	if _, err := svc.SignIn(context.Background(), "a@example.com", "password123"); err != nil {
		t.Fatalf("SignIn should survive lookup failures, got %v", err)
	}
	if userInserts != 1 {
		t.Errorf("user inserts = %d, want 1 (insert attempted despite lookup failure)", userInserts)
	}
	if employeeInserts != 1 {
		t.Errorf("employee inserts = %d, want 1 (insert attempted despite lookup failure)", employeeInserts)
	}
}

func TestSignIn_LastLoginFailure_IsTolerated(t *testing.T) {
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return &model.User{UserID: "subj-1"}, nil
		},
		updateLastLoginFn: func(_ context.Context, _ string, _ time.Time) error {
			return errors.New("write timeout")
		},
	}
	employeeRepo := &mockEmployeeRepo{
		findByUserIDFn: func(_ context.Context, _ string) (*model.Employee, error) {
			return &model.Employee{EmployeeID: "emp-1"}, nil
		},
	}

	svc := NewService(credRepo, &mockSessionRepo{}, userRepo, employeeRepo, &mockOrgRepo{}, testConfig())

	if _, err := svc.SignIn(context.Background(), "a@example.com", "password123"); err != nil {
		t.Errorf("SignIn should tolerate last_login failure, got %v", err)
	}
}

func TestSignIn_PublishesSignedInEvent(t *testing.T) {
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	events, unsubscribe := svc.Events().Subscribe()
	defer unsubscribe()

	if _, err := svc.SignIn(context.Background(), "a@example.com", "password123"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != EventSignedIn {
			t.Errorf("event kind = %q, want SIGNED_IN", ev.Kind)
		}
		if ev.SubjectID != "subj-1" {
			t.Errorf("event subject = %q, want subj-1", ev.SubjectID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSignIn_RecordsSuccessMetric(t *testing.T) {
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	metrics := &mockMetrics{}
	cfg := testConfig()
	cfg.Metrics = metrics
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, cfg)

	if _, err := svc.SignIn(context.Background(), "a@example.com", "password123"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if metrics.successCount != 1 {
		t.Errorf("success count = %d, want 1", metrics.successCount)
	}
	if len(metrics.failureReasons) != 0 {
		t.Errorf("failure reasons = %v, want none", metrics.failureReasons)
	}
}

func TestSignIn_RecordsFailureMetricWithReason(t *testing.T) {
	hash := hashOf(t, "correct-password")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	metrics := &mockMetrics{}
	cfg := testConfig()
	cfg.Metrics = metrics
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, cfg)

	if _, err := svc.SignIn(context.Background(), "a@example.com", "wrong-password"); err == nil {
		t.Fatal("expected invalid credentials error")
	}
	if len(metrics.failureReasons) != 1 || metrics.failureReasons[0] != "invalid_credentials" {
		t.Errorf("failure reasons = %v, want [invalid_credentials]", metrics.failureReasons)
	}
	if metrics.successCount != 0 {
		t.Errorf("success count = %d, want 0", metrics.successCount)
	}
}

func TestSignIn_RecordsProvisioningFailureMetric(t *testing.T) {
	hash := hashOf(t, "password123")
	credRepo := &mockCredentialRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com", PasswordHash: hash}, nil
		},
	}
	employeeRepo := &mockEmployeeRepo{
		insertFn: func(_ context.Context, _ *model.Employee) (bool, error) {
			return false, errors.New("connection reset")
		},
	}
	metrics := &mockMetrics{}
	cfg := testConfig()
	cfg.Metrics = metrics
	svc := NewService(credRepo, &mockSessionRepo{}, &mockUserRepo{}, employeeRepo, &mockOrgRepo{}, cfg)

	if _, err := svc.SignIn(context.Background(), "a@example.com", "password123"); err == nil {
		t.Fatal("expected provisioning error")
	}
	if len(metrics.failedTables) != 1 || metrics.failedTables[0] != "employees" {
		t.Errorf("failed tables = %v, want [employees]", metrics.failedTables)
	}
	if len(metrics.failureReasons) != 1 || metrics.failureReasons[0] != "provisioning_failed" {
		t.Errorf("failure reasons = %v, want [provisioning_failed]", metrics.failureReasons)
	}
}

// --- GetCurrentIdentity ---

func TestGetCurrentIdentity_ReturnsCredentialForSession(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			if id == "sess-1" {
				return &model.Session{ID: id, SubjectID: "subj-1"}, nil
			}
			return nil, nil
		},
	}
	credRepo := &mockCredentialRepo{
		findBySubjectIDFn: func(_ context.Context, subjectID string) (*model.Credential, error) {
			return &model.Credential{SubjectID: subjectID, Email: "taro@example.com"}, nil
		},
	}
	svc := NewService(credRepo, sessionRepo, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	cred, err := svc.GetCurrentIdentity(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentIdentity failed: %v", err)
	}
	if cred == nil || cred.Email != "taro@example.com" {
		t.Errorf("credential = %+v, want taro@example.com", cred)
	}
}

func TestGetCurrentIdentity_InvalidSession_ReturnsNil(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Session, error) {
			return nil, nil
		},
	}
	svc := NewService(&mockCredentialRepo{}, sessionRepo, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	cred, err := svc.GetCurrentIdentity(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("GetCurrentIdentity failed: %v", err)
	}
	if cred != nil {
		t.Errorf("credential = %+v, want nil for invalid session", cred)
	}
}

// --- SignOut ---

func TestSignOut_DeletesSessionAndPublishesEvent(t *testing.T) {
	deleted := ""
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
		deleteByIDFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewService(&mockCredentialRepo{}, sessionRepo, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	events, unsubscribe := svc.Events().Subscribe()
	defer unsubscribe()

	if err := svc.SignOut(context.Background(), "sess-1"); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("deleted session = %q, want sess-1", deleted)
	}

	select {
	case ev := <-events:
		if ev.Kind != EventSignedOut {
			t.Errorf("event kind = %q, want SIGNED_OUT", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSignOut_EmptySessionID(t *testing.T) {
	svc := NewService(&mockCredentialRepo{}, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())
	if err := svc.SignOut(context.Background(), ""); err == nil {
		t.Error("expected error for empty session ID")
	}
}

// --- GetCurrentUser ---

func TestGetCurrentUser_NoSession_ReturnsNil(t *testing.T) {
	svc := NewService(&mockCredentialRepo{}, &mockSessionRepo{}, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	user, err := svc.GetCurrentUser(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil for missing session", user)
	}
}

func TestGetCurrentUser_ProfileQueryFailure_DegradesToMinimalProfile(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	credRepo := &mockCredentialRepo{
		findBySubjectIDFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "taro@example.com"}, nil
		},
	}
	svc := NewService(credRepo, sessionRepo, userRepo, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	user, err := svc.GetCurrentUser(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentUser should degrade, got error: %v", err)
	}
	if user == nil {
		t.Fatal("expected minimal profile, got nil")
	}
	if user.Role != model.RoleEmployee {
		t.Errorf("minimal profile role = %q, want EMPLOYEE", user.Role)
	}
	if user.UserID != "subj-1" {
		t.Errorf("minimal profile user_id = %q, want subj-1", user.UserID)
	}
	if user.Email != "taro@example.com" {
		t.Errorf("minimal profile email = %q, want credential email", user.Email)
	}
}

func TestGetCurrentUser_ProfileQueryTimeout_DegradesToMinimalProfile(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, _ string) (*model.User, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	cfg := testConfig()
	cfg.ProfileQueryTimeout = 10 * time.Millisecond
	cfg.RelationLookupTimeout = 10 * time.Millisecond
	svc := NewService(&mockCredentialRepo{}, sessionRepo, userRepo, &mockEmployeeRepo{}, &mockOrgRepo{}, cfg)

	user, err := svc.GetCurrentUser(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentUser should degrade on query timeout, got %v", err)
	}
	if user == nil || user.Role != model.RoleEmployee {
		t.Errorf("expected minimal EMPLOYEE profile, got %+v", user)
	}
}

func TestGetCurrentUser_NilProfile_ReturnsNilWithoutError(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	svc := NewService(&mockCredentialRepo{}, sessionRepo, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	user, err := svc.GetCurrentUser(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil when profile row is absent", user)
	}
}

// --- GetCurrentEmployee ---

func TestGetCurrentEmployee_QueryTimeout_IsFatal(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	employeeRepo := &mockEmployeeRepo{
		findByUserIDFn: func(ctx context.Context, _ string) (*model.Employee, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	cfg := testConfig()
	cfg.EmployeeQueryTimeout = 10 * time.Millisecond
	svc := NewService(&mockCredentialRepo{}, sessionRepo, &mockUserRepo{}, employeeRepo, &mockOrgRepo{}, cfg)

	_, err := svc.GetCurrentEmployee(context.Background(), "sess-1")
	if err == nil {
		t.Fatal("expected fatal timeout error")
	}
	if !model.IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestGetCurrentEmployee_RelationLookupFailure_DegradesGracefully(t *testing.T) {
	deptID := "dept-1"
	posID := "pos-1"
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	employeeRepo := &mockEmployeeRepo{
		findByUserIDFn: func(_ context.Context, _ string) (*model.Employee, error) {
			return &model.Employee{
				EmployeeID:   "emp-1",
				DepartmentID: &deptID,
				PositionID:   &posID,
			}, nil
		},
	}
	orgRepo := &mockOrgRepo{
		findDepartmentByIDFn: func(_ context.Context, _ string) (*model.Department, error) {
			return nil, errors.New("lookup timeout")
		},
		findPositionByIDFn: func(_ context.Context, id string) (*model.Position, error) {
			return &model.Position{PositionID: id, PositionTitle: "エンジニア"}, nil
		},
	}
	credRepo := &mockCredentialRepo{
		findBySubjectIDFn: func(_ context.Context, _ string) (*model.Credential, error) {
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com"}, nil
		},
	}

	svc := NewService(credRepo, sessionRepo, &mockUserRepo{}, employeeRepo, orgRepo, testConfig())

	profile, err := svc.GetCurrentEmployee(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentEmployee should degrade, got %v", err)
	}
	if profile == nil {
		t.Fatal("expected profile")
	}
	if profile.Department != nil {
		t.Error("department should be nil after failed lookup")
	}
	if profile.Position == nil || profile.Position.PositionTitle != "エンジニア" {
		t.Errorf("position = %+v, want エンジニア", profile.Position)
	}
	if profile.Email != "a@example.com" {
		t.Errorf("email = %q, want credential fallback", profile.Email)
	}
}

func TestGetCurrentEmployee_EmailFallback_GetsFreshTimeout(t *testing.T) {
	// ユーザー照会が予算を使い切っても、認証情報へのフォールバックは
	// 独立した予算で試行される。
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	employeeRepo := &mockEmployeeRepo{
		findByUserIDFn: func(_ context.Context, _ string) (*model.Employee, error) {
			return &model.Employee{EmployeeID: "emp-1"}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, _ string) (*model.User, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	fallbackCtxExpired := false
	credRepo := &mockCredentialRepo{
		findBySubjectIDFn: func(ctx context.Context, _ string) (*model.Credential, error) {
			fallbackCtxExpired = ctx.Err() != nil
			return &model.Credential{SubjectID: "subj-1", Email: "a@example.com"}, nil
		},
	}
	cfg := testConfig()
	cfg.RelationLookupTimeout = 20 * time.Millisecond
	svc := NewService(credRepo, sessionRepo, userRepo, employeeRepo, &mockOrgRepo{}, cfg)

	profile, err := svc.GetCurrentEmployee(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentEmployee failed: %v", err)
	}
	if fallbackCtxExpired {
		t.Error("fallback lookup ran with an already-expired context")
	}
	if profile.Email != "a@example.com" {
		t.Errorf("email = %q, want credential fallback", profile.Email)
	}
}

func TestGetCurrentEmployee_NoEmployee_ReturnsNil(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
	}
	svc := NewService(&mockCredentialRepo{}, sessionRepo, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	profile, err := svc.GetCurrentEmployee(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentEmployee failed: %v", err)
	}
	if profile != nil {
		t.Errorf("profile = %+v, want nil", profile)
	}
}

// --- RefreshToken ---

func TestRefreshToken_ExtendsSessionAndPublishesEvent(t *testing.T) {
	extended := false
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, SubjectID: "subj-1"}, nil
		},
		extendExpiryFn: func(_ context.Context, _ string, expiresAt time.Time) error {
			if !expiresAt.After(time.Now()) {
				t.Error("new expiry should be in the future")
			}
			extended = true
			return nil
		},
	}
	svc := NewService(&mockCredentialRepo{}, sessionRepo, &mockUserRepo{}, &mockEmployeeRepo{}, &mockOrgRepo{}, testConfig())

	events, unsubscribe := svc.Events().Subscribe()
	defer unsubscribe()

	if err := svc.RefreshToken(context.Background(), "sess-1"); err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if !extended {
		t.Error("session expiry was not extended")
	}

	select {
	case ev := <-events:
		if ev.Kind != EventTokenRefreshed {
			t.Errorf("event kind = %q, want TOKEN_REFRESHED", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

// --- 従業員コード ---

func TestGenerateEmployeeCode_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateEmployeeCode()
		if !strings.HasPrefix(code, "EMP-") {
			t.Fatalf("code = %q, want EMP- prefix", code)
		}
		suffix := strings.TrimPrefix(code, "EMP-")
		if len(suffix) != 8 {
			t.Fatalf("suffix = %q, want 8 chars", suffix)
		}
		if suffix != strings.ToUpper(suffix) {
			t.Fatalf("suffix = %q, want upper case", suffix)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}
