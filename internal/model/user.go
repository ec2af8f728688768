// Package model はドメインモデルを定義する。
package model

import "time"

// Role はアプリケーション上のユーザー権限を表す。
type Role string

const (
	// RoleHRAdmin は人事管理者。管理ダッシュボード全体にアクセスできる。
	RoleHRAdmin Role = "HR_ADMIN"
	// RoleEmployee は一般従業員。セルフサービスポータルのみ利用できる。
	RoleEmployee Role = "EMPLOYEE"
)

// IsValid はRoleが定義済みの値かどうかを返す。
func (r Role) IsValid() bool {
	return r == RoleHRAdmin || r == RoleEmployee
}

// User は認証済みIdentityに対応するアプリケーションレベルのプロフィールを表す。
// UserIDは認証基盤のsubject IDと同一で、subjectごとに最大1行。
// 初回サインイン時に遅延プロビジョニングで作成される。
type User struct {
	UserID    string
	Email     string
	Role      Role
	IsActive  bool
	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential はメールアドレス＋パスワードの認証情報を表す。
// パスワードはbcryptハッシュのみを保持する。
type Credential struct {
	SubjectID    string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	// RequestedRole はサインアップ時に要求されたロール。
	// 未指定の場合、プロビジョニング時にEMPLOYEEへデフォルトされる。
	RequestedRole Role
	CreatedAt     time.Time
}

// Session はログインセッションを表す。
type Session struct {
	ID        string
	SubjectID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Notification はユーザー向け通知を表す。
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      string
	IsRead    bool
	CreatedAt time.Time
	ReadAt    *time.Time
}

// 通知タイプ。
const (
	NotificationTypeLeaveRequest = "LEAVE_REQUEST"
	NotificationTypePayroll      = "PAYROLL"
	NotificationTypeSystem       = "SYSTEM"
)
