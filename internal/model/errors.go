// Package model はドメインモデルを定義する。
package model

import (
	"context"
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, hr, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード。
// エラー種別はこの閉じた集合で分類し、各ハンドリング箇所で網羅的に扱う。
const (
	ErrCodeTransientStore     = "TRANSIENT_STORE_ERROR"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeProvisioningFailed = "PROVISIONING_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeInsufficientLeave  = "INSUFFICIENT_LEAVE_BALANCE"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeDuplicateRecord    = "DUPLICATE_RECORD"
)

// NewTransientStoreError はデータストアの一時的エラーを生成する。
// 生のストアエラーはログのみに残し、ユーザーには汎用メッセージを返す。
func NewTransientStoreError() *APIError {
	return &APIError{
		Code:     ErrCodeTransientStore,
		Message:  "データの取得に失敗しました。",
		Category: "system",
		Action:   "接続状況を確認し、しばらく待ってから再度お試しください。",
	}
}

// NewTimeoutError は処理タイムアウトエラーを生成する。
func NewTimeoutError(operation string) *APIError {
	return &APIError{
		Code:     ErrCodeTimeout,
		Message:  fmt.Sprintf("処理がタイムアウトしました: %s", operation),
		Category: "system",
		Action:   "接続状況を確認し、再度お試しください。",
	}
}

// NewProvisioningError はアカウント初期化失敗エラーを生成する。
// tableには失敗したテーブル名（users / employees）を指定する。
func NewProvisioningError(table string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeProvisioningFailed,
		Message:  fmt.Sprintf("アカウントの初期設定に失敗しました（%s: %v）", table, cause),
		Category: "auth",
		Action:   "再度ログインしても解決しない場合はサポートに連絡してください。",
	}
}

// NewNotFoundError はレコード未検出エラーを生成する。
func NewNotFoundError(kind, id string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%sが見つかりません: %s", kind, id),
		Category: "hr",
		Action:   "IDを確認してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不存在とパスワード不一致は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "人事管理者に問い合わせてください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "http:// または https:// で始まる公開URLを入力してください。",
	}
}

// NewInsufficientLeaveError は休暇残日数不足エラーを生成する。
func NewInsufficientLeaveError(remaining, requested float64) *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientLeave,
		Message:  fmt.Sprintf("休暇残日数が不足しています（残%.1f日、申請%.1f日）。", remaining, requested),
		Category: "hr",
		Action:   "申請日数を減らすか、人事管理者に残日数の調整を依頼してください。",
	}
}

// NewInvalidTransitionError は不正な状態遷移エラーを生成する。
func NewInvalidTransitionError(from, to string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("この状態変更は許可されていません: %s → %s", from, to),
		Category: "hr",
		Action:   "現在の状態を確認してください。",
	}
}

// NewDuplicateRecordError はレコード重複エラーを生成する。
func NewDuplicateRecordError(kind string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateRecord,
		Message:  fmt.Sprintf("%sは既に登録されています。", kind),
		Category: "hr",
		Action:   "既存の記録を確認してください。",
	}
}

// IsTimeout はエラーがタイムアウト起因かどうかを判定する。
// コンテキストの期限超過と、APIErrorのタイムアウトコードの両方を検出する。
// ブートストラップのエラー分岐（タイムアウトはサインアウトしない）で使用する。
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrCodeTimeout
	}
	return false
}

// IsProvisioningFailure はエラーがプロビジョニング失敗かどうかを判定する。
func IsProvisioningFailure(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrCodeProvisioningFailed
	}
	return false
}
