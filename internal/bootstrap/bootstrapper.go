// Package bootstrap はクライアントセッション単位の認証状態確立を提供する。
//
// Bootstrapperは接続ごとに1つ生成され、初期ロード・上限タイマー・
// 認証イベントを単一のイベントループで直列に処理して表示状態を組み立てる。
package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/teamify/internal/auth"
	"github.com/hitoshi/teamify/internal/model"
)

// Role は表示用のロール区分を表す。
type Role string

const (
	// RoleHR は管理ダッシュボードを表示するロール。
	RoleHR Role = "hr"
	// RoleEmployee はセルフサービスポータルを表示するロール。
	RoleEmployee Role = "employee"
	// RoleNone は未認証状態。
	RoleNone Role = ""
)

// ViewState はクライアントに提示する認証状態を表す。
type ViewState struct {
	IsAuthenticated bool
	IsLoading       bool
	CurrentUser     *model.User
	Role            Role
	// Message はタイムアウト警告・エラーの説明。正常時は空。
	Message string
}

// AuthService はBootstrapperが必要とする認証サービスの操作。
type AuthService interface {
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
	SignOut(ctx context.Context, sessionID string) error
	Events() *auth.Broadcaster
}

// LatencyRecorder は初期ロード所要時間の記録先。
type LatencyRecorder interface {
	RecordBootstrapLatency(duration time.Duration)
}

// Config はBootstrapperのタイムアウト設定。
type Config struct {
	// MountTimeout は初期ロードの上限。超過時は進行中のロードを取り消し、
	// 未認証状態へ強制的に遷移する。
	MountTimeout time.Duration
	// LoadTimeout はユーザー読込手続き全体の時間予算。
	LoadTimeout time.Duration

	// Metrics は初期ロードのレイテンシ記録先。nilの場合は記録しない。
	Metrics LatencyRecorder
}

// loadResult はロードゴルーチンからイベントループへ渡される結果。
type loadResult struct {
	generation int
	hadSession bool
	user       *model.User
	err        error
}

// Bootstrapper は1つのクライアントセッションの認証状態を管理する。
type Bootstrapper struct {
	auth      AuthService
	sessionID string
	config    Config

	mu         sync.Mutex
	state      ViewState
	generation int
	loadCancel context.CancelFunc

	// signedOutForNilProfile はnullプロフィールによるサインアウトを
	// 1回に制限する。再サインインで解除される。
	signedOutForNilProfile bool

	updates chan ViewState
}

// New はBootstrapperを生成する。sessionIDは接続時のCookieから得た値で、
// 空の場合は未認証から開始しSIGNED_INイベントでセッションを採用する。
func New(authSvc AuthService, sessionID string, config Config) *Bootstrapper {
	if config.MountTimeout <= 0 {
		config.MountTimeout = 5 * time.Second
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = 12 * time.Second
	}
	return &Bootstrapper{
		auth:      authSvc,
		sessionID: sessionID,
		config:    config,
		state:     ViewState{IsLoading: true},
		updates:   make(chan ViewState, 16),
	}
}

// recordLatency は初期ロードの所要時間を記録する。
func (b *Bootstrapper) recordLatency(started time.Time) {
	if b.config.Metrics != nil {
		b.config.Metrics.RecordBootstrapLatency(time.Since(started))
	}
}

// Snapshot は現在の表示状態のコピーを返す。
func (b *Bootstrapper) Snapshot() ViewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Updates は状態変化のストリームを返す。受信が追いつかない場合は
// 古い状態が破棄され、最新の状態が優先される。
func (b *Bootstrapper) Updates() <-chan ViewState {
	return b.updates
}

// Run はイベントループを実行する。ctxの終了まで戻らない。
// 呼び出し側がゴルーチンで起動する。
func (b *Bootstrapper) Run(ctx context.Context) {
	events, unsubscribe := b.auth.Events().Subscribe()
	defer unsubscribe()

	ceiling := time.NewTimer(b.config.MountTimeout)
	defer ceiling.Stop()

	started := time.Now()
	results := make(chan loadResult, 4)
	b.beginLoad(ctx, results)

	settled := false
	for {
		select {
		case <-ctx.Done():
			b.cancelInFlightLoad()
			return

		case <-ceiling.C:
			// 上限超過: 進行中のロードを取り消し、結果は世代番号で破棄される。
			// サインアウトは行わない。
			if !settled {
				settled = true
				b.recordLatency(started)
			}
			b.cancelInFlightLoad()
			b.forceUnauthenticatedIfLoading("認証状態の確認がタイムアウトしました")

		case res := <-results:
			if !settled {
				ceiling.Stop()
				settled = true
				b.recordLatency(started)
			}
			b.applyLoadResult(ctx, res)

		case ev, ok := <-events:
			if !ok {
				return
			}
			b.handleEvent(ctx, ev, results)
		}
	}
}

// beginLoad は新しい世代番号でロードを開始する。
// 前のロードが進行中でも取り消さずに世代番号で結果を無効化する。
func (b *Bootstrapper) beginLoad(parent context.Context, results chan<- loadResult) {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.state.IsLoading = true
	b.state.Message = ""
	sessionID := b.sessionID
	b.mu.Unlock()
	b.notify()

	loadCtx, cancel := context.WithTimeout(parent, b.config.LoadTimeout)
	b.mu.Lock()
	b.loadCancel = cancel
	b.mu.Unlock()

	go func() {
		defer cancel()

		if sessionID == "" {
			b.sendResult(loadCtx, results, loadResult{generation: gen})
			return
		}

		session, err := b.auth.GetSession(loadCtx, sessionID)
		if err != nil {
			b.sendResult(loadCtx, results, loadResult{generation: gen, err: err})
			return
		}
		if session == nil {
			b.sendResult(loadCtx, results, loadResult{generation: gen})
			return
		}

		user, err := b.auth.GetCurrentUser(loadCtx, sessionID)
		b.sendResult(loadCtx, results, loadResult{
			generation: gen,
			hadSession: true,
			user:       user,
			err:        err,
		})
	}()
}

// sendResult は結果をイベントループへ送る。ループが終了済みの場合は破棄する。
func (b *Bootstrapper) sendResult(ctx context.Context, results chan<- loadResult, res loadResult) {
	select {
	case results <- res:
	case <-ctx.Done():
		// タイムアウトで取り消されたロードの結果も送る。
		// 世代番号が一致すればタイムアウトとして処理される。
		select {
		case results <- res:
		default:
		}
	}
}

// cancelInFlightLoad は進行中のロードを取り消す。
func (b *Bootstrapper) cancelInFlightLoad() {
	b.mu.Lock()
	cancel := b.loadCancel
	b.loadCancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// forceUnauthenticatedIfLoading はロード未完了の場合のみ未認証状態へ強制遷移する。
// 既に確定した状態は上書きしない。
func (b *Bootstrapper) forceUnauthenticatedIfLoading(message string) {
	b.mu.Lock()
	if !b.state.IsLoading {
		b.mu.Unlock()
		return
	}
	b.generation++ // 遅延して届く結果を無効化する
	b.state = ViewState{Message: message}
	b.mu.Unlock()

	slog.Warn("bootstrap forced unauthenticated by mount ceiling",
		slog.String("session_id", b.sessionID),
	)
	b.notify()
}

// applyLoadResult はロード結果を状態へ反映する。
// 世代番号が現在と一致しない結果は破棄する。
func (b *Bootstrapper) applyLoadResult(ctx context.Context, res loadResult) {
	b.mu.Lock()
	if res.generation != b.generation {
		b.mu.Unlock()
		return
	}

	switch {
	case res.err != nil && isTimeout(res.err):
		// タイムアウト: サインアウトせず未認証とする。セッションは温存され、
		// 次のロードで再認証できる。
		b.state = ViewState{Message: "認証状態の確認がタイムアウトしました"}
		b.mu.Unlock()
		slog.Warn("user load timed out", slog.String("session_id", b.sessionID))

	case res.err != nil:
		// その他のエラー: セッションを破棄して未認証とする。
		sessionID := b.sessionID
		b.state = ViewState{Message: "認証状態の確認に失敗しました"}
		b.mu.Unlock()
		slog.Error("user load failed",
			slog.String("session_id", sessionID),
			slog.String("error", res.err.Error()),
		)
		b.signOut(ctx, sessionID)

	case !res.hadSession:
		b.state = ViewState{}
		b.mu.Unlock()

	case res.user == nil:
		// セッションは有効だがプロフィール行が存在しない。
		// 無限ループを避けるためサインアウトは1回だけ行う。
		sessionID := b.sessionID
		alreadySignedOut := b.signedOutForNilProfile
		b.signedOutForNilProfile = true
		b.state = ViewState{}
		b.mu.Unlock()
		if !alreadySignedOut {
			slog.Warn("nil profile for valid session, signing out",
				slog.String("session_id", sessionID),
			)
			b.signOut(ctx, sessionID)
		}

	default:
		role := RoleEmployee
		if res.user.Role == model.RoleHRAdmin {
			role = RoleHR
		}
		b.state = ViewState{
			IsAuthenticated: true,
			CurrentUser:     res.user,
			Role:            role,
		}
		b.mu.Unlock()
	}

	b.notify()
}

// handleEvent は認証イベントを処理する。
func (b *Bootstrapper) handleEvent(ctx context.Context, ev auth.Event, results chan<- loadResult) {
	switch ev.Kind {
	case auth.EventSignedIn:
		// ブロードキャストはサーバー全体で共有されるため、自分の
		// セッション以外のサインインは無視する。取り込むと別クライアントの
		// プロフィールがこの接続へ流れてしまう。未認証接続は新しい
		// Cookieを持って再接続することで認証状態を得る。
		b.mu.Lock()
		if ev.SessionID != b.sessionID {
			b.mu.Unlock()
			return
		}
		if b.state.IsAuthenticated {
			b.mu.Unlock()
			return
		}
		b.signedOutForNilProfile = false
		b.mu.Unlock()
		b.beginLoad(ctx, results)

	case auth.EventSignedOut:
		b.mu.Lock()
		if ev.SessionID != b.sessionID {
			b.mu.Unlock()
			return
		}
		b.generation++
		b.state = ViewState{}
		b.mu.Unlock()
		b.cancelInFlightLoad()
		b.notify()

	case auth.EventTokenRefreshed:
		// 状態は変化しない
	}
}

// signOut はサインアウトを実行する。失敗はログに残すのみ。
func (b *Bootstrapper) signOut(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := b.auth.SignOut(ctx, sessionID); err != nil {
		slog.Error("bootstrap sign-out failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// notify は現在の状態を更新ストリームへ送る。
// バッファ満杯時は最古の状態を破棄して最新を優先する。
func (b *Bootstrapper) notify() {
	state := b.Snapshot()
	select {
	case b.updates <- state:
	default:
		select {
		case <-b.updates:
		default:
		}
		select {
		case b.updates <- state:
		default:
		}
	}
}

// isTimeout はロード失敗がタイムアウト起因かどうかを判定する。
func isTimeout(err error) bool {
	return model.IsTimeout(err)
}
