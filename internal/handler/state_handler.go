package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hitoshi/teamify/internal/bootstrap"
)

// StateHandler は認証状態のSSEストリームを提供するHTTPハンドラー。
// 接続ごとに専用のBootstrapperを起動し、状態変化をServer-Sent Eventsで配信する。
type StateHandler struct {
	authService       bootstrap.AuthService
	config            bootstrap.Config
	keepAliveInterval time.Duration
}

// NewStateHandler はStateHandlerを生成する。
func NewStateHandler(authService bootstrap.AuthService, config bootstrap.Config) *StateHandler {
	return &StateHandler{
		authService:       authService,
		config:            config,
		keepAliveInterval: 30 * time.Second,
	}
}

// viewStateResponse はViewStateのSSEペイロード。
type viewStateResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	IsLoading       bool          `json:"isLoading"`
	CurrentUser     *userResponse `json:"currentUser,omitempty"`
	Role            string        `json:"role"`
	Message         string        `json:"message,omitempty"`
}

func toViewStateResponse(state bootstrap.ViewState) viewStateResponse {
	resp := viewStateResponse{
		IsAuthenticated: state.IsAuthenticated,
		IsLoading:       state.IsLoading,
		Role:            string(state.Role),
		Message:         state.Message,
	}
	if state.CurrentUser != nil {
		u := toUserResponse(state.CurrentUser)
		resp.CurrentUser = &u
	}
	return resp
}

// Stream は認証状態の変化をSSEで配信する。
// 接続が切れるまで戻らない。
// GET /auth/state
func (h *StateHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// セッションCookieがない場合は空のセッションIDで起動し、
	// 未認証状態からSIGNED_INイベントを待つ。
	sessionID := ""
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	b := bootstrap.New(h.authService, sessionID, h.config)
	go b.Run(ctx)

	// 初期状態をすぐに送る
	if err := writeSSEEvent(w, b.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(h.keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-b.Updates():
			if err := writeSSEEvent(w, state); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			// コメント行で接続を維持する
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, state bootstrap.ViewState) error {
	payload, err := json.Marshal(toViewStateResponse(state))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
