// Package notification はユーザー向け通知のドメインロジックを提供する。
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// Service は通知のサービス層。
type Service struct {
	notificationRepo repository.NotificationRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

// Create は通知を作成する。
func (s *Service) Create(ctx context.Context, userID, title, message, notifType string) (*model.Notification, error) {
	if userID == "" {
		return nil, model.NewValidationError("ユーザーIDは必須です")
	}
	if title == "" {
		return nil, model.NewValidationError("通知タイトルは必須です")
	}
	if notifType == "" {
		notifType = model.NotificationTypeSystem
	}

	n := &model.Notification{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("通知の作成に失敗しました: %w", err)
	}
	return n, nil
}

// ListForUser はユーザーの通知一覧を返す。
func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	return notifications, nil
}

// MarkRead は通知を既読にする。
func (s *Service) MarkRead(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return model.NewValidationError("通知IDは必須です")
	}
	if err := s.notificationRepo.MarkRead(ctx, notificationID, time.Now()); err != nil {
		return fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}
	return nil
}
