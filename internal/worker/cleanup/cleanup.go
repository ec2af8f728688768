// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 期限切れセッションと、保持期間（デフォルト90日）を超過した既読通知を
// 日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/teamify/internal/metrics"
	"github.com/hitoshi/teamify/internal/repository"
)

// CleanupJob は期限切れセッションと古い既読通知の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessionRepo      repository.SessionRepository
	notificationRepo repository.NotificationRepository
	collector        metrics.MetricsCollector
	logger           *slog.Logger
	RetentionDays    int // 既読通知の保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。collectorはnil可。
func NewCleanupJob(
	sessionRepo repository.SessionRepository,
	notificationRepo repository.NotificationRepository,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *CleanupJob {
	return &CleanupJob{
		sessionRepo:      sessionRepo,
		notificationRepo: notificationRepo,
		collector:        collector,
		logger:           logger,
		RetentionDays:    90,
	}
}

// Run は期限切れセッションと保持期間を超過した既読通知を削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purged, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}
	if j.collector != nil {
		j.collector.RecordSessionsPurged(int(purged))
	}

	cutoff := start.AddDate(0, 0, -j.RetentionDays)
	deletedNotifications, err := j.notificationRepo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("既読通知のクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("既読通知のクリーンアップに失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("sessions_purged", purged),
		slog.Int64("notifications_deleted", deletedNotifications),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
