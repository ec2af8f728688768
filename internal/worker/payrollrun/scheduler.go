// Package payrollrun は月次給与ドラフトの自動生成ジョブを提供する。
// 毎月1日に当月の支給期間でドラフト行を一括生成する。
// 生成済みの従業員はスキップされるため、同日に複数回実行しても安全。
package payrollrun

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/teamify/internal/metrics"
	"github.com/hitoshi/teamify/internal/payroll"
)

// DraftGenerator は給与ドラフト一括生成の実行インターフェース。
type DraftGenerator interface {
	// GenerateDrafts は期間内の給与行が存在しないACTIVE従業員に
	// ドラフト行を作成する。
	GenerateDrafts(ctx context.Context, periodStart, periodEnd time.Time, defaultBasicSalary float64) (*payroll.RunResult, error)
}

// Scheduler は月次給与ドラフト生成のスケジューリングを行う。
// 日次ティッカーで起床し、毎月1日のみ当月分のドラフト生成を実行する。
type Scheduler struct {
	generator          DraftGenerator
	collector          metrics.MetricsCollector
	logger             *slog.Logger
	defaultBasicSalary float64

	// now はテストで時刻を固定するために差し替え可能にする。
	now func() time.Time
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// collectorはnil可。
func NewScheduler(
	generator DraftGenerator,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	defaultBasicSalary float64,
) *Scheduler {
	return &Scheduler{
		generator:          generator,
		collector:          collector,
		logger:             logger,
		defaultBasicSalary: defaultBasicSalary,
		now:                time.Now,
	}
}

// Start は日次ティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("給与ドラフト生成スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Float64("default_basic_salary", s.defaultBasicSalary),
	)

	// 起動直後に1回判定する。月初の再起動でも取りこぼさない。
	s.runIfFirstOfMonth(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("給与ドラフト生成スケジューラを停止しました")
			return
		case <-ticker.C:
			s.runIfFirstOfMonth(ctx)
		}
	}
}

// runIfFirstOfMonth は当日が月の1日の場合のみドラフト生成を実行する。
func (s *Scheduler) runIfFirstOfMonth(ctx context.Context) {
	if s.now().Day() != 1 {
		return
	}
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("給与ドラフト生成に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

// RunOnce は当月の支給期間でドラフト生成を1回実行する。
// 既にドラフト行がある従業員はスキップされる。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	now := s.now()
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	result, err := s.generator.GenerateDrafts(ctx, periodStart, periodEnd, s.defaultBasicSalary)
	if err != nil {
		return err
	}

	if s.collector != nil {
		s.collector.RecordPayrollDraftsGenerated(result.Created)
	}

	duration := time.Since(start)
	s.logger.Info("給与ドラフト生成が完了しました",
		slog.String("period_start", periodStart.Format("2006-01-02")),
		slog.String("period_end", periodEnd.Format("2006-01-02")),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
