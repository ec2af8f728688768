// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/teamify/internal/attendance"
	"github.com/hitoshi/teamify/internal/auth"
	"github.com/hitoshi/teamify/internal/bootstrap"
	"github.com/hitoshi/teamify/internal/config"
	"github.com/hitoshi/teamify/internal/dashboard"
	"github.com/hitoshi/teamify/internal/database"
	"github.com/hitoshi/teamify/internal/employee"
	"github.com/hitoshi/teamify/internal/handler"
	"github.com/hitoshi/teamify/internal/leave"
	"github.com/hitoshi/teamify/internal/logger"
	"github.com/hitoshi/teamify/internal/metrics"
	"github.com/hitoshi/teamify/internal/middleware"
	"github.com/hitoshi/teamify/internal/notification"
	"github.com/hitoshi/teamify/internal/payroll"
	"github.com/hitoshi/teamify/internal/performance"
	"github.com/hitoshi/teamify/internal/recruitment"
	"github.com/hitoshi/teamify/internal/repository"
	"github.com/hitoshi/teamify/internal/security"
	"github.com/hitoshi/teamify/internal/worker/cleanup"
	"github.com/hitoshi/teamify/internal/worker/payrollrun"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	credRepo := repository.NewPostgresCredentialRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	userRepo := repository.NewPostgresUserRepo(db)
	employeeRepo := repository.NewPostgresEmployeeRepo(db)
	orgRepo := repository.NewPostgresOrgRepo(db)
	attendanceRepo := repository.NewPostgresAttendanceRepo(db)
	leaveRepo := repository.NewPostgresLeaveRepo(db)
	notificationRepo := repository.NewPostgresNotificationRepo(db)
	performanceRepo := repository.NewPostgresPerformanceRepo(db)
	recruitmentRepo := repository.NewPostgresRecruitmentRepo(db)
	payrollRepo := repository.NewPostgresPayrollRepo(db)

	// 3. セキュリティサービスとメトリクスの初期化
	urlGuard := security.NewURLGuard()
	sanitizer := security.NewContentSanitizer()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	authService := auth.NewService(
		credRepo, sessionRepo, userRepo, employeeRepo, orgRepo,
		auth.ServiceConfig{
			SessionMaxAge:         cfg.SessionMaxAge,
			ProfileQueryTimeout:   cfg.ProfileQueryTimeout,
			EmployeeQueryTimeout:  cfg.EmployeeQueryTimeout,
			RelationLookupTimeout: cfg.RelationLookupTimeout,
			Metrics:               collector,
		},
	)

	employeeService := employee.NewService(employeeRepo, orgRepo)
	attendanceService := attendance.NewService(attendanceRepo, employeeRepo)
	leaveService := leave.NewService(leaveRepo, employeeRepo, notificationRepo, slog.Default())
	performanceService := performance.NewService(performanceRepo, employeeRepo, sanitizer)
	recruitmentService := recruitment.NewService(recruitmentRepo, urlGuard, sanitizer)
	payrollService := payroll.NewService(payrollRepo, employeeRepo, slog.Default())
	dashboardService := dashboard.NewService(
		employeeRepo, orgRepo, attendanceRepo, leaveRepo,
		performanceRepo, recruitmentRepo, payrollRepo,
	)
	notificationService := notification.NewService(notificationRepo)

	// 5. レートリミッターの構築（configはreq/min単位、rate.Limitはreq/sec単位）
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rlCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitPayroll > 0 {
		rlCfg.PayrollRate = rate.Limit(float64(cfg.RateLimitPayroll) / 60.0)
		rlCfg.PayrollBurst = cfg.RateLimitPayroll
	}
	rateLimiter := middleware.NewRateLimiter(rlCfg)
	defer rateLimiter.Stop()

	// 6. ルーターの構築
	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:     rateLimiter,
		MetricsRecorder: collector,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		BootstrapAuthService: authService,
		BootstrapConfig: bootstrap.Config{
			MountTimeout: cfg.BootstrapMountTimeout,
			LoadTimeout:  cfg.LoadUserTimeout,
			Metrics:      collector,
		},

		EmployeeService:     employeeService,
		AttendanceService:   attendanceService,
		LeaveService:        leaveService,
		PerformanceService:  performanceService,
		RecruitmentService:  recruitmentService,
		PayrollService:      payrollService,
		RoleFinder:          userRepo,
		DashboardService:    dashboardService,
		NotificationService: notificationService,

		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はバッチワーカーモードで起動する。
// クリーンアップジョブを日次で、給与ドラフト生成スケジューラを定期で実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリの初期化
	sessionRepo := repository.NewPostgresSessionRepo(db)
	notificationRepo := repository.NewPostgresNotificationRepo(db)
	employeeRepo := repository.NewPostgresEmployeeRepo(db)
	payrollRepo := repository.NewPostgresPayrollRepo(db)

	// 3. メトリクスの初期化
	collector := metrics.NewCollector(prometheus.NewRegistry())

	// 4. ジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(sessionRepo, notificationRepo, collector, slog.Default())
	if cfg.NotificationRetentionDays > 0 {
		cleanupJob.RetentionDays = cfg.NotificationRetentionDays
	}

	payrollService := payroll.NewService(payrollRepo, employeeRepo, slog.Default())
	scheduler := payrollrun.NewScheduler(
		payrollService, collector, slog.Default(), cfg.PayrollDefaultBasicSalary,
	)

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("payroll_run_interval", cfg.PayrollRunInterval),
		slog.Int("retention_days", cleanupJob.RetentionDays),
	)

	// クリーンアップジョブを日次でバックグラウンド実行
	go func() {
		// 起動直後に1回実行
		if err := cleanupJob.Run(ctx); err != nil {
			slog.Error("cleanup job failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := cleanupJob.Run(ctx); err != nil {
					slog.Error("cleanup job failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	// 給与ドラフト生成スケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.PayrollRunInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
