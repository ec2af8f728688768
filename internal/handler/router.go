package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/bootstrap"
	"github.com/hitoshi/teamify/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	// MetricsRecorder はステータスコード別メトリクスの記録先（nil可）。
	MetricsRecorder middleware.HTTPStatusRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 認証状態ストリーム
	BootstrapAuthService bootstrap.AuthService
	BootstrapConfig      bootstrap.Config

	// 従業員・組織
	EmployeeService EmployeeServiceInterface

	// 勤怠
	AttendanceService AttendanceServiceInterface

	// 休暇
	LeaveService LeaveServiceInterface

	// 人事評価
	PerformanceService PerformanceServiceInterface

	// 採用
	RecruitmentService RecruitmentServiceInterface

	// 給与
	PayrollService PayrollServiceInterface
	RoleFinder     RoleFinder

	// ダッシュボード
	DashboardService DashboardServiceInterface

	// 通知
	NotificationService NotificationServiceInterface

	// メトリクス（nilの場合は/metricsを公開しない）
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//	→ SessionMiddleware → CSRFMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）とヘルスチェックは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェアを最上位に適用
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	stateHandler := NewStateHandler(deps.BootstrapAuthService, deps.BootstrapConfig)
	employeeHandler := NewEmployeeHandler(deps.EmployeeService)
	attendanceHandler := NewAttendanceHandler(deps.AttendanceService)
	leaveHandler := NewLeaveHandler(deps.LeaveService)
	performanceHandler := NewPerformanceHandler(deps.PerformanceService)
	recruitmentHandler := NewRecruitmentHandler(deps.RecruitmentService)
	payrollHandler := NewPayrollHandler(deps.PayrollService, deps.RoleFinder)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)
	notificationHandler := NewNotificationHandler(deps.NotificationService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// CSRFトークン取得（認証不要。フロントエンドが初回に取得する）
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（セッション発行・破棄はCookieで完結するためチェーン外）
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.SignIn)
		r.Post("/logout", authHandler.SignOut)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/me", authHandler.Me)
		r.Get("/employee/me", authHandler.EmployeeMe)
		r.Get("/state", stateHandler.Stream)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 従業員管理
		r.Route("/api/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Get("/me", employeeHandler.Me)
			r.Get("/status-counts", employeeHandler.StatusCounts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", employeeHandler.Get)
				r.Put("/", employeeHandler.Update)
				r.Post("/offboard", employeeHandler.Offboard)
			})
		})

		// 組織マスタ
		r.Get("/api/departments", employeeHandler.ListDepartments)
		r.Get("/api/positions", employeeHandler.ListPositions)

		// 勤怠管理
		r.Route("/api/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Post("/", attendanceHandler.Mark)
			r.Get("/today", attendanceHandler.TodaySummary)
			r.Get("/holidays", attendanceHandler.ListHolidays)
			r.Get("/stats/{employeeId}", attendanceHandler.MonthlyStats)
			r.Put("/{id}", attendanceHandler.Update)
		})

		// 休暇管理
		r.Route("/api/leave", func(r chi.Router) {
			r.Get("/types", leaveHandler.ListTypes)
			r.Get("/balances/{employeeId}", leaveHandler.Balances)

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", leaveHandler.ListRequests)
				r.Post("/", leaveHandler.CreateRequest)
				r.Get("/{id}", leaveHandler.GetRequest)
				r.Post("/{id}/review", leaveHandler.Review)
			})
		})

		// 人事評価
		r.Route("/api/performance", func(r chi.Router) {
			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", performanceHandler.ListReviews)
				r.Post("/", performanceHandler.CreateReview)
				r.Get("/average/{employeeId}", performanceHandler.AverageRating)
				r.Get("/{id}", performanceHandler.GetReview)
				r.Put("/{id}", performanceHandler.UpdateReview)
				r.Delete("/{id}", performanceHandler.DeleteReview)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", performanceHandler.ListGoals)
				r.Post("/", performanceHandler.CreateGoal)
				r.Put("/{id}", performanceHandler.UpdateGoal)
			})
		})

		// 採用管理
		r.Route("/api/recruitment", func(r chi.Router) {
			r.Route("/postings", func(r chi.Router) {
				r.Get("/", recruitmentHandler.ListPostings)
				r.Post("/", recruitmentHandler.CreatePosting)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", recruitmentHandler.GetPosting)
					r.Put("/", recruitmentHandler.UpdatePosting)
					r.Delete("/", recruitmentHandler.DeletePosting)
					r.Get("/applications", recruitmentHandler.ListApplications)
					r.Post("/applications", recruitmentHandler.Apply)
				})
			})

			r.Route("/applicants", func(r chi.Router) {
				r.Post("/", recruitmentHandler.CreateApplicant)
				r.Get("/{id}", recruitmentHandler.GetApplicant)
			})

			r.Route("/applications/{id}", func(r chi.Router) {
				r.Post("/advance", recruitmentHandler.AdvanceApplication)
				r.Get("/interviews", recruitmentHandler.ListInterviews)
			})

			r.Route("/interviews", func(r chi.Router) {
				r.Post("/", recruitmentHandler.ScheduleInterview)
				r.Post("/{id}/feedback", recruitmentHandler.RecordFeedback)
			})
		})

		// 給与管理（変更系には給与専用レート制限を追加）
		r.Route("/api/payroll", func(r chi.Router) {
			r.Get("/", payrollHandler.List)
			r.With(deps.RateLimiter.PayrollMiddleware()).Post("/", payrollHandler.Create)
			r.With(deps.RateLimiter.PayrollMiddleware()).Post("/run", payrollHandler.Run)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", payrollHandler.Get)
				r.With(deps.RateLimiter.PayrollMiddleware()).Put("/", payrollHandler.Update)
				r.With(deps.RateLimiter.PayrollMiddleware()).Post("/process", payrollHandler.Process)
				r.With(deps.RateLimiter.PayrollMiddleware()).Post("/pay", payrollHandler.MarkPaid)
			})
		})

		// ダッシュボード
		r.Route("/api/dashboard", func(r chi.Router) {
			r.Get("/hr", dashboardHandler.HRStats)
			r.Get("/departments", dashboardHandler.DepartmentOverview)
			r.Get("/employee/{employeeId}", dashboardHandler.EmployeeStats)
			r.Get("/payroll", dashboardHandler.PayrollStats)
			r.Get("/recruitment", dashboardHandler.RecruitmentStats)
			r.Get("/top-performers", dashboardHandler.TopPerformers)
		})

		// 通知
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Post("/{id}/read", notificationHandler.MarkRead)
		})
	})

	return r
}
