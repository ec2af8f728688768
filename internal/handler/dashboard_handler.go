package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/dashboard"
	"github.com/hitoshi/teamify/internal/model"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	HRStats(ctx context.Context, today time.Time) (*dashboard.HRStats, error)
	DepartmentOverview(ctx context.Context) ([]*dashboard.DepartmentHeadcount, error)
	EmployeeStats(ctx context.Context, employeeID string, now time.Time) (*dashboard.EmployeeStats, error)
	PayrollStats(ctx context.Context, start, end time.Time) (*dashboard.PayrollStats, error)
	RecruitmentStats(ctx context.Context) (*dashboard.RecruitmentStats, error)
	TopPerformers(ctx context.Context, n int) ([]*dashboard.TopPerformer, error)
}

// DashboardHandler はダッシュボード集計のHTTPハンドラー。
// 集計結果はdashboardパッケージのDTOをそのまま返す。
type DashboardHandler struct {
	service DashboardServiceInterface
	now     func() time.Time
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		now:     time.Now,
	}
}

// HRStats はHR管理ダッシュボードの統計を返す。
// GET /api/dashboard/hr
func (h *DashboardHandler) HRStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.HRStats(r.Context(), h.now())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// DepartmentOverview は部署ごとの人数を返す。
// GET /api/dashboard/departments
func (h *DashboardHandler) DepartmentOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.DepartmentOverview(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(overview)
}

// EmployeeStats は従業員セルフサービスダッシュボードの統計を返す。
// GET /api/dashboard/employee/:employeeId
func (h *DashboardHandler) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.EmployeeStats(r.Context(), chi.URLParam(r, "employeeId"), h.now())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// PayrollStats は期間内の給与集計を返す。
// GET /api/dashboard/payroll?start=...&end=...
func (h *DashboardHandler) PayrollStats(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	start, err := parseDateQuery(r.URL.Query().Get("start"), monthStart)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("startはYYYY-MM-DD形式で指定してください"))
		return
	}
	end, err := parseDateQuery(r.URL.Query().Get("end"), monthStart.AddDate(0, 1, -1))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("endはYYYY-MM-DD形式で指定してください"))
		return
	}

	stats, err := h.service.PayrollStats(r.Context(), start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// RecruitmentStats は採用パイプラインの統計を返す。
// GET /api/dashboard/recruitment
func (h *DashboardHandler) RecruitmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.RecruitmentStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// TopPerformers は平均評価の上位従業員を返す。
// GET /api/dashboard/top-performers?limit=5
func (h *DashboardHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("limitは正の整数で指定してください"))
			return
		}
		limit = parsed
	}

	performers, err := h.service.TopPerformers(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(performers)
}
