package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/leave"
	"github.com/hitoshi/teamify/internal/middleware"
	"github.com/hitoshi/teamify/internal/model"
)

// LeaveServiceInterface は休暇ハンドラーが必要とするサービスインターフェース。
type LeaveServiceInterface interface {
	ListTypes(ctx context.Context) ([]*model.LeaveType, error)
	Balances(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error)
	CreateRequest(ctx context.Context, input leave.RequestInput) (*model.LeaveRequest, error)
	GetRequest(ctx context.Context, requestID string) (*model.LeaveRequest, error)
	ListRequests(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error)
	ListRequestsByEmployee(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error)
	Review(ctx context.Context, requestID string, input leave.ReviewInput) (*model.LeaveRequest, error)
}

// LeaveHandler は休暇管理のHTTPハンドラー。
type LeaveHandler struct {
	service LeaveServiceInterface
	now     func() time.Time
}

// NewLeaveHandler はLeaveHandlerを生成する。
func NewLeaveHandler(service LeaveServiceInterface) *LeaveHandler {
	return &LeaveHandler{
		service: service,
		now:     time.Now,
	}
}

// leaveRequestBody は休暇申請リクエストのボディ。
type leaveRequestBody struct {
	EmployeeID  string `json:"employeeId"`
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason"`
}

// leaveReviewBody は休暇申請の承認・却下リクエストのボディ。
type leaveReviewBody struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments"`
}

// leaveTypeResponse は休暇種別のAPIレスポンス。
type leaveTypeResponse struct {
	ID                 string  `json:"id"`
	TypeName           string  `json:"typeName"`
	Description        string  `json:"description"`
	DefaultDaysPerYear float64 `json:"defaultDaysPerYear"`
	IsPaid             bool    `json:"isPaid"`
}

// leaveBalanceResponse は休暇残日数のAPIレスポンス。
type leaveBalanceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employeeId"`
	LeaveTypeID   string  `json:"leaveTypeId"`
	Year          int     `json:"year"`
	TotalDays     float64 `json:"totalDays"`
	UsedDays      float64 `json:"usedDays"`
	RemainingDays float64 `json:"remainingDays"`
}

// leaveRequestResponse は休暇申請のAPIレスポンス。
type leaveRequestResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	LeaveTypeID      string     `json:"leaveTypeId"`
	StartDate        string     `json:"startDate"`
	EndDate          string     `json:"endDate"`
	TotalDays        float64    `json:"totalDays"`
	Reason           string     `json:"reason,omitempty"`
	Status           string     `json:"status"`
	AppliedDate      string     `json:"appliedDate"`
	ReviewedBy       *string    `json:"reviewedBy,omitempty"`
	ReviewedDate     *time.Time `json:"reviewedDate,omitempty"`
	ReviewerComments string     `json:"reviewerComments,omitempty"`
}

// ListTypes は休暇種別一覧を返す。
// GET /api/leave/types
func (h *LeaveHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTypes(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]leaveTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, leaveTypeResponse{
			ID:                 t.LeaveTypeID,
			TypeName:           t.TypeName,
			Description:        t.Description,
			DefaultDaysPerYear: t.DefaultDaysPerYear,
			IsPaid:             t.IsPaid,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Balances は従業員の休暇残日数を返す。
// GET /api/leave/balances/:employeeId?year=2026
func (h *LeaveHandler) Balances(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("yearは整数で指定してください"))
			return
		}
		year = parsed
	}

	balances, err := h.service.Balances(r.Context(), chi.URLParam(r, "employeeId"), year)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]leaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, leaveBalanceResponse{
			ID:            b.LeaveBalanceID,
			EmployeeID:    b.EmployeeID,
			LeaveTypeID:   b.LeaveTypeID,
			Year:          b.Year,
			TotalDays:     b.TotalDays,
			UsedDays:      b.UsedDays,
			RemainingDays: b.RemainingDays(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateRequest は休暇申請を作成する。
// POST /api/leave/requests
func (h *LeaveHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leaveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("開始日はYYYY-MM-DD形式で指定してください"))
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("終了日はYYYY-MM-DD形式で指定してください"))
		return
	}

	created, err := h.service.CreateRequest(r.Context(), leave.RequestInput{
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      req.Reason,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toLeaveRequestResponse(created))
}

// GetRequest は休暇申請の詳細を返す。
// GET /api/leave/requests/:id
func (h *LeaveHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLeaveRequestResponse(req))
}

// ListRequests は休暇申請一覧を返す。
// employeeIdクエリ指定時は従業員の申請履歴、status指定時は状態で絞り込む。
// GET /api/leave/requests
func (h *LeaveHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	var (
		requests []*model.LeaveRequest
		err      error
	)

	if employeeID := r.URL.Query().Get("employeeId"); employeeID != "" {
		requests, err = h.service.ListRequestsByEmployee(r.Context(), employeeID)
	} else {
		requests, err = h.service.ListRequests(r.Context(), model.LeaveStatus(r.URL.Query().Get("status")))
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]leaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		resp = append(resp, toLeaveRequestResponse(req))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Review は休暇申請を承認または却下する。
// レビュアーはログインユーザー。
// POST /api/leave/requests/:id/review
func (h *LeaveHandler) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req leaveReviewBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	reviewed, err := h.service.Review(r.Context(), chi.URLParam(r, "id"), leave.ReviewInput{
		ReviewerID: reviewerID,
		Approve:    req.Approve,
		Comments:   req.Comments,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLeaveRequestResponse(reviewed))
}

func toLeaveRequestResponse(req *model.LeaveRequest) leaveRequestResponse {
	return leaveRequestResponse{
		ID:               req.LeaveRequestID,
		EmployeeID:       req.EmployeeID,
		LeaveTypeID:      req.LeaveTypeID,
		StartDate:        req.StartDate.Format(dateLayout),
		EndDate:          req.EndDate.Format(dateLayout),
		TotalDays:        req.TotalDays,
		Reason:           req.Reason,
		Status:           string(req.Status),
		AppliedDate:      req.AppliedDate.Format(dateLayout),
		ReviewedBy:       req.ReviewedBy,
		ReviewedDate:     req.ReviewedDate,
		ReviewerComments: req.ReviewerComments,
	}
}
