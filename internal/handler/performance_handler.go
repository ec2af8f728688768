package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/middleware"
	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/performance"
)

// PerformanceServiceInterface は人事評価ハンドラーが必要とするサービスインターフェース。
type PerformanceServiceInterface interface {
	CreateReview(ctx context.Context, input performance.ReviewInput) (*model.PerformanceReview, error)
	GetReview(ctx context.Context, reviewID string) (*model.PerformanceReview, error)
	UpdateReview(ctx context.Context, reviewID string, input performance.ReviewInput) (*model.PerformanceReview, error)
	DeleteReview(ctx context.Context, reviewID string) error
	ListReviews(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error)
	EmployeeAverageRating(ctx context.Context, employeeID string) (float64, error)
	CreateGoal(ctx context.Context, input performance.GoalInput) (*model.PerformanceGoal, error)
	UpdateGoal(ctx context.Context, goalID string, input performance.GoalInput) (*model.PerformanceGoal, error)
	ListGoals(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error)
}

// PerformanceHandler は人事評価のHTTPハンドラー。
type PerformanceHandler struct {
	service PerformanceServiceInterface
	now     func() time.Time
}

// NewPerformanceHandler はPerformanceHandlerを生成する。
func NewPerformanceHandler(service PerformanceServiceInterface) *PerformanceHandler {
	return &PerformanceHandler{
		service: service,
		now:     time.Now,
	}
}

// reviewRequestBody は評価の作成・更新リクエストのボディ。
// レビュアーはログインユーザーで固定する。
type reviewRequestBody struct {
	EmployeeID          string     `json:"employeeId"`
	ReviewPeriodStart   *time.Time `json:"reviewPeriodStart"`
	ReviewPeriodEnd     *time.Time `json:"reviewPeriodEnd"`
	ReviewDate          string     `json:"reviewDate"`
	OverallRating       *float64   `json:"overallRating"`
	TechnicalRating     *float64   `json:"technicalRating"`
	CommunicationRating *float64   `json:"communicationRating"`
	TeamworkRating      *float64   `json:"teamworkRating"`
	LeadershipRating    *float64   `json:"leadershipRating"`
	PunctualityRating   *float64   `json:"punctualityRating"`
	Strengths           string     `json:"strengths"`
	AreasForImprovement string     `json:"areasForImprovement"`
	GoalsAchieved       string     `json:"goalsAchieved"`
	Comments            string     `json:"comments"`
	Status              string     `json:"status"`
}

// goalRequestBody は目標の作成・更新リクエストのボディ。
type goalRequestBody struct {
	EmployeeID  string     `json:"employeeId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"targetDate"`
	Status      string     `json:"status"`
}

// reviewResponse は評価のAPIレスポンス。
type reviewResponse struct {
	ID                  string     `json:"id"`
	EmployeeID          string     `json:"employeeId"`
	ReviewerID          string     `json:"reviewerId"`
	ReviewPeriodStart   *time.Time `json:"reviewPeriodStart,omitempty"`
	ReviewPeriodEnd     *time.Time `json:"reviewPeriodEnd,omitempty"`
	ReviewDate          string     `json:"reviewDate"`
	OverallRating       *float64   `json:"overallRating,omitempty"`
	TechnicalRating     *float64   `json:"technicalRating,omitempty"`
	CommunicationRating *float64   `json:"communicationRating,omitempty"`
	TeamworkRating      *float64   `json:"teamworkRating,omitempty"`
	LeadershipRating    *float64   `json:"leadershipRating,omitempty"`
	PunctualityRating   *float64   `json:"punctualityRating,omitempty"`
	Strengths           string     `json:"strengths,omitempty"`
	AreasForImprovement string     `json:"areasForImprovement,omitempty"`
	GoalsAchieved       string     `json:"goalsAchieved,omitempty"`
	Comments            string     `json:"comments,omitempty"`
	Status              string     `json:"status"`
}

// goalResponse は目標のAPIレスポンス。
type goalResponse struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Status      string     `json:"status"`
}

// CreateReview は評価を作成する。
// POST /api/performance/reviews
func (h *PerformanceHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	input, ok := h.decodeReviewInput(w, r, reviewerID)
	if !ok {
		return
	}

	review, err := h.service.CreateReview(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toReviewResponse(review))
}

// GetReview は評価の詳細を返す。
// GET /api/performance/reviews/:id
func (h *PerformanceHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toReviewResponse(review))
}

// UpdateReview は評価を更新する。
// PUT /api/performance/reviews/:id
func (h *PerformanceHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	input, ok := h.decodeReviewInput(w, r, reviewerID)
	if !ok {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toReviewResponse(review))
}

// DeleteReview は評価を削除する。
// DELETE /api/performance/reviews/:id
func (h *PerformanceHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListReviews は従業員の評価一覧を返す。
// GET /api/performance/reviews?employeeId=...
func (h *PerformanceHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListReviews(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, toReviewResponse(review))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// AverageRating は従業員の総合評価の平均を返す。
// GET /api/performance/reviews/average/:employeeId
func (h *PerformanceHandler) AverageRating(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	avg, err := h.service.EmployeeAverageRating(r.Context(), employeeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"employeeId":    employeeID,
		"averageRating": avg,
	})
}

// CreateGoal は目標を作成する。
// POST /api/performance/goals
func (h *PerformanceHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	goal, err := h.service.CreateGoal(r.Context(), performance.GoalInput{
		EmployeeID:  req.EmployeeID,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Status:      model.GoalStatus(req.Status),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toGoalResponse(goal))
}

// UpdateGoal は目標を更新する。
// PUT /api/performance/goals/:id
func (h *PerformanceHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	goal, err := h.service.UpdateGoal(r.Context(), chi.URLParam(r, "id"), performance.GoalInput{
		EmployeeID:  req.EmployeeID,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Status:      model.GoalStatus(req.Status),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toGoalResponse(goal))
}

// ListGoals は従業員の目標一覧を返す。
// GET /api/performance/goals?employeeId=...
func (h *PerformanceHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.ListGoals(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]goalResponse, 0, len(goals))
	for _, goal := range goals {
		resp = append(resp, toGoalResponse(goal))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

func (h *PerformanceHandler) decodeReviewInput(w http.ResponseWriter, r *http.Request, reviewerID string) (performance.ReviewInput, bool) {
	var req reviewRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return performance.ReviewInput{}, false
	}

	reviewDate := h.now()
	if req.ReviewDate != "" {
		parsed, err := time.Parse(dateLayout, req.ReviewDate)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("評価日はYYYY-MM-DD形式で指定してください"))
			return performance.ReviewInput{}, false
		}
		reviewDate = parsed
	}

	return performance.ReviewInput{
		EmployeeID:          req.EmployeeID,
		ReviewerID:          reviewerID,
		ReviewPeriodStart:   req.ReviewPeriodStart,
		ReviewPeriodEnd:     req.ReviewPeriodEnd,
		ReviewDate:          reviewDate,
		OverallRating:       req.OverallRating,
		TechnicalRating:     req.TechnicalRating,
		CommunicationRating: req.CommunicationRating,
		TeamworkRating:      req.TeamworkRating,
		LeadershipRating:    req.LeadershipRating,
		PunctualityRating:   req.PunctualityRating,
		Strengths:           req.Strengths,
		AreasForImprovement: req.AreasForImprovement,
		GoalsAchieved:       req.GoalsAchieved,
		Comments:            req.Comments,
		Status:              model.ReviewStatus(req.Status),
	}, true
}

func toReviewResponse(review *model.PerformanceReview) reviewResponse {
	return reviewResponse{
		ID:                  review.ReviewID,
		EmployeeID:          review.EmployeeID,
		ReviewerID:          review.ReviewerID,
		ReviewPeriodStart:   review.ReviewPeriodStart,
		ReviewPeriodEnd:     review.ReviewPeriodEnd,
		ReviewDate:          review.ReviewDate.Format(dateLayout),
		OverallRating:       review.OverallRating,
		TechnicalRating:     review.TechnicalRating,
		CommunicationRating: review.CommunicationRating,
		TeamworkRating:      review.TeamworkRating,
		LeadershipRating:    review.LeadershipRating,
		PunctualityRating:   review.PunctualityRating,
		Strengths:           review.Strengths,
		AreasForImprovement: review.AreasForImprovement,
		GoalsAchieved:       review.GoalsAchieved,
		Comments:            review.Comments,
		Status:              string(review.Status),
	}
}

func toGoalResponse(goal *model.PerformanceGoal) goalResponse {
	return goalResponse{
		ID:          goal.GoalID,
		EmployeeID:  goal.EmployeeID,
		Title:       goal.Title,
		Description: goal.Description,
		TargetDate:  goal.TargetDate,
		Status:      string(goal.Status),
	}
}
