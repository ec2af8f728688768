package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/employee"
	"github.com/hitoshi/teamify/internal/middleware"
	"github.com/hitoshi/teamify/internal/model"
)

// dateLayout はAPIで日付のみを受け渡しするときのフォーマット。
const dateLayout = "2006-01-02"

// EmployeeServiceInterface は従業員ハンドラーが必要とするサービスインターフェース。
type EmployeeServiceInterface interface {
	List(ctx context.Context) ([]*model.Employee, error)
	Get(ctx context.Context, employeeID string) (*model.Employee, error)
	GetByUserID(ctx context.Context, userID string) (*model.Employee, error)
	Create(ctx context.Context, input employee.CreateInput) (*model.Employee, error)
	Update(ctx context.Context, employeeID string, input employee.UpdateInput) (*model.Employee, error)
	Offboard(ctx context.Context, employeeID string, status model.EmploymentStatus) error
	Search(ctx context.Context, query string) ([]*model.Employee, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]*model.Employee, error)
	StatusCounts(ctx context.Context) (map[model.EmploymentStatus]int, error)
	ListDepartments(ctx context.Context) ([]*model.Department, error)
	ListPositions(ctx context.Context, departmentID string) ([]*model.Position, error)
}

// EmployeeHandler は従業員管理のHTTPハンドラー。
type EmployeeHandler struct {
	service EmployeeServiceInterface
}

// NewEmployeeHandler はEmployeeHandlerを生成する。
func NewEmployeeHandler(service EmployeeServiceInterface) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// employeeRequest は従業員の作成・更新リクエストのボディ。
// 作成時はuserId/employeeCode/joinDateも受け付ける。
type employeeRequest struct {
	UserID         *string `json:"userId"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	EmployeeCode   string  `json:"employeeCode"`
	Phone          string  `json:"phone"`
	DepartmentID   *string `json:"departmentId"`
	PositionID     *string `json:"positionId"`
	ManagerID      *string `json:"managerId"`
	JoinDate       string  `json:"joinDate"`
	EmploymentType string  `json:"employmentType"`
}

// offboardRequest は退職処理リクエストのボディ。
type offboardRequest struct {
	Status string `json:"status"`
}

// employeeResponse は従業員情報のAPIレスポンス。
type employeeResponse struct {
	ID               string  `json:"id"`
	UserID           *string `json:"userId,omitempty"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	EmployeeCode     string  `json:"employeeCode"`
	Phone            string  `json:"phone"`
	DepartmentID     *string `json:"departmentId,omitempty"`
	PositionID       *string `json:"positionId,omitempty"`
	ManagerID        *string `json:"managerId,omitempty"`
	JoinDate         string  `json:"joinDate"`
	EmploymentStatus string  `json:"employmentStatus"`
	EmploymentType   string  `json:"employmentType"`
}

// departmentResponse は部署情報のAPIレスポンス。
type departmentResponse struct {
	ID             string  `json:"id"`
	DepartmentName string  `json:"departmentName"`
	Description    string  `json:"description"`
	HeadEmployeeID *string `json:"headEmployeeId,omitempty"`
}

// positionResponse は職位情報のAPIレスポンス。
type positionResponse struct {
	ID            string  `json:"id"`
	PositionTitle string  `json:"positionTitle"`
	DepartmentID  *string `json:"departmentId,omitempty"`
	Description   string  `json:"description"`
	Level         string  `json:"level"`
}

// employeeProfileResponse は従業員＋部署＋職位の結合レスポンス。
type employeeProfileResponse struct {
	employeeResponse
	Email      string              `json:"email,omitempty"`
	Department *departmentResponse `json:"department,omitempty"`
	Position   *positionResponse   `json:"position,omitempty"`
}

// List は従業員一覧を返す。search/departmentIdクエリで絞り込める。
// GET /api/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		employees []*model.Employee
		err       error
	)

	switch {
	case r.URL.Query().Get("search") != "":
		employees, err = h.service.Search(r.Context(), r.URL.Query().Get("search"))
	case r.URL.Query().Get("departmentId") != "":
		employees, err = h.service.ListByDepartment(r.Context(), r.URL.Query().Get("departmentId"))
	default:
		employees, err = h.service.List(r.Context())
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, toEmployeeResponse(e))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get は従業員詳細を返す。
// GET /api/employees/:id
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEmployeeResponse(emp))
}

// Me はログインユーザーに紐づく従業員レコードを返す。
// GET /api/employees/me
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	emp, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEmployeeResponse(emp))
}

// Create は従業員を登録する。
// POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	joinDate, err := time.Parse(dateLayout, req.JoinDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("入社日はYYYY-MM-DD形式で指定してください"))
		return
	}

	emp, err := h.service.Create(r.Context(), employee.CreateInput{
		UserID:         req.UserID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		EmployeeCode:   req.EmployeeCode,
		Phone:          req.Phone,
		DepartmentID:   req.DepartmentID,
		PositionID:     req.PositionID,
		ManagerID:      req.ManagerID,
		JoinDate:       joinDate,
		EmploymentType: model.EmploymentType(req.EmploymentType),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEmployeeResponse(emp))
}

// Update は従業員情報を更新する。
// PUT /api/employees/:id
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	emp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), employee.UpdateInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		DepartmentID:   req.DepartmentID,
		PositionID:     req.PositionID,
		ManagerID:      req.ManagerID,
		EmploymentType: model.EmploymentType(req.EmploymentType),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEmployeeResponse(emp))
}

// Offboard は従業員を退職・解雇状態に遷移させる。
// POST /api/employees/:id/offboard
func (h *EmployeeHandler) Offboard(w http.ResponseWriter, r *http.Request) {
	var req offboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.Offboard(r.Context(), chi.URLParam(r, "id"), model.EmploymentStatus(req.Status)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StatusCounts は雇用状態ごとの人数を返す。
// GET /api/employees/status-counts
func (h *EmployeeHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.StatusCounts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

// ListDepartments は部署一覧を返す。
// GET /api/departments
func (h *EmployeeHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]departmentResponse, 0, len(departments))
	for _, d := range departments {
		resp = append(resp, toDepartmentResponse(d))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListPositions は職位一覧を返す。departmentIdクエリで絞り込める。
// GET /api/positions
func (h *EmployeeHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.ListPositions(r.Context(), r.URL.Query().Get("departmentId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		resp = append(resp, toPositionResponse(p))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

func toEmployeeResponse(e *model.Employee) employeeResponse {
	return employeeResponse{
		ID:               e.EmployeeID,
		UserID:           e.UserID,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		EmployeeCode:     e.EmployeeCode,
		Phone:            e.Phone,
		DepartmentID:     e.DepartmentID,
		PositionID:       e.PositionID,
		ManagerID:        e.ManagerID,
		JoinDate:         e.JoinDate.Format(dateLayout),
		EmploymentStatus: string(e.EmploymentStatus),
		EmploymentType:   string(e.EmploymentType),
	}
}

func toDepartmentResponse(d *model.Department) departmentResponse {
	return departmentResponse{
		ID:             d.DepartmentID,
		DepartmentName: d.DepartmentName,
		Description:    d.Description,
		HeadEmployeeID: d.HeadEmployeeID,
	}
}

func toPositionResponse(p *model.Position) positionResponse {
	return positionResponse{
		ID:            p.PositionID,
		PositionTitle: p.PositionTitle,
		DepartmentID:  p.DepartmentID,
		Description:   p.Description,
		Level:         p.Level,
	}
}

func toEmployeeProfileResponse(profile *model.EmployeeProfile) employeeProfileResponse {
	resp := employeeProfileResponse{
		employeeResponse: toEmployeeResponse(&profile.Employee),
		Email:            profile.Email,
	}
	if profile.Department != nil {
		d := toDepartmentResponse(profile.Department)
		resp.Department = &d
	}
	if profile.Position != nil {
		p := toPositionResponse(profile.Position)
		resp.Position = &p
	}
	return resp
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeUnauthorized は認証エラーレスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     model.ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}

// writeInvalidRequestBody はリクエストボディの解析エラーレスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeDuplicateRecord, model.ErrCodeInvalidTransition:
		return http.StatusConflict
	case model.ErrCodeInsufficientLeave:
		return http.StatusUnprocessableEntity
	case model.ErrCodeTransientStore:
		return http.StatusServiceUnavailable
	case model.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case model.ErrCodeProvisioningFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
