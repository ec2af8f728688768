package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/middleware"
	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/payroll"
)

// PayrollServiceInterface は給与ハンドラーが必要とするサービスインターフェース。
type PayrollServiceInterface interface {
	Create(ctx context.Context, input payroll.CreateInput) (*model.Payroll, error)
	Get(ctx context.Context, payrollID string) (*model.Payroll, error)
	Update(ctx context.Context, payrollID string, input payroll.UpdateInput) (*model.Payroll, error)
	Process(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (*model.Payroll, error)
	MarkPaid(ctx context.Context, payrollID string, paymentDate time.Time) (*model.Payroll, error)
	List(ctx context.Context, employeeID string) ([]*model.Payroll, error)
	ListByPeriod(ctx context.Context, start, end time.Time) ([]*model.Payroll, error)
	GenerateDrafts(ctx context.Context, periodStart, periodEnd time.Time, defaultBasicSalary float64) (*payroll.RunResult, error)
}

// RoleFinder はログインユーザーのロール判定のためのインターフェース。
// repository.UserRepositoryを直接要求せず、最小限のインターフェースとして定義する。
type RoleFinder interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID string) (*model.User, error)
}

// PayrollHandler は給与管理のHTTPハンドラー。
// 給与の変更系操作はHR_ADMINロールのみ許可する。
type PayrollHandler struct {
	service    PayrollServiceInterface
	roleFinder RoleFinder
}

// NewPayrollHandler はPayrollHandlerを生成する。
func NewPayrollHandler(service PayrollServiceInterface, roleFinder RoleFinder) *PayrollHandler {
	return &PayrollHandler{
		service:    service,
		roleFinder: roleFinder,
	}
}

// payrollCreateBody は給与レコード作成リクエストのボディ。
type payrollCreateBody struct {
	EmployeeID     string  `json:"employeeId"`
	PayPeriodStart string  `json:"payPeriodStart"`
	PayPeriodEnd   string  `json:"payPeriodEnd"`
	BasicSalary    float64 `json:"basicSalary"`
	Allowances     float64 `json:"allowances"`
	Deductions     float64 `json:"deductions"`
	Notes          string  `json:"notes"`
}

// payrollUpdateBody は給与レコード更新リクエストのボディ。
type payrollUpdateBody struct {
	BasicSalary float64 `json:"basicSalary"`
	Allowances  float64 `json:"allowances"`
	Deductions  float64 `json:"deductions"`
	Notes       string  `json:"notes"`
}

// payrollProcessBody は給与処理リクエストのボディ。
type payrollProcessBody struct {
	PaymentMethod        string `json:"paymentMethod"`
	TransactionReference string `json:"transactionReference"`
}

// payrollMarkPaidBody は支払完了リクエストのボディ。
type payrollMarkPaidBody struct {
	PaymentDate string `json:"paymentDate"`
}

// payrollRunBody は月次ドラフト一括生成リクエストのボディ。
type payrollRunBody struct {
	PeriodStart        string  `json:"periodStart"`
	PeriodEnd          string  `json:"periodEnd"`
	DefaultBasicSalary float64 `json:"defaultBasicSalary"`
}

// payrollResponse は給与レコードのAPIレスポンス。
type payrollResponse struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employeeId"`
	PayPeriodStart       string     `json:"payPeriodStart"`
	PayPeriodEnd         string     `json:"payPeriodEnd"`
	PaymentDate          *time.Time `json:"paymentDate,omitempty"`
	BasicSalary          float64    `json:"basicSalary"`
	Allowances           float64    `json:"allowances"`
	Deductions           float64    `json:"deductions"`
	GrossSalary          float64    `json:"grossSalary"`
	NetSalary            float64    `json:"netSalary"`
	Status               string     `json:"status"`
	PaymentMethod        *string    `json:"paymentMethod,omitempty"`
	TransactionReference string     `json:"transactionReference,omitempty"`
	Notes                string     `json:"notes,omitempty"`
}

// Create は給与レコードを作成する。
// POST /api/payroll
func (h *PayrollHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireHRAdmin(w, r) {
		return
	}

	var req payrollCreateBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	start, err := time.Parse(dateLayout, req.PayPeriodStart)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("支給期間開始日はYYYY-MM-DD形式で指定してください"))
		return
	}
	end, err := time.Parse(dateLayout, req.PayPeriodEnd)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("支給期間終了日はYYYY-MM-DD形式で指定してください"))
		return
	}

	created, err := h.service.Create(r.Context(), payroll.CreateInput{
		EmployeeID:     req.EmployeeID,
		PayPeriodStart: start,
		PayPeriodEnd:   end,
		BasicSalary:    req.BasicSalary,
		Allowances:     req.Allowances,
		Deductions:     req.Deductions,
		Notes:          req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPayrollResponse(created))
}

// Get は給与レコードの詳細を返す。
// GET /api/payroll/:id
func (h *PayrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayrollResponse(record))
}

// Update はドラフト状態の給与レコードを更新する。
// PUT /api/payroll/:id
func (h *PayrollHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireHRAdmin(w, r) {
		return
	}

	var req payrollUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payroll.UpdateInput{
		BasicSalary: req.BasicSalary,
		Allowances:  req.Allowances,
		Deductions:  req.Deductions,
		Notes:       req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayrollResponse(updated))
}

// Process は給与をDRAFTからPROCESSEDに遷移させる。
// POST /api/payroll/:id/process
func (h *PayrollHandler) Process(w http.ResponseWriter, r *http.Request) {
	if !h.requireHRAdmin(w, r) {
		return
	}

	var req payrollProcessBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	processed, err := h.service.Process(r.Context(), chi.URLParam(r, "id"), model.PaymentMethod(req.PaymentMethod), req.TransactionReference)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayrollResponse(processed))
}

// MarkPaid は給与をPROCESSEDからPAIDに遷移させる。
// POST /api/payroll/:id/pay
func (h *PayrollHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	if !h.requireHRAdmin(w, r) {
		return
	}

	var req payrollMarkPaidBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("支払日はYYYY-MM-DD形式で指定してください"))
		return
	}

	paid, err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "id"), paymentDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayrollResponse(paid))
}

// List は給与レコード一覧を返す。
// employeeIdクエリで従業員の給与履歴、start/endクエリで期間絞り込み。
// GET /api/payroll
func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		records []*model.Payroll
		err     error
	)

	if q.Get("start") != "" && q.Get("end") != "" {
		start, parseErr := time.Parse(dateLayout, q.Get("start"))
		if parseErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("startはYYYY-MM-DD形式で指定してください"))
			return
		}
		end, parseErr := time.Parse(dateLayout, q.Get("end"))
		if parseErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("endはYYYY-MM-DD形式で指定してください"))
			return
		}
		records, err = h.service.ListByPeriod(r.Context(), start, end)
	} else {
		records, err = h.service.List(r.Context(), q.Get("employeeId"))
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]payrollResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toPayrollResponse(record))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Run は期間内のACTIVE従業員全員分のドラフト給与を一括生成する。
// POST /api/payroll/run
func (h *PayrollHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.requireHRAdmin(w, r) {
		return
	}

	var req payrollRunBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	start, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("periodStartはYYYY-MM-DD形式で指定してください"))
		return
	}
	end, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("periodEndはYYYY-MM-DD形式で指定してください"))
		return
	}

	result, err := h.service.GenerateDrafts(r.Context(), start, end, req.DefaultBasicSalary)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// --- ヘルパー関数 ---

// requireHRAdmin はログインユーザーがHR_ADMINであることを確認する。
// 満たさない場合はエラーレスポンスを書き込みfalseを返す。
func (h *PayrollHandler) requireHRAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return false
	}

	user, err := h.roleFinder.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return false
	}

	if user == nil || user.Role != model.RoleHRAdmin {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return false
	}

	return true
}

func toPayrollResponse(p *model.Payroll) payrollResponse {
	var method *string
	if p.PaymentMethod != nil {
		m := string(*p.PaymentMethod)
		method = &m
	}
	return payrollResponse{
		ID:                   p.PayrollID,
		EmployeeID:           p.EmployeeID,
		PayPeriodStart:       p.PayPeriodStart.Format(dateLayout),
		PayPeriodEnd:         p.PayPeriodEnd.Format(dateLayout),
		PaymentDate:          p.PaymentDate,
		BasicSalary:          p.BasicSalary,
		Allowances:           p.Allowances,
		Deductions:           p.Deductions,
		GrossSalary:          p.GrossSalary,
		NetSalary:            p.NetSalary,
		Status:               string(p.Status),
		PaymentMethod:        method,
		TransactionReference: p.TransactionReference,
		Notes:                p.Notes,
	}
}
