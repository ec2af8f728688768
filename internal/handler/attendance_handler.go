package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/attendance"
	"github.com/hitoshi/teamify/internal/model"
)

// AttendanceServiceInterface は勤怠ハンドラーが必要とするサービスインターフェース。
type AttendanceServiceInterface interface {
	Mark(ctx context.Context, input attendance.MarkInput) (*model.Attendance, error)
	Update(ctx context.Context, attendanceID string, input attendance.MarkInput) (*model.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]*model.Attendance, error)
	ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error)
	TodaySummary(ctx context.Context, now time.Time) (*attendance.DaySummary, error)
	MonthlyEmployeeStats(ctx context.Context, employeeID string, year int, month time.Month) (*attendance.MonthlyStats, error)
	ListHolidays(ctx context.Context, start, end time.Time) ([]*model.Holiday, error)
}

// AttendanceHandler は勤怠管理のHTTPハンドラー。
type AttendanceHandler struct {
	service AttendanceServiceInterface
	now     func() time.Time
}

// NewAttendanceHandler はAttendanceHandlerを生成する。
func NewAttendanceHandler(service AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		now:     time.Now,
	}
}

// attendanceRequest は勤怠記録の打刻・更新リクエストのボディ。
type attendanceRequest struct {
	EmployeeID   string     `json:"employeeId"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	Status       string     `json:"status"`
	Location     string     `json:"location"`
	Notes        string     `json:"notes"`
}

// attendanceResponse は勤怠記録のAPIレスポンス。
type attendanceResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	Status       string     `json:"status"`
	WorkHours    *float64   `json:"workHours,omitempty"`
	Location     string     `json:"location,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// holidayResponse は会社休日のAPIレスポンス。
type holidayResponse struct {
	ID          string `json:"id"`
	HolidayName string `json:"holidayName"`
	HolidayDate string `json:"holidayDate"`
	IsMandatory bool   `json:"isMandatory"`
}

// Mark は勤怠を打刻する。
// POST /api/attendance
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMarkInput(w, r)
	if !ok {
		return
	}

	record, err := h.service.Mark(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAttendanceResponse(record))
}

// Update は勤怠記録を更新する。
// PUT /api/attendance/:id
func (h *AttendanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMarkInput(w, r)
	if !ok {
		return
	}

	record, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAttendanceResponse(record))
}

// List は勤怠記録一覧を返す。
// employeeIdクエリ指定時はstart/endの範囲で、未指定時はdateの1日分を返す。
// GET /api/attendance
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		records []*model.Attendance
		err     error
	)

	if employeeID := q.Get("employeeId"); employeeID != "" {
		start, parseErr := parseDateQuery(q.Get("start"), h.now().AddDate(0, -1, 0))
		if parseErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("startはYYYY-MM-DD形式で指定してください"))
			return
		}
		end, parseErr := parseDateQuery(q.Get("end"), h.now())
		if parseErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("endはYYYY-MM-DD形式で指定してください"))
			return
		}
		records, err = h.service.ListByEmployee(r.Context(), employeeID, start, end)
	} else {
		date, parseErr := parseDateQuery(q.Get("date"), h.now())
		if parseErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("dateはYYYY-MM-DD形式で指定してください"))
			return
		}
		records, err = h.service.ListByDate(r.Context(), date)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]attendanceResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toAttendanceResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// TodaySummary は当日の出勤状況サマリーを返す。
// GET /api/attendance/today
func (h *AttendanceHandler) TodaySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.TodaySummary(r.Context(), h.now())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// MonthlyStats は従業員の月次勤怠統計を返す。
// GET /api/attendance/stats/:employeeId?year=2026&month=8
func (h *AttendanceHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	year := now.Year()
	month := now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("yearは整数で指定してください"))
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("monthは1〜12で指定してください"))
			return
		}
		month = time.Month(parsed)
	}

	stats, err := h.service.MonthlyEmployeeStats(r.Context(), chi.URLParam(r, "employeeId"), year, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ListHolidays は期間内の会社休日一覧を返す。
// GET /api/attendance/holidays?start=...&end=...
func (h *AttendanceHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	start, err := parseDateQuery(r.URL.Query().Get("start"), time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("startはYYYY-MM-DD形式で指定してください"))
		return
	}
	end, err := parseDateQuery(r.URL.Query().Get("end"), time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("endはYYYY-MM-DD形式で指定してください"))
		return
	}

	holidays, err := h.service.ListHolidays(r.Context(), start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]holidayResponse, 0, len(holidays))
	for _, holiday := range holidays {
		resp = append(resp, holidayResponse{
			ID:          holiday.HolidayID,
			HolidayName: holiday.HolidayName,
			HolidayDate: holiday.HolidayDate.Format(dateLayout),
			IsMandatory: holiday.IsMandatory,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

func (h *AttendanceHandler) decodeMarkInput(w http.ResponseWriter, r *http.Request) (attendance.MarkInput, bool) {
	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return attendance.MarkInput{}, false
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("日付はYYYY-MM-DD形式で指定してください"))
		return attendance.MarkInput{}, false
	}

	return attendance.MarkInput{
		EmployeeID:   req.EmployeeID,
		Date:         date,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		Status:       model.AttendanceStatus(req.Status),
		Location:     req.Location,
		Notes:        req.Notes,
	}, true
}

func toAttendanceResponse(a *model.Attendance) attendanceResponse {
	return attendanceResponse{
		ID:           a.AttendanceID,
		EmployeeID:   a.EmployeeID,
		Date:         a.Date.Format(dateLayout),
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Status:       string(a.Status),
		WorkHours:    a.WorkHours,
		Location:     a.Location,
		Notes:        a.Notes,
	}
}

// parseDateQuery はクエリパラメータの日付を解析する。空文字の場合はフォールバック値を返す。
func parseDateQuery(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse(dateLayout, value)
}
