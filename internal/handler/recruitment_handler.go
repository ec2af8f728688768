package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamify/internal/middleware"
	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/recruitment"
)

// RecruitmentServiceInterface は採用ハンドラーが必要とするサービスインターフェース。
type RecruitmentServiceInterface interface {
	CreatePosting(ctx context.Context, input recruitment.PostingInput) (*model.JobPosting, error)
	GetPosting(ctx context.Context, postingID string) (*model.JobPosting, error)
	UpdatePosting(ctx context.Context, postingID string, input recruitment.PostingInput) (*model.JobPosting, error)
	DeletePosting(ctx context.Context, postingID string) error
	ListPostings(ctx context.Context, status model.PostingStatus) ([]*model.JobPosting, error)
	CreateApplicant(ctx context.Context, input recruitment.ApplicantInput) (*model.Applicant, error)
	GetApplicant(ctx context.Context, applicantID string) (*model.Applicant, error)
	Apply(ctx context.Context, postingID, applicantID, notes string) (*model.Application, error)
	ListApplications(ctx context.Context, postingID string) ([]*model.Application, error)
	AdvanceApplication(ctx context.Context, applicationID string, to model.ApplicationStatus, stage string, reviewerID *string) (*model.Application, error)
	ScheduleInterview(ctx context.Context, input recruitment.InterviewInput) (*model.Interview, error)
	ListInterviews(ctx context.Context, applicationID string) ([]*model.Interview, error)
	RecordFeedback(ctx context.Context, interviewID, feedback string, rating *float64) error
}

// RecruitmentHandler は採用管理のHTTPハンドラー。
type RecruitmentHandler struct {
	service RecruitmentServiceInterface
}

// NewRecruitmentHandler はRecruitmentHandlerを生成する。
func NewRecruitmentHandler(service RecruitmentServiceInterface) *RecruitmentHandler {
	return &RecruitmentHandler{service: service}
}

// postingRequestBody は求人の作成・更新リクエストのボディ。
type postingRequestBody struct {
	JobTitle       string     `json:"jobTitle"`
	DepartmentID   *string    `json:"departmentId"`
	PositionID     *string    `json:"positionId"`
	Description    string     `json:"description"`
	Requirements   string     `json:"requirements"`
	EmploymentType string     `json:"employmentType"`
	Location       string     `json:"location"`
	SalaryRangeMin *float64   `json:"salaryRangeMin"`
	SalaryRangeMax *float64   `json:"salaryRangeMax"`
	Openings       int        `json:"openings"`
	Status         string     `json:"status"`
	ClosingDate    *time.Time `json:"closingDate"`
}

// applicantRequestBody は応募者登録リクエストのボディ。
type applicantRequestBody struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ResumeURL    string `json:"resumeUrl"`
	CoverLetter  string `json:"coverLetter"`
	LinkedInURL  string `json:"linkedinUrl"`
	PortfolioURL string `json:"portfolioUrl"`
}

// applyRequestBody は応募リクエストのボディ。
type applyRequestBody struct {
	ApplicantID string `json:"applicantId"`
	Notes       string `json:"notes"`
}

// advanceRequestBody は選考ステータス遷移リクエストのボディ。
type advanceRequestBody struct {
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

// interviewRequestBody は面接予定リクエストのボディ。
type interviewRequestBody struct {
	ApplicationID string    `json:"applicationId"`
	InterviewerID string    `json:"interviewerId"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Mode          string    `json:"mode"`
	Location      string    `json:"location"`
}

// feedbackRequestBody は面接フィードバックリクエストのボディ。
type feedbackRequestBody struct {
	Feedback string   `json:"feedback"`
	Rating   *float64 `json:"rating"`
}

// postingResponse は求人のAPIレスポンス。
type postingResponse struct {
	ID             string     `json:"id"`
	JobTitle       string     `json:"jobTitle"`
	DepartmentID   *string    `json:"departmentId,omitempty"`
	PositionID     *string    `json:"positionId,omitempty"`
	Description    string     `json:"description,omitempty"`
	Requirements   string     `json:"requirements,omitempty"`
	EmploymentType string     `json:"employmentType"`
	Location       string     `json:"location,omitempty"`
	SalaryRangeMin *float64   `json:"salaryRangeMin,omitempty"`
	SalaryRangeMax *float64   `json:"salaryRangeMax,omitempty"`
	Openings       int        `json:"openings"`
	Status         string     `json:"status"`
	PostedDate     *time.Time `json:"postedDate,omitempty"`
	ClosingDate    *time.Time `json:"closingDate,omitempty"`
}

// applicantResponse は応募者のAPIレスポンス。
type applicantResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	ResumeURL    string `json:"resumeUrl,omitempty"`
	CoverLetter  string `json:"coverLetter,omitempty"`
	LinkedInURL  string `json:"linkedinUrl,omitempty"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`
}

// applicationResponse は応募のAPIレスポンス。
type applicationResponse struct {
	ID              string  `json:"id"`
	JobPostingID    string  `json:"jobPostingId"`
	ApplicantID     string  `json:"applicantId"`
	ApplicationDate string  `json:"applicationDate"`
	Status          string  `json:"status"`
	CurrentStage    string  `json:"currentStage,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	ReviewedBy      *string `json:"reviewedBy,omitempty"`
}

// interviewResponse は面接のAPIレスポンス。
type interviewResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	InterviewerID string    `json:"interviewerId"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Mode          string    `json:"mode,omitempty"`
	Location      string    `json:"location,omitempty"`
	Feedback      string    `json:"feedback,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
}

// CreatePosting は求人を作成する。
// POST /api/recruitment/postings
func (h *RecruitmentHandler) CreatePosting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req postingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	posting, err := h.service.CreatePosting(r.Context(), toPostingInput(req, &userID))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPostingResponse(posting))
}

// GetPosting は求人の詳細を返す。
// GET /api/recruitment/postings/:id
func (h *RecruitmentHandler) GetPosting(w http.ResponseWriter, r *http.Request) {
	posting, err := h.service.GetPosting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostingResponse(posting))
}

// UpdatePosting は求人を更新する。
// PUT /api/recruitment/postings/:id
func (h *RecruitmentHandler) UpdatePosting(w http.ResponseWriter, r *http.Request) {
	var req postingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	posting, err := h.service.UpdatePosting(r.Context(), chi.URLParam(r, "id"), toPostingInput(req, nil))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostingResponse(posting))
}

// DeletePosting は求人を削除する。
// DELETE /api/recruitment/postings/:id
func (h *RecruitmentHandler) DeletePosting(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePosting(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPostings は求人一覧を返す。statusクエリで絞り込める。
// GET /api/recruitment/postings
func (h *RecruitmentHandler) ListPostings(w http.ResponseWriter, r *http.Request) {
	postings, err := h.service.ListPostings(r.Context(), model.PostingStatus(r.URL.Query().Get("status")))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]postingResponse, 0, len(postings))
	for _, posting := range postings {
		resp = append(resp, toPostingResponse(posting))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateApplicant は応募者を登録する。
// POST /api/recruitment/applicants
func (h *RecruitmentHandler) CreateApplicant(w http.ResponseWriter, r *http.Request) {
	var req applicantRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	applicant, err := h.service.CreateApplicant(r.Context(), recruitment.ApplicantInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		ResumeURL:    req.ResumeURL,
		CoverLetter:  req.CoverLetter,
		LinkedInURL:  req.LinkedInURL,
		PortfolioURL: req.PortfolioURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toApplicantResponse(applicant))
}

// GetApplicant は応募者の詳細を返す。
// GET /api/recruitment/applicants/:id
func (h *RecruitmentHandler) GetApplicant(w http.ResponseWriter, r *http.Request) {
	applicant, err := h.service.GetApplicant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicantResponse(applicant))
}

// Apply は求人への応募を登録する。
// POST /api/recruitment/postings/:id/applications
func (h *RecruitmentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	application, err := h.service.Apply(r.Context(), chi.URLParam(r, "id"), req.ApplicantID, req.Notes)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toApplicationResponse(application))
}

// ListApplications は求人への応募一覧を返す。
// GET /api/recruitment/postings/:id/applications
func (h *RecruitmentHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := h.service.ListApplications(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]applicationResponse, 0, len(applications))
	for _, application := range applications {
		resp = append(resp, toApplicationResponse(application))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// AdvanceApplication は応募の選考ステータスを遷移させる。
// レビュアーはログインユーザー。
// POST /api/recruitment/applications/:id/advance
func (h *RecruitmentHandler) AdvanceApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req advanceRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	application, err := h.service.AdvanceApplication(r.Context(), chi.URLParam(r, "id"), model.ApplicationStatus(req.Status), req.Stage, &userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicationResponse(application))
}

// ScheduleInterview は面接を予定する。
// POST /api/recruitment/interviews
func (h *RecruitmentHandler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req interviewRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	interview, err := h.service.ScheduleInterview(r.Context(), recruitment.InterviewInput{
		ApplicationID: req.ApplicationID,
		InterviewerID: req.InterviewerID,
		ScheduledAt:   req.ScheduledAt,
		Mode:          req.Mode,
		Location:      req.Location,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toInterviewResponse(interview))
}

// ListInterviews は応募に紐づく面接の一覧を返す。
// GET /api/recruitment/applications/:id/interviews
func (h *RecruitmentHandler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := h.service.ListInterviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]interviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		resp = append(resp, toInterviewResponse(interview))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RecordFeedback は面接フィードバックを記録する。
// POST /api/recruitment/interviews/:id/feedback
func (h *RecruitmentHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.RecordFeedback(r.Context(), chi.URLParam(r, "id"), req.Feedback, req.Rating); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

func toPostingInput(req postingRequestBody, postedBy *string) recruitment.PostingInput {
	return recruitment.PostingInput{
		JobTitle:       req.JobTitle,
		DepartmentID:   req.DepartmentID,
		PositionID:     req.PositionID,
		Description:    req.Description,
		Requirements:   req.Requirements,
		EmploymentType: model.EmploymentType(req.EmploymentType),
		Location:       req.Location,
		SalaryRangeMin: req.SalaryRangeMin,
		SalaryRangeMax: req.SalaryRangeMax,
		Openings:       req.Openings,
		Status:         model.PostingStatus(req.Status),
		ClosingDate:    req.ClosingDate,
		PostedBy:       postedBy,
	}
}

func toPostingResponse(p *model.JobPosting) postingResponse {
	return postingResponse{
		ID:             p.JobPostingID,
		JobTitle:       p.JobTitle,
		DepartmentID:   p.DepartmentID,
		PositionID:     p.PositionID,
		Description:    p.Description,
		Requirements:   p.Requirements,
		EmploymentType: string(p.EmploymentType),
		Location:       p.Location,
		SalaryRangeMin: p.SalaryRangeMin,
		SalaryRangeMax: p.SalaryRangeMax,
		Openings:       p.Openings,
		Status:         string(p.Status),
		PostedDate:     p.PostedDate,
		ClosingDate:    p.ClosingDate,
	}
}

func toApplicantResponse(a *model.Applicant) applicantResponse {
	return applicantResponse{
		ID:           a.ApplicantID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		Phone:        a.Phone,
		ResumeURL:    a.ResumeURL,
		CoverLetter:  a.CoverLetter,
		LinkedInURL:  a.LinkedInURL,
		PortfolioURL: a.PortfolioURL,
	}
}

func toApplicationResponse(a *model.Application) applicationResponse {
	return applicationResponse{
		ID:              a.ApplicationID,
		JobPostingID:    a.JobPostingID,
		ApplicantID:     a.ApplicantID,
		ApplicationDate: a.ApplicationDate.Format(dateLayout),
		Status:          string(a.Status),
		CurrentStage:    a.CurrentStage,
		Notes:           a.Notes,
		ReviewedBy:      a.ReviewedBy,
	}
}

func toInterviewResponse(i *model.Interview) interviewResponse {
	return interviewResponse{
		ID:            i.InterviewID,
		ApplicationID: i.ApplicationID,
		InterviewerID: i.InterviewerID,
		ScheduledAt:   i.ScheduledAt,
		Mode:          i.Mode,
		Location:      i.Location,
		Feedback:      i.Feedback,
		Rating:        i.Rating,
	}
}
