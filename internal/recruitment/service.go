// Package recruitment は採用管理のドメインロジックを提供する。
package recruitment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
	"github.com/hitoshi/teamify/internal/security"
)

// PostingInput は求人作成・更新の入力を表す。
type PostingInput struct {
	JobTitle       string
	DepartmentID   *string
	PositionID     *string
	Description    string
	Requirements   string
	EmploymentType model.EmploymentType
	Location       string
	SalaryRangeMin *float64
	SalaryRangeMax *float64
	Openings       int
	Status         model.PostingStatus
	ClosingDate    *time.Time
	PostedBy       *string
}

// ApplicantInput は応募者登録の入力を表す。
type ApplicantInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	ResumeURL    string
	CoverLetter  string
	LinkedInURL  string
	PortfolioURL string
}

// InterviewInput は面接予定作成の入力を表す。
type InterviewInput struct {
	ApplicationID string
	InterviewerID string
	ScheduledAt   time.Time
	Mode          string
	Location      string
}

// pipelineTransitions は選考状態の許可された遷移を表す。
// 却下はどの状態からでも可能。
var pipelineTransitions = map[model.ApplicationStatus][]model.ApplicationStatus{
	model.ApplicationSubmitted:   {model.ApplicationUnderReview, model.ApplicationRejected},
	model.ApplicationUnderReview: {model.ApplicationShortlisted, model.ApplicationRejected},
	model.ApplicationShortlisted: {model.ApplicationInterviewed, model.ApplicationRejected},
	model.ApplicationInterviewed: {model.ApplicationOffered, model.ApplicationRejected},
	model.ApplicationOffered:     {model.ApplicationHired, model.ApplicationRejected},
}

// Service は採用管理のサービス層。
// 応募者の外部URLは保存前にURLGuardで検証する。
type Service struct {
	recruitmentRepo repository.RecruitmentRepository
	urlGuard        security.URLGuardService
	sanitizer       security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	recruitmentRepo repository.RecruitmentRepository,
	urlGuard security.URLGuardService,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		recruitmentRepo: recruitmentRepo,
		urlGuard:        urlGuard,
		sanitizer:       sanitizer,
	}
}

// CreatePosting は求人を作成する。
func (s *Service) CreatePosting(ctx context.Context, input PostingInput) (*model.JobPosting, error) {
	if input.JobTitle == "" {
		return nil, model.NewValidationError("求人タイトルは必須です")
	}
	if input.SalaryRangeMin != nil && input.SalaryRangeMax != nil && *input.SalaryRangeMax < *input.SalaryRangeMin {
		return nil, model.NewValidationError("給与上限は下限以上を指定してください")
	}

	status := input.Status
	if status == "" {
		status = model.PostingDraft
	}
	openings := input.Openings
	if openings <= 0 {
		openings = 1
	}

	posting := &model.JobPosting{
		JobPostingID:   uuid.New().String(),
		JobTitle:       s.sanitizer.SanitizeText(input.JobTitle),
		DepartmentID:   input.DepartmentID,
		PositionID:     input.PositionID,
		Description:    s.sanitizer.SanitizeRichText(input.Description),
		Requirements:   s.sanitizer.SanitizeRichText(input.Requirements),
		EmploymentType: input.EmploymentType,
		Location:       input.Location,
		SalaryRangeMin: input.SalaryRangeMin,
		SalaryRangeMax: input.SalaryRangeMax,
		Openings:       openings,
		Status:         status,
		ClosingDate:    input.ClosingDate,
		PostedBy:       input.PostedBy,
	}
	if status == model.PostingActive {
		now := time.Now()
		posting.PostedDate = &now
	}

	if err := s.recruitmentRepo.CreatePosting(ctx, posting); err != nil {
		return nil, fmt.Errorf("求人の作成に失敗しました: %w", err)
	}
	return posting, nil
}

// GetPosting は指定IDの求人を返す。
func (s *Service) GetPosting(ctx context.Context, postingID string) (*model.JobPosting, error) {
	posting, err := s.recruitmentRepo.FindPostingByID(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if posting == nil {
		return nil, model.NewNotFoundError("求人", postingID)
	}
	return posting, nil
}

// UpdatePosting は求人を更新する。
func (s *Service) UpdatePosting(ctx context.Context, postingID string, input PostingInput) (*model.JobPosting, error) {
	posting, err := s.recruitmentRepo.FindPostingByID(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if posting == nil {
		return nil, model.NewNotFoundError("求人", postingID)
	}

	if input.JobTitle != "" {
		posting.JobTitle = s.sanitizer.SanitizeText(input.JobTitle)
	}
	if input.Description != "" {
		posting.Description = s.sanitizer.SanitizeRichText(input.Description)
	}
	if input.Requirements != "" {
		posting.Requirements = s.sanitizer.SanitizeRichText(input.Requirements)
	}
	if input.EmploymentType != "" {
		posting.EmploymentType = input.EmploymentType
	}
	if input.Location != "" {
		posting.Location = input.Location
	}
	posting.SalaryRangeMin = input.SalaryRangeMin
	posting.SalaryRangeMax = input.SalaryRangeMax
	if input.Openings > 0 {
		posting.Openings = input.Openings
	}
	if input.ClosingDate != nil {
		posting.ClosingDate = input.ClosingDate
	}
	if input.Status != "" {
		// DRAFTからACTIVEに公開された時点で掲載日を記録
		if posting.Status != model.PostingActive && input.Status == model.PostingActive && posting.PostedDate == nil {
			now := time.Now()
			posting.PostedDate = &now
		}
		posting.Status = input.Status
	}

	if err := s.recruitmentRepo.UpdatePosting(ctx, posting); err != nil {
		return nil, fmt.Errorf("求人の更新に失敗しました: %w", err)
	}
	return posting, nil
}

// DeletePosting は求人を削除する。
func (s *Service) DeletePosting(ctx context.Context, postingID string) error {
	posting, err := s.recruitmentRepo.FindPostingByID(ctx, postingID)
	if err != nil {
		return fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if posting == nil {
		return model.NewNotFoundError("求人", postingID)
	}
	if err := s.recruitmentRepo.DeletePosting(ctx, postingID); err != nil {
		return fmt.Errorf("求人の削除に失敗しました: %w", err)
	}
	return nil
}

// ListPostings は求人一覧を返す。statusが空でない場合は状態で絞り込む。
func (s *Service) ListPostings(ctx context.Context, status model.PostingStatus) ([]*model.JobPosting, error) {
	var (
		postings []*model.JobPosting
		err      error
	)
	if status != "" {
		postings, err = s.recruitmentRepo.ListPostingsByStatus(ctx, status)
	} else {
		postings, err = s.recruitmentRepo.ListPostings(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	return postings, nil
}

// CreateApplicant は応募者を登録する。外部URLは全て検証する。
func (s *Service) CreateApplicant(ctx context.Context, input ApplicantInput) (*model.Applicant, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" {
		return nil, model.NewValidationError("氏名とメールアドレスは必須です")
	}

	for _, rawURL := range []string{input.ResumeURL, input.LinkedInURL, input.PortfolioURL} {
		if rawURL == "" {
			continue
		}
		if err := s.urlGuard.ValidateURL(rawURL); err != nil {
			return nil, model.NewInvalidURLError(err.Error())
		}
	}

	applicant := &model.Applicant{
		ApplicantID:  uuid.New().String(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		ResumeURL:    input.ResumeURL,
		CoverLetter:  s.sanitizer.SanitizeText(input.CoverLetter),
		LinkedInURL:  input.LinkedInURL,
		PortfolioURL: input.PortfolioURL,
	}
	if err := s.recruitmentRepo.CreateApplicant(ctx, applicant); err != nil {
		return nil, fmt.Errorf("応募者の登録に失敗しました: %w", err)
	}
	return applicant, nil
}

// GetApplicant は指定IDの応募者を返す。
func (s *Service) GetApplicant(ctx context.Context, applicantID string) (*model.Applicant, error) {
	applicant, err := s.recruitmentRepo.FindApplicantByID(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("応募者の取得に失敗しました: %w", err)
	}
	if applicant == nil {
		return nil, model.NewNotFoundError("応募者", applicantID)
	}
	return applicant, nil
}

// Apply は求人への応募を作成する。公開中の求人のみ受け付ける。
func (s *Service) Apply(ctx context.Context, postingID, applicantID, notes string) (*model.Application, error) {
	posting, err := s.recruitmentRepo.FindPostingByID(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if posting == nil {
		return nil, model.NewNotFoundError("求人", postingID)
	}
	if posting.Status != model.PostingActive {
		return nil, model.NewValidationError("公開中の求人にのみ応募できます")
	}

	applicant, err := s.recruitmentRepo.FindApplicantByID(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("応募者の取得に失敗しました: %w", err)
	}
	if applicant == nil {
		return nil, model.NewNotFoundError("応募者", applicantID)
	}

	app := &model.Application{
		ApplicationID:   uuid.New().String(),
		JobPostingID:    postingID,
		ApplicantID:     applicantID,
		ApplicationDate: time.Now(),
		Status:          model.ApplicationSubmitted,
		CurrentStage:    "書類選考",
		Notes:           s.sanitizer.SanitizeText(notes),
	}
	if err := s.recruitmentRepo.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListApplications は応募一覧を返す。postingIDが空でない場合は求人で絞り込む。
func (s *Service) ListApplications(ctx context.Context, postingID string) ([]*model.Application, error) {
	var (
		apps []*model.Application
		err  error
	)
	if postingID != "" {
		apps, err = s.recruitmentRepo.ListApplicationsByPosting(ctx, postingID)
	} else {
		apps, err = s.recruitmentRepo.ListApplications(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}

// AdvanceApplication は応募の選考状態を遷移させる。
// 許可された遷移のみ受け付け、却下はどの状態からでも可能。
func (s *Service) AdvanceApplication(ctx context.Context, applicationID string, to model.ApplicationStatus, stage string, reviewerID *string) (*model.Application, error) {
	if !to.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不正な選考状態です: %s", to))
	}

	app, err := s.recruitmentRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	if app == nil {
		return nil, model.NewNotFoundError("応募", applicationID)
	}

	if !transitionAllowed(app.Status, to) {
		return nil, model.NewInvalidTransitionError(string(app.Status), string(to))
	}

	if stage == "" {
		stage = defaultStage(to)
	}
	if err := s.recruitmentRepo.UpdateApplicationStatus(ctx, applicationID, to, stage, reviewerID); err != nil {
		return nil, fmt.Errorf("選考状態の更新に失敗しました: %w", err)
	}

	app.Status = to
	app.CurrentStage = stage
	app.ReviewedBy = reviewerID
	return app, nil
}

// ScheduleInterview は面接予定を作成する。
func (s *Service) ScheduleInterview(ctx context.Context, input InterviewInput) (*model.Interview, error) {
	if input.ApplicationID == "" || input.InterviewerID == "" {
		return nil, model.NewValidationError("応募IDと面接官IDは必須です")
	}
	if input.ScheduledAt.IsZero() {
		return nil, model.NewValidationError("面接日時は必須です")
	}

	app, err := s.recruitmentRepo.FindApplicationByID(ctx, input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	if app == nil {
		return nil, model.NewNotFoundError("応募", input.ApplicationID)
	}

	interview := &model.Interview{
		InterviewID:   uuid.New().String(),
		ApplicationID: input.ApplicationID,
		InterviewerID: input.InterviewerID,
		ScheduledAt:   input.ScheduledAt,
		Mode:          input.Mode,
		Location:      input.Location,
	}
	if err := s.recruitmentRepo.CreateInterview(ctx, interview); err != nil {
		return nil, fmt.Errorf("面接予定の作成に失敗しました: %w", err)
	}
	return interview, nil
}

// ListInterviews は指定応募の面接一覧を返す。
func (s *Service) ListInterviews(ctx context.Context, applicationID string) ([]*model.Interview, error) {
	interviews, err := s.recruitmentRepo.ListInterviewsByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("面接一覧の取得に失敗しました: %w", err)
	}
	return interviews, nil
}

// RecordFeedback は面接のフィードバックと評点を記録する。
func (s *Service) RecordFeedback(ctx context.Context, interviewID, feedback string, rating *float64) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return model.NewValidationError(fmt.Sprintf("評点は1〜5の範囲で入力してください: %.1f", *rating))
	}
	feedback = s.sanitizer.SanitizeText(feedback)
	if err := s.recruitmentRepo.UpdateInterviewFeedback(ctx, interviewID, feedback, rating); err != nil {
		return fmt.Errorf("面接フィードバックの記録に失敗しました: %w", err)
	}
	return nil
}

// transitionAllowed は選考状態の遷移が許可されているかを返す。
func transitionAllowed(from, to model.ApplicationStatus) bool {
	for _, allowed := range pipelineTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// defaultStage は選考状態に対応する既定の選考ステージ名を返す。
func defaultStage(status model.ApplicationStatus) string {
	switch status {
	case model.ApplicationUnderReview:
		return "書類選考"
	case model.ApplicationShortlisted:
		return "一次選考通過"
	case model.ApplicationInterviewed:
		return "面接"
	case model.ApplicationOffered:
		return "内定"
	case model.ApplicationHired:
		return "入社手続き"
	case model.ApplicationRejected:
		return "不採用"
	}
	return ""
}
