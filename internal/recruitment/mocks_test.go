package recruitment

import (
	"context"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockRecruitmentRepo はRecruitmentRepositoryのモック。
type mockRecruitmentRepo struct {
	createPostingFn           func(ctx context.Context, posting *model.JobPosting) error
	findPostingByIDFn         func(ctx context.Context, postingID string) (*model.JobPosting, error)
	updatePostingFn           func(ctx context.Context, posting *model.JobPosting) error
	deletePostingFn           func(ctx context.Context, postingID string) error
	createApplicantFn         func(ctx context.Context, applicant *model.Applicant) error
	findApplicantByIDFn       func(ctx context.Context, applicantID string) (*model.Applicant, error)
	createApplicationFn       func(ctx context.Context, app *model.Application) error
	findApplicationByIDFn     func(ctx context.Context, applicationID string) (*model.Application, error)
	updateApplicationStatusFn func(ctx context.Context, applicationID string, status model.ApplicationStatus, stage string, reviewerID *string) error
	createInterviewFn         func(ctx context.Context, interview *model.Interview) error
	updateFeedbackFn          func(ctx context.Context, interviewID, feedback string, rating *float64) error
}

func (m *mockRecruitmentRepo) CreatePosting(ctx context.Context, posting *model.JobPosting) error {
	if m.createPostingFn != nil {
		return m.createPostingFn(ctx, posting)
	}
	return nil
}

func (m *mockRecruitmentRepo) FindPostingByID(ctx context.Context, postingID string) (*model.JobPosting, error) {
	if m.findPostingByIDFn != nil {
		return m.findPostingByIDFn(ctx, postingID)
	}
	return nil, nil
}

func (m *mockRecruitmentRepo) UpdatePosting(ctx context.Context, posting *model.JobPosting) error {
	if m.updatePostingFn != nil {
		return m.updatePostingFn(ctx, posting)
	}
	return nil
}

func (m *mockRecruitmentRepo) DeletePosting(ctx context.Context, postingID string) error {
	if m.deletePostingFn != nil {
		return m.deletePostingFn(ctx, postingID)
	}
	return nil
}

func (m *mockRecruitmentRepo) ListPostings(ctx context.Context) ([]*model.JobPosting, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) ListPostingsByStatus(ctx context.Context, status model.PostingStatus) ([]*model.JobPosting, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) CountPostingsByStatus(ctx context.Context, status model.PostingStatus) (int, error) {
	return 0, nil
}

func (m *mockRecruitmentRepo) CreateApplicant(ctx context.Context, applicant *model.Applicant) error {
	if m.createApplicantFn != nil {
		return m.createApplicantFn(ctx, applicant)
	}
	return nil
}

func (m *mockRecruitmentRepo) FindApplicantByID(ctx context.Context, applicantID string) (*model.Applicant, error) {
	if m.findApplicantByIDFn != nil {
		return m.findApplicantByIDFn(ctx, applicantID)
	}
	return nil, nil
}

func (m *mockRecruitmentRepo) CreateApplication(ctx context.Context, app *model.Application) error {
	if m.createApplicationFn != nil {
		return m.createApplicationFn(ctx, app)
	}
	return nil
}

func (m *mockRecruitmentRepo) FindApplicationByID(ctx context.Context, applicationID string) (*model.Application, error) {
	if m.findApplicationByIDFn != nil {
		return m.findApplicationByIDFn(ctx, applicationID)
	}
	return nil, nil
}

func (m *mockRecruitmentRepo) ListApplications(ctx context.Context) ([]*model.Application, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) ListApplicationsByPosting(ctx context.Context, postingID string) ([]*model.Application, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) ListApplicationsByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus, stage string, reviewerID *string) error {
	if m.updateApplicationStatusFn != nil {
		return m.updateApplicationStatusFn(ctx, applicationID, status, stage, reviewerID)
	}
	return nil
}

func (m *mockRecruitmentRepo) CreateInterview(ctx context.Context, interview *model.Interview) error {
	if m.createInterviewFn != nil {
		return m.createInterviewFn(ctx, interview)
	}
	return nil
}

func (m *mockRecruitmentRepo) ListInterviewsByApplication(ctx context.Context, applicationID string) ([]*model.Interview, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) UpdateInterviewFeedback(ctx context.Context, interviewID, feedback string, rating *float64) error {
	if m.updateFeedbackFn != nil {
		return m.updateFeedbackFn(ctx, interviewID, feedback, rating)
	}
	return nil
}

// compile-time interface check
var _ repository.RecruitmentRepository = (*mockRecruitmentRepo)(nil)
