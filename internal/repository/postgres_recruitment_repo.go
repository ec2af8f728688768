package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresRecruitmentRepo はPostgreSQLを使用した採用リポジトリ。
type PostgresRecruitmentRepo struct {
	db *sql.DB
}

// NewPostgresRecruitmentRepo はPostgresRecruitmentRepoを生成する。
func NewPostgresRecruitmentRepo(db *sql.DB) *PostgresRecruitmentRepo {
	return &PostgresRecruitmentRepo{db: db}
}

const postingColumns = `job_posting_id, job_title, department_id, position_id, description,
	requirements, employment_type, location, salary_range_min, salary_range_max,
	openings, status, posted_date, closing_date, posted_by, created_at, updated_at`

// scanPosting は1行分の求人を読み取る。
func scanPosting(scan func(dest ...any) error) (*model.JobPosting, error) {
	p := &model.JobPosting{}
	var departmentID, positionID, postedBy sql.NullString
	var salaryMin, salaryMax sql.NullFloat64
	var postedDate, closingDate sql.NullTime

	if err := scan(
		&p.JobPostingID, &p.JobTitle, &departmentID, &positionID,
		&p.Description, &p.Requirements, &p.EmploymentType, &p.Location,
		&salaryMin, &salaryMax, &p.Openings, &p.Status,
		&postedDate, &closingDate, &postedBy,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.DepartmentID = stringPtr(departmentID)
	p.PositionID = stringPtr(positionID)
	p.SalaryRangeMin = floatPtr(salaryMin)
	p.SalaryRangeMax = floatPtr(salaryMax)
	p.PostedDate = timePtr(postedDate)
	p.ClosingDate = timePtr(closingDate)
	p.PostedBy = stringPtr(postedBy)
	return p, nil
}

// CreatePosting は求人を作成する。
func (r *PostgresRecruitmentRepo) CreatePosting(ctx context.Context, posting *model.JobPosting) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_postings (job_posting_id, job_title, department_id, position_id, description,
		                           requirements, employment_type, location,
		                           salary_range_min, salary_range_max, openings, status,
		                           posted_date, closing_date, posted_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		posting.JobPostingID, posting.JobTitle,
		nullStringPtr(posting.DepartmentID), nullStringPtr(posting.PositionID),
		posting.Description, posting.Requirements, posting.EmploymentType, posting.Location,
		nullFloatPtr(posting.SalaryRangeMin), nullFloatPtr(posting.SalaryRangeMax),
		posting.Openings, posting.Status,
		nullTimePtr(posting.PostedDate), nullTimePtr(posting.ClosingDate),
		nullStringPtr(posting.PostedBy), posting.CreatedAt, posting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("求人の作成に失敗しました: %w", err)
	}
	return nil
}

// FindPostingByID は指定IDの求人を取得する。見つからない場合はnilを返す。
func (r *PostgresRecruitmentRepo) FindPostingByID(ctx context.Context, postingID string) (*model.JobPosting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM job_postings WHERE job_posting_id = $1`,
		postingID,
	)
	p, err := scanPosting(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	return p, nil
}

// UpdatePosting は求人を更新する。
func (r *PostgresRecruitmentRepo) UpdatePosting(ctx context.Context, posting *model.JobPosting) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_postings SET
		    job_title = $2, department_id = $3, position_id = $4,
		    description = $5, requirements = $6, employment_type = $7, location = $8,
		    salary_range_min = $9, salary_range_max = $10, openings = $11,
		    status = $12, posted_date = $13, closing_date = $14, updated_at = now()
		 WHERE job_posting_id = $1`,
		posting.JobPostingID, posting.JobTitle,
		nullStringPtr(posting.DepartmentID), nullStringPtr(posting.PositionID),
		posting.Description, posting.Requirements, posting.EmploymentType, posting.Location,
		nullFloatPtr(posting.SalaryRangeMin), nullFloatPtr(posting.SalaryRangeMax),
		posting.Openings, posting.Status,
		nullTimePtr(posting.PostedDate), nullTimePtr(posting.ClosingDate),
	)
	if err != nil {
		return fmt.Errorf("求人の更新に失敗しました: %w", err)
	}
	return nil
}

// DeletePosting は指定IDの求人を削除する。
func (r *PostgresRecruitmentRepo) DeletePosting(ctx context.Context, postingID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM job_postings WHERE job_posting_id = $1`,
		postingID,
	)
	if err != nil {
		return fmt.Errorf("求人の削除に失敗しました: %w", err)
	}
	return nil
}

// ListPostings は全求人を作成日降順で返す。
func (r *PostgresRecruitmentRepo) ListPostings(ctx context.Context) ([]*model.JobPosting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postingColumns+` FROM job_postings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	return collectPostings(rows)
}

// ListPostingsByStatus は指定状態の求人を作成日降順で返す。
func (r *PostgresRecruitmentRepo) ListPostingsByStatus(ctx context.Context, status model.PostingStatus) ([]*model.JobPosting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postingColumns+` FROM job_postings WHERE status = $1 ORDER BY created_at DESC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("状態別求人の取得に失敗しました: %w", err)
	}
	return collectPostings(rows)
}

// collectPostings は結果セットを走査して求人のスライスを返す。
func collectPostings(rows *sql.Rows) ([]*model.JobPosting, error) {
	defer rows.Close()

	var postings []*model.JobPosting
	for rows.Next() {
		p, err := scanPosting(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("求人の読み取りに失敗しました: %w", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("求人の走査に失敗しました: %w", err)
	}
	return postings, nil
}

// CountPostingsByStatus は指定状態の求人数を返す。
func (r *PostgresRecruitmentRepo) CountPostingsByStatus(ctx context.Context, status model.PostingStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM job_postings WHERE status = $1`,
		status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("状態別求人数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CreateApplicant は応募者を作成する。
func (r *PostgresRecruitmentRepo) CreateApplicant(ctx context.Context, applicant *model.Applicant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applicants (applicant_id, first_name, last_name, email, phone,
		                         resume_url, cover_letter, linkedin_url, portfolio_url,
		                         created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		applicant.ApplicantID, applicant.FirstName, applicant.LastName,
		applicant.Email, applicant.Phone,
		applicant.ResumeURL, applicant.CoverLetter,
		applicant.LinkedInURL, applicant.PortfolioURL,
		applicant.CreatedAt, applicant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("応募者の作成に失敗しました: %w", err)
	}
	return nil
}

// FindApplicantByID は指定IDの応募者を取得する。見つからない場合はnilを返す。
func (r *PostgresRecruitmentRepo) FindApplicantByID(ctx context.Context, applicantID string) (*model.Applicant, error) {
	a := &model.Applicant{}
	err := r.db.QueryRowContext(ctx,
		`SELECT applicant_id, first_name, last_name, email, phone,
		        resume_url, cover_letter, linkedin_url, portfolio_url,
		        created_at, updated_at
		 FROM applicants WHERE applicant_id = $1`,
		applicantID,
	).Scan(
		&a.ApplicantID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.ResumeURL, &a.CoverLetter, &a.LinkedInURL, &a.PortfolioURL,
		&a.CreatedAt, &a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募者の取得に失敗しました: %w", err)
	}
	return a, nil
}

const applicationColumns = `application_id, job_posting_id, applicant_id, application_date,
	status, current_stage, notes, reviewed_by, created_at, updated_at`

// scanApplication は1行分の応募を読み取る。
func scanApplication(scan func(dest ...any) error) (*model.Application, error) {
	app := &model.Application{}
	var reviewedBy sql.NullString

	if err := scan(
		&app.ApplicationID, &app.JobPostingID, &app.ApplicantID,
		&app.ApplicationDate, &app.Status, &app.CurrentStage, &app.Notes,
		&reviewedBy, &app.CreatedAt, &app.UpdatedAt,
	); err != nil {
		return nil, err
	}

	app.ReviewedBy = stringPtr(reviewedBy)
	return app, nil
}

// CreateApplication は応募を作成する。同一求人×応募者の重複時は
// model.ErrCodeDuplicateRecordのAPIErrorを返す。
func (r *PostgresRecruitmentRepo) CreateApplication(ctx context.Context, app *model.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (application_id, job_posting_id, applicant_id, application_date,
		                           status, current_stage, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ApplicationID, app.JobPostingID, app.ApplicantID, app.ApplicationDate,
		app.Status, app.CurrentStage, app.Notes, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateRecordError("応募")
		}
		return fmt.Errorf("応募の作成に失敗しました: %w", err)
	}
	return nil
}

// FindApplicationByID は指定IDの応募を取得する。見つからない場合はnilを返す。
func (r *PostgresRecruitmentRepo) FindApplicationByID(ctx context.Context, applicationID string) (*model.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE application_id = $1`,
		applicationID,
	)
	app, err := scanApplication(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	return app, nil
}

// ListApplications は全応募を応募日降順で返す。
func (r *PostgresRecruitmentRepo) ListApplications(ctx context.Context) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY application_date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return collectApplications(rows)
}

// ListApplicationsByPosting は指定求人の応募を応募日降順で返す。
func (r *PostgresRecruitmentRepo) ListApplicationsByPosting(ctx context.Context, postingID string) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE job_posting_id = $1 ORDER BY application_date DESC, created_at DESC`,
		postingID,
	)
	if err != nil {
		return nil, fmt.Errorf("求人別応募の取得に失敗しました: %w", err)
	}
	return collectApplications(rows)
}

// ListApplicationsByStatus は指定状態の応募を応募日降順で返す。
func (r *PostgresRecruitmentRepo) ListApplicationsByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE status = $1 ORDER BY application_date DESC, created_at DESC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("状態別応募の取得に失敗しました: %w", err)
	}
	return collectApplications(rows)
}

// collectApplications は結果セットを走査して応募のスライスを返す。
func collectApplications(rows *sql.Rows) ([]*model.Application, error) {
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("応募の読み取りに失敗しました: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募の走査に失敗しました: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus は応募の選考状態を更新する。
func (r *PostgresRecruitmentRepo) UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus, stage string, reviewerID *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE applications SET
		    status = $2, current_stage = $3, reviewed_by = $4, updated_at = now()
		 WHERE application_id = $1`,
		applicationID, status, stage, nullStringPtr(reviewerID),
	)
	if err != nil {
		return fmt.Errorf("選考状態の更新に失敗しました: %w", err)
	}
	return nil
}

// CreateInterview は面接予定を作成する。
func (r *PostgresRecruitmentRepo) CreateInterview(ctx context.Context, interview *model.Interview) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interviews (interview_id, application_id, interviewer_id, scheduled_at,
		                         mode, location, feedback, rating, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		interview.InterviewID, interview.ApplicationID, interview.InterviewerID,
		interview.ScheduledAt, interview.Mode, interview.Location,
		interview.Feedback, nullFloatPtr(interview.Rating),
		interview.CreatedAt, interview.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("面接予定の作成に失敗しました: %w", err)
	}
	return nil
}

// ListInterviewsByApplication は指定応募の面接一覧を予定日時昇順で返す。
func (r *PostgresRecruitmentRepo) ListInterviewsByApplication(ctx context.Context, applicationID string) ([]*model.Interview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT interview_id, application_id, interviewer_id, scheduled_at,
		        mode, location, feedback, rating, created_at, updated_at
		 FROM interviews
		 WHERE application_id = $1
		 ORDER BY scheduled_at`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("面接一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var interviews []*model.Interview
	for rows.Next() {
		iv := &model.Interview{}
		var rating sql.NullFloat64
		if err := rows.Scan(
			&iv.InterviewID, &iv.ApplicationID, &iv.InterviewerID, &iv.ScheduledAt,
			&iv.Mode, &iv.Location, &iv.Feedback, &rating,
			&iv.CreatedAt, &iv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("面接の読み取りに失敗しました: %w", err)
		}
		iv.Rating = floatPtr(rating)
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("面接の走査に失敗しました: %w", err)
	}
	return interviews, nil
}

// UpdateInterviewFeedback は面接のフィードバックと評点を更新する。
func (r *PostgresRecruitmentRepo) UpdateInterviewFeedback(ctx context.Context, interviewID, feedback string, rating *float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interviews SET feedback = $2, rating = $3, updated_at = now()
		 WHERE interview_id = $1`,
		interviewID, feedback, nullFloatPtr(rating),
	)
	if err != nil {
		return fmt.Errorf("面接フィードバックの更新に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ RecruitmentRepository = (*PostgresRecruitmentRepo)(nil)
