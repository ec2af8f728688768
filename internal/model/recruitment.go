// Package model はドメインモデルを定義する。
package model

import "time"

// PostingStatus は求人の公開状態を表す。
type PostingStatus string

const (
	PostingDraft  PostingStatus = "DRAFT"
	PostingActive PostingStatus = "ACTIVE"
	PostingClosed PostingStatus = "CLOSED"
	PostingOnHold PostingStatus = "ON_HOLD"
)

// JobPosting は求人情報を表す。
type JobPosting struct {
	JobPostingID   string
	JobTitle       string
	DepartmentID   *string
	PositionID     *string
	Description    string
	Requirements   string
	EmploymentType EmploymentType
	Location       string
	SalaryRangeMin *float64
	SalaryRangeMax *float64
	Openings       int
	Status         PostingStatus
	PostedDate     *time.Time
	ClosingDate    *time.Time
	PostedBy       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Applicant は応募者を表す。
// 各URLは保存前にsecurity.URLGuardで検証済みであること。
type Applicant struct {
	ApplicantID  string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	ResumeURL    string
	CoverLetter  string
	LinkedInURL  string
	PortfolioURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplicationStatus は選考パイプラインの状態を表す。
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationInterviewed ApplicationStatus = "INTERVIEWED"
	ApplicationOffered     ApplicationStatus = "OFFERED"
	ApplicationHired       ApplicationStatus = "HIRED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

// IsValid はApplicationStatusが定義済みの値かどうかを返す。
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationSubmitted, ApplicationUnderReview, ApplicationShortlisted,
		ApplicationInterviewed, ApplicationOffered, ApplicationHired, ApplicationRejected:
		return true
	}
	return false
}

// Application は求人への応募を表す。
type Application struct {
	ApplicationID   string
	JobPostingID    string
	ApplicantID     string
	ApplicationDate time.Time
	Status          ApplicationStatus
	CurrentStage    string
	Notes           string
	ReviewedBy      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Interview は面接予定とフィードバックを表す。
type Interview struct {
	InterviewID   string
	ApplicationID string
	InterviewerID string
	ScheduledAt   time.Time
	Mode          string
	Location      string
	Feedback      string
	Rating        *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
