// Package model はドメインモデルを定義する。
package model

import "time"

// ReviewStatus は人事評価の状態を表す。
type ReviewStatus string

const (
	ReviewDraft        ReviewStatus = "DRAFT"
	ReviewCompleted    ReviewStatus = "COMPLETED"
	ReviewAcknowledged ReviewStatus = "ACKNOWLEDGED"
)

// PerformanceReview は人事評価を表す。
// 各評価項目は未入力の場合nil。集計時にnilは0ではなく「評価なし」として
// 分母から除外する（集計規則はdashboardパッケージ参照）。
type PerformanceReview struct {
	ReviewID            string
	EmployeeID          string
	ReviewerID          string
	ReviewPeriodStart   *time.Time
	ReviewPeriodEnd     *time.Time
	ReviewDate          time.Time
	OverallRating       *float64
	TechnicalRating     *float64
	CommunicationRating *float64
	TeamworkRating      *float64
	LeadershipRating    *float64
	PunctualityRating   *float64
	Strengths           string
	AreasForImprovement string
	GoalsAchieved       string
	Comments            string
	Status              ReviewStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// GoalStatus は目標の進捗状態を表す。
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "NOT_STARTED"
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalCancelled  GoalStatus = "CANCELLED"
)

// PerformanceGoal は従業員の目標を表す。
type PerformanceGoal struct {
	GoalID      string
	EmployeeID  string
	Title       string
	Description string
	TargetDate  *time.Time
	Status      GoalStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
