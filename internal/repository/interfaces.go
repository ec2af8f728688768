// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/teamify/internal/model"
)

// CredentialRepository は認証情報の永続化インターフェース。
type CredentialRepository interface {
	// FindByEmail はメールアドレスで認証情報を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)

	// FindBySubjectID は指定subjectの認証情報を取得する。見つからない場合はnilを返す。
	FindBySubjectID(ctx context.Context, subjectID string) (*model.Credential, error)

	// Create は認証情報を作成する。メールアドレス重複時はエラーを返す。
	Create(ctx context.Context, cred *model.Credential) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// ExtendExpiry はセッションの有効期限を延長する。
	ExtendExpiry(ctx context.Context, id string, expiresAt time.Time) error
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteBySubjectID は指定subjectの全セッションを削除する。
	DeleteBySubjectID(ctx context.Context, subjectID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// UserRepository はユーザープロフィールの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID string) (*model.User, error)

	// Insert はユーザーを作成する。同一user_idの行が既に存在する場合は
	// 何もせずfalseを返す（ON CONFLICT DO NOTHING）。
	Insert(ctx context.Context, user *model.User) (bool, error)

	// UpdateLastLogin は最終ログイン日時を更新する。
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

// EmployeeRepository は従業員データの永続化インターフェース。
type EmployeeRepository interface {
	// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, employeeID string) (*model.Employee, error)

	// FindByUserID はuser_idで従業員を検索する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Employee, error)

	// Insert は従業員を作成する。同一user_idの行が既に存在する場合は
	// 何もせずfalseを返す（部分一意インデックスへのON CONFLICT DO NOTHING）。
	Insert(ctx context.Context, emp *model.Employee) (bool, error)

	// Create はuser_id紐付けなしも含め従業員を無条件に作成する。
	Create(ctx context.Context, emp *model.Employee) error

	// Update は従業員情報を更新する。
	Update(ctx context.Context, emp *model.Employee) error

	// UpdateStatus は雇用状態のみを更新する。
	UpdateStatus(ctx context.Context, employeeID string, status model.EmploymentStatus) error

	// List は従業員一覧を氏名昇順で返す。
	List(ctx context.Context) ([]*model.Employee, error)

	// Search は氏名・従業員コードの部分一致で検索する。
	Search(ctx context.Context, query string) ([]*model.Employee, error)

	// ListByDepartment は指定部署の従業員一覧を返す。
	ListByDepartment(ctx context.Context, departmentID string) ([]*model.Employee, error)

	// CountByStatus は雇用状態ごとの従業員数を返す。
	CountByStatus(ctx context.Context) (map[model.EmploymentStatus]int, error)

	// CountAll は従業員の総数を返す。
	CountAll(ctx context.Context) (int, error)
}

// OrgRepository は部署・職位の永続化インターフェース。
type OrgRepository interface {
	// ListDepartments は部署一覧を名前昇順で返す。
	ListDepartments(ctx context.Context) ([]*model.Department, error)
	// FindDepartmentByID は指定IDの部署を取得する。見つからない場合はnilを返す。
	FindDepartmentByID(ctx context.Context, departmentID string) (*model.Department, error)
	// ListPositions は職位一覧を返す。
	ListPositions(ctx context.Context) ([]*model.Position, error)
	// FindPositionByID は指定IDの職位を取得する。見つからない場合はnilを返す。
	FindPositionByID(ctx context.Context, positionID string) (*model.Position, error)
	// ListPositionsByDepartment は指定部署の職位一覧を返す。
	ListPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error)
	// CountEmployeesPerDepartment は部署IDごとの従業員数を返す。
	CountEmployeesPerDepartment(ctx context.Context) (map[string]int, error)
}

// AttendanceRepository は勤怠データの永続化インターフェース。
type AttendanceRepository interface {
	// Upsert は従業員×日付で勤怠を冪等にUPSERTする。
	Upsert(ctx context.Context, att *model.Attendance) (*model.Attendance, error)

	// FindByID は指定IDの勤怠記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, attendanceID string) (*model.Attendance, error)

	// FindByEmployeeAndDate は従業員×日付で勤怠記録を検索する。見つからない場合はnilを返す。
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error)

	// Update は勤怠記録を更新する。
	Update(ctx context.Context, att *model.Attendance) error

	// ListByDate は指定日の全従業員の勤怠を返す。
	ListByDate(ctx context.Context, date time.Time) ([]*model.Attendance, error)

	// ListByEmployeeRange は従業員の期間内勤怠を日付昇順で返す。
	ListByEmployeeRange(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error)

	// CountByStatusOnDate は指定日の勤怠区分ごとの件数を返す。
	CountByStatusOnDate(ctx context.Context, date time.Time) (map[model.AttendanceStatus]int, error)

	// ListHolidaysBetween は期間内の会社休日を返す。
	ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]*model.Holiday, error)
}

// LeaveRepository は休暇データの永続化インターフェース。
type LeaveRepository interface {
	// ListTypes は休暇種別一覧を返す。
	ListTypes(ctx context.Context) ([]*model.LeaveType, error)

	// FindTypeByID は指定IDの休暇種別を取得する。見つからない場合はnilを返す。
	FindTypeByID(ctx context.Context, leaveTypeID string) (*model.LeaveType, error)

	// ListBalances は従業員×年度の残日数一覧を返す。
	ListBalances(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error)

	// FindBalance は従業員×休暇種別×年度の残日数を取得する。見つからない場合はnilを返す。
	FindBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*model.LeaveBalance, error)

	// UpsertBalance は残日数行を冪等に作成する。既存行は変更しない。
	UpsertBalance(ctx context.Context, balance *model.LeaveBalance) error

	// AddUsedDays は使用日数を加算する。
	AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, year int, days float64) error

	// CreateRequest は休暇申請を作成する。
	CreateRequest(ctx context.Context, req *model.LeaveRequest) error

	// FindRequestByID は指定IDの休暇申請を取得する。見つからない場合はnilを返す。
	FindRequestByID(ctx context.Context, requestID string) (*model.LeaveRequest, error)

	// ListRequests は全休暇申請を申請日降順で返す。
	ListRequests(ctx context.Context) ([]*model.LeaveRequest, error)

	// ListRequestsByStatus は指定状態の休暇申請を返す。
	ListRequestsByStatus(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error)

	// ListRequestsByEmployee は従業員の休暇申請を返す。
	ListRequestsByEmployee(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error)

	// CountRequestsByStatus は指定状態の休暇申請数を返す。
	CountRequestsByStatus(ctx context.Context, status model.LeaveStatus) (int, error)

	// ReviewRequest は休暇申請の状態・レビュアー・コメントを更新する。
	// 現在の状態がPENDINGの行のみを更新し、更新できたかどうかを返す。
	ReviewRequest(ctx context.Context, requestID string, status model.LeaveStatus, reviewerID, comments string, reviewedAt time.Time) (bool, error)
}

// PerformanceRepository は人事評価データの永続化インターフェース。
type PerformanceRepository interface {
	// CreateReview は評価を作成する。
	CreateReview(ctx context.Context, review *model.PerformanceReview) error
	// FindReviewByID は指定IDの評価を取得する。見つからない場合はnilを返す。
	FindReviewByID(ctx context.Context, reviewID string) (*model.PerformanceReview, error)
	// UpdateReview は評価を更新する。
	UpdateReview(ctx context.Context, review *model.PerformanceReview) error
	// DeleteReview は指定IDの評価を削除する。
	DeleteReview(ctx context.Context, reviewID string) error
	// ListReviews は全評価を評価日降順で返す。
	ListReviews(ctx context.Context) ([]*model.PerformanceReview, error)
	// ListReviewsByEmployee は従業員の評価を評価日降順で返す。
	ListReviewsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error)
	// ListCompletedReviews はCOMPLETED以降の評価を返す。集計の入力に使う。
	ListCompletedReviews(ctx context.Context) ([]*model.PerformanceReview, error)

	// CreateGoal は目標を作成する。
	CreateGoal(ctx context.Context, goal *model.PerformanceGoal) error
	// UpdateGoal は目標を更新する。
	UpdateGoal(ctx context.Context, goal *model.PerformanceGoal) error
	// FindGoalByID は指定IDの目標を取得する。見つからない場合はnilを返す。
	FindGoalByID(ctx context.Context, goalID string) (*model.PerformanceGoal, error)
	// ListGoalsByEmployee は従業員の目標一覧を返す。
	ListGoalsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error)
}

// RecruitmentRepository は採用データの永続化インターフェース。
type RecruitmentRepository interface {
	// CreatePosting は求人を作成する。
	CreatePosting(ctx context.Context, posting *model.JobPosting) error
	// FindPostingByID は指定IDの求人を取得する。見つからない場合はnilを返す。
	FindPostingByID(ctx context.Context, postingID string) (*model.JobPosting, error)
	// UpdatePosting は求人を更新する。
	UpdatePosting(ctx context.Context, posting *model.JobPosting) error
	// DeletePosting は指定IDの求人を削除する。
	DeletePosting(ctx context.Context, postingID string) error
	// ListPostings は全求人を作成日降順で返す。
	ListPostings(ctx context.Context) ([]*model.JobPosting, error)
	// ListPostingsByStatus は指定状態の求人を返す。
	ListPostingsByStatus(ctx context.Context, status model.PostingStatus) ([]*model.JobPosting, error)
	// CountPostingsByStatus は指定状態の求人数を返す。
	CountPostingsByStatus(ctx context.Context, status model.PostingStatus) (int, error)

	// CreateApplicant は応募者を作成する。
	CreateApplicant(ctx context.Context, applicant *model.Applicant) error
	// FindApplicantByID は指定IDの応募者を取得する。見つからない場合はnilを返す。
	FindApplicantByID(ctx context.Context, applicantID string) (*model.Applicant, error)

	// CreateApplication は応募を作成する。同一求人×応募者の重複時はエラーを返す。
	CreateApplication(ctx context.Context, app *model.Application) error
	// FindApplicationByID は指定IDの応募を取得する。見つからない場合はnilを返す。
	FindApplicationByID(ctx context.Context, applicationID string) (*model.Application, error)
	// ListApplications は全応募を応募日降順で返す。
	ListApplications(ctx context.Context) ([]*model.Application, error)
	// ListApplicationsByPosting は指定求人の応募を返す。
	ListApplicationsByPosting(ctx context.Context, postingID string) ([]*model.Application, error)
	// ListApplicationsByStatus は指定状態の応募を返す。
	ListApplicationsByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error)
	// UpdateApplicationStatus は応募の選考状態を更新する。
	UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus, stage string, reviewerID *string) error

	// CreateInterview は面接予定を作成する。
	CreateInterview(ctx context.Context, interview *model.Interview) error
	// ListInterviewsByApplication は指定応募の面接一覧を予定日時昇順で返す。
	ListInterviewsByApplication(ctx context.Context, applicationID string) ([]*model.Interview, error)
	// UpdateInterviewFeedback は面接のフィードバックと評点を更新する。
	UpdateInterviewFeedback(ctx context.Context, interviewID, feedback string, rating *float64) error
}

// PayrollRepository は給与データの永続化インターフェース。
type PayrollRepository interface {
	// Create は給与行を作成する。同一従業員×期間の重複時はエラーを返す。
	Create(ctx context.Context, p *model.Payroll) error

	// FindByID は指定IDの給与行を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, payrollID string) (*model.Payroll, error)

	// UpdateAmounts はDRAFT状態の給与行の金額・備考を更新する。
	// 更新できたかどうかを返す。
	UpdateAmounts(ctx context.Context, p *model.Payroll) (bool, error)

	// MarkProcessed はDRAFT→PROCESSEDの遷移を行う。遷移できたかどうかを返す。
	MarkProcessed(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (bool, error)

	// MarkPaid はPROCESSED→PAIDの遷移を行い支払日を記録する。遷移できたかどうかを返す。
	MarkPaid(ctx context.Context, payrollID string, paymentDate time.Time) (bool, error)

	// List は全給与行を期間降順で返す。
	List(ctx context.Context) ([]*model.Payroll, error)

	// ListByEmployee は従業員の給与行を期間降順で返す。
	ListByEmployee(ctx context.Context, employeeID string) ([]*model.Payroll, error)

	// ListByPeriod は支給期間が重なる給与行を返す。
	ListByPeriod(ctx context.Context, start, end time.Time) ([]*model.Payroll, error)

	// ListEmployeesWithoutPayroll は指定期間の給与行が存在しないACTIVE従業員を返す。
	// 一括ドラフト生成の入力に使う。
	ListEmployeesWithoutPayroll(ctx context.Context, periodStart, periodEnd time.Time) ([]*model.Employee, error)
}

// NotificationRepository は通知データの永続化インターフェース。
type NotificationRepository interface {
	// Create は通知を作成する。
	Create(ctx context.Context, n *model.Notification) error
	// ListByUser はユーザーの通知を作成日降順で返す。
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error)
	// MarkRead は通知を既読にする。
	MarkRead(ctx context.Context, notificationID string, at time.Time) error
	// DeleteReadBefore は指定日時より前に既読になった通知を削除し、削除件数を返す。
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
