package handler

import (
	"github.com/hitoshi/teamify/internal/attendance"
	"github.com/hitoshi/teamify/internal/auth"
	"github.com/hitoshi/teamify/internal/bootstrap"
	"github.com/hitoshi/teamify/internal/dashboard"
	"github.com/hitoshi/teamify/internal/employee"
	"github.com/hitoshi/teamify/internal/leave"
	"github.com/hitoshi/teamify/internal/notification"
	"github.com/hitoshi/teamify/internal/payroll"
	"github.com/hitoshi/teamify/internal/performance"
	"github.com/hitoshi/teamify/internal/recruitment"
	"github.com/hitoshi/teamify/internal/repository"
)

// ドメインサービスはハンドラーのインターフェースをそのまま満たす。
// シグネチャの不一致はここでコンパイルエラーとして検出される。

var _ AuthServiceInterface = (*auth.Service)(nil)
var _ bootstrap.AuthService = (*auth.Service)(nil)
var _ EmployeeServiceInterface = (*employee.Service)(nil)
var _ AttendanceServiceInterface = (*attendance.Service)(nil)
var _ LeaveServiceInterface = (*leave.Service)(nil)
var _ PerformanceServiceInterface = (*performance.Service)(nil)
var _ RecruitmentServiceInterface = (*recruitment.Service)(nil)
var _ PayrollServiceInterface = (*payroll.Service)(nil)
var _ DashboardServiceInterface = (*dashboard.Service)(nil)
var _ NotificationServiceInterface = (*notification.Service)(nil)

// RoleFinderはUserRepositoryの部分インターフェース。
var _ RoleFinder = repository.UserRepository(nil)
