package services

import (
	"time"

	"expensedesk/internal/models"
	"expensedesk/internal/pagination"
)

// ProfileUpdate holds the optional fields of a profile edit. Nil fields are
// left unchanged, mirroring a partial multipart form submission.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Username  *string
	Email     *string
	Avatar    *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password, firstName, lastName string) (*models.User, error)
	AttemptLogin(username, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateRole(actorID, targetID string, role models.UserRole) (*models.User, error)
	UpdateProfile(userID string, update ProfileUpdate) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// ReportFilter holds the optional admin-dashboard filters for listing reports.
// Name matches the snapshotted submitter display name exactly; Month is a
// "YYYY-MM" key matched against the report date.
type ReportFilter struct {
	Name  string
	Month string
}

// MonthlyAggregate is one server-computed summary row for a month: the
// per-category report count and total amount.
type MonthlyAggregate struct {
	Category    string `json:"category"`
	ReportCount int64  `json:"report_count"`
	TotalAmount int64  `json:"total_amount"`
}

// ReportServicer defines the contract for expense-report business logic.
type ReportServicer interface {
	CreateReport(userID, title string, date time.Time, amount int64, category, description, receiptURL string) (*models.Report, error)
	ListReports(page pagination.PageRequest, filter ReportFilter) (*pagination.PageResponse[models.Report], error)
	ListUserReports(userID string) ([]models.Report, error)
	GetReportByID(id uint) (*models.Report, error)
	Finance(id uint) (*models.Report, error)
	Reject(id uint, reason string) (*models.Report, error)
	AggregateByMonth(month string) ([]MonthlyAggregate, error)
	DeleteUserReport(userID string, id uint) error
}
