package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "expensedesk/internal/errors"
	"expensedesk/internal/models"
	"expensedesk/internal/pagination"
)

// maxRejectReasonLen caps the rejection reason length; the dashboard enforces
// the same limit with a live character counter.
const maxRejectReasonLen = 500

// reportService handles expense-report business logic.
type reportService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, userService UserServicer) ReportServicer {
	return &reportService{db: db, userService: userService}
}

// CreateReport submits a new expense report for a user. The submitter's
// display name is snapshotted onto the row so the admin name filter matches
// without a join.
func (s *reportService) CreateReport(userID, title string, date time.Time, amount int64, category, description, receiptURL string) (*models.Report, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if date.IsZero() {
		date = time.Now()
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		Title:       title,
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: description,
		Status:      models.StatusPending,
		SubmittedAt: time.Now(),
		ReceiptURL:  receiptURL,
	}

	if err := s.db.Create(report).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return report, nil
}

// ListReports retrieves a paginated, filtered page of all reports for the
// admin dashboard, newest submission first.
func (s *reportService) ListReports(page pagination.PageRequest, filter ReportFilter) (*pagination.PageResponse[models.Report], error) {
	page.Defaults()

	base := s.db.Model(&models.Report{})
	base, err := applyReportFilters(base, filter)
	if err != nil {
		return nil, err
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reports []models.Report
	if err := base.Scopes(pagination.Paginate(page)).
		Order("submitted_at DESC").
		Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(reports, page.Page, page.Limit, totalItems)
	return &result, nil
}

func applyReportFilters(q *gorm.DB, f ReportFilter) (*gorm.DB, error) {
	if f.Name != "" {
		q = q.Where("user_name = ?", f.Name)
	}
	if f.Month != "" {
		start, end, err := monthRange(f.Month)
		if err != nil {
			return nil, err
		}
		q = q.Where("date >= ? AND date < ?", start, end)
	}
	return q, nil
}

// monthRange converts a "YYYY-MM" key into a half-open [start, end) interval.
// Range comparison keeps the query portable across postgres and sqlite.
func monthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid month %q, expected YYYY-MM", month))
	}
	return start, start.AddDate(0, 1, 0), nil
}

// ListUserReports returns all reports owned by one user, newest first.
func (s *reportService) ListUserReports(userID string) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reports, nil
}

// GetReportByID retrieves a report by its numeric ID.
func (s *reportService) GetReportByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &report, nil
}

// Finance marks a pending report as financed.
func (s *reportService) Finance(id uint) (*models.Report, error) {
	report, err := s.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	if report.Status != models.StatusPending {
		return nil, apperrors.ErrReportNotPending
	}

	report.Status = models.StatusFinanced
	if err := s.db.Save(report).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return report, nil
}

// Reject marks a pending report as rejected with the given reason. The reason
// must be non-blank after trimming and at most 500 characters.
func (s *reportService) Reject(id uint, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > maxRejectReasonLen {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rejection reason exceeds 500 characters")
	}

	report, err := s.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	if report.Status != models.StatusPending {
		return nil, apperrors.ErrReportNotPending
	}

	report.Status = models.StatusRejected
	report.RejectReason = reason
	if err := s.db.Save(report).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return report, nil
}

// AggregateByMonth computes per-category report counts and amount totals for
// a single "YYYY-MM" month.
func (s *reportService) AggregateByMonth(month string) ([]MonthlyAggregate, error) {
	start, end, err := monthRange(month)
	if err != nil {
		return nil, err
	}

	var rows []MonthlyAggregate
	if err := s.db.Model(&models.Report{}).
		Select("category, COUNT(*) AS report_count, SUM(amount) AS total_amount").
		Where("date >= ? AND date < ?", start, end).
		Group("category").
		Order("category ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if rows == nil {
		rows = []MonthlyAggregate{}
	}
	return rows, nil
}

// DeleteUserReport deletes one of the user's own reports. Only pending
// reports may be withdrawn.
func (s *reportService) DeleteUserReport(userID string, id uint) error {
	var report models.Report
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBadReportAccess
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if report.Status != models.StatusPending {
		return apperrors.ErrReportNotPending
	}

	if err := s.db.Delete(&report).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
