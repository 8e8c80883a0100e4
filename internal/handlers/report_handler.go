package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensedesk/internal/errors"
	"expensedesk/internal/models"
	"expensedesk/internal/pagination"
	"expensedesk/internal/services"
)

// ReportHandler handles expense-report requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ListReportsQuery represents the admin list query: pagination plus the
// optional employee-name and month filters the dashboard sends.
type ListReportsQuery struct {
	pagination.PageRequest
	Name string `form:"name"`
	Date string `form:"date" binding:"omitempty,month_key"`
}

// ReportResponse represents a report in API responses. Date is a calendar
// day string so month filters are plain prefix matches on the client.
type ReportResponse struct {
	ID           uint                `json:"id"`
	User         string              `json:"user"`
	Title        string              `json:"request_title"`
	Date         string              `json:"date"`
	Amount       int64               `json:"amount"`
	Category     string              `json:"category"`
	Description  string              `json:"description"`
	Status       models.ReportStatus `json:"status"`
	RejectReason string              `json:"reject_reason,omitempty"`
	SubmittedAt  time.Time           `json:"submitted_at"`
	ReceiptURL   string              `json:"receipt_url,omitempty"`
}

// ReportPageResponse is the paginated reports envelope.
type ReportPageResponse struct {
	Reports    []ReportResponse `json:"reports"`
	TotalPages int              `json:"totalPages"`
}

func toReportResponse(r *models.Report) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		User:         r.UserName,
		Title:        r.Title,
		Date:         r.Date.Format("2006-01-02"),
		Amount:       r.Amount,
		Category:     r.Category,
		Description:  r.Description,
		Status:       r.Status,
		RejectReason: r.RejectReason,
		SubmittedAt:  r.SubmittedAt,
		ReceiptURL:   r.ReceiptURL,
	}
}

func toReportResponses(reports []models.Report) []ReportResponse {
	out := make([]ReportResponse, len(reports))
	for i := range reports {
		out[i] = toReportResponse(&reports[i])
	}
	return out
}

// ListReports returns a filtered page of all reports for the admin dashboard
// @Summary     List expense reports
// @Description List all expense reports with pagination and optional employee/month filters
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "1-based page number"
// @Param       limit query int false "Page size"
// @Param       name query string false "Employee display name"
// @Param       date query string false "Month filter (YYYY-MM)"
// @Success     200 {object} ReportPageResponse "Report page"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Router      /reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	var query ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.reportService.ListReports(query.PageRequest, services.ReportFilter{
		Name:  query.Name,
		Month: query.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReportPageResponse{
		Reports:    toReportResponses(page.Data),
		TotalPages: page.TotalPages,
	})
}

// AggregateQuery represents the aggregate query parameters.
type AggregateQuery struct {
	Month string `form:"month" binding:"required,month_key"`
}

// Aggregate returns per-category totals for one month
// @Summary     Aggregate reports by month
// @Description Per-category report counts and amount totals for a single month
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       month query string true "Month (YYYY-MM)"
// @Success     200 {array} services.MonthlyAggregate "Aggregate rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/aggregate [get]
func (h *ReportHandler) Aggregate(c *gin.Context) {
	var query AggregateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rows, err := h.reportService.AggregateByMonth(query.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Finance marks a pending report as financed
// @Summary     Finance a report
// @Description Mark a pending expense report as financed
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Report ID"
// @Success     200 {object} ReportResponse "Updated report"
// @Failure     404 {object} ErrorResponse "Report not found"
// @Failure     409 {object} ErrorResponse "Report not pending"
// @Router      /reports/{id}/finance [post]
func (h *ReportHandler) Finance(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.Finance(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReportResponse(report))
}

// RejectRequest represents the rejection payload.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Reject marks a pending report as rejected
// @Summary     Reject a report
// @Description Mark a pending expense report as rejected with a reason
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Report ID"
// @Param       request body RejectRequest true "Rejection reason"
// @Success     204 "Report rejected"
// @Failure     400 {object} ErrorResponse "Missing or blank reason"
// @Failure     409 {object} ErrorResponse "Report not pending"
// @Router      /reports/{id}/reject [post]
func (h *ReportHandler) Reject(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if _, err := h.reportService.Reject(id, req.Reason); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateReportRequest represents the employee submission payload.
type CreateReportRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Date        string `json:"date" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Category    string `json:"category" binding:"max=100"`
	Description string `json:"description" binding:"max=1000"`
	ReceiptURL  string `json:"receipt_url" binding:"omitempty,url"`
}

// Create submits a new expense report for the authenticated user
// @Summary     Submit a report
// @Description Submit a new expense report
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReportRequest true "Report details"
// @Success     201 {object} ReportResponse "Created report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	day, err := parseDay(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.CreateReport(userID, req.Title, day, req.Amount, req.Category, req.Description, req.ReceiptURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReportResponse(report))
}

// ListMine returns the authenticated user's own reports
// @Summary     List own reports
// @Description List the authenticated user's expense reports
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} ReportResponse "Reports"
// @Router      /reports/mine [get]
func (h *ReportHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reports, err := h.reportService.ListUserReports(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReportResponses(reports))
}

// Delete withdraws one of the authenticated user's pending reports
// @Summary     Delete own report
// @Description Delete one of the authenticated user's pending reports
// @Tags        reports
// @Security    BearerAuth
// @Param       id path int true "Report ID"
// @Success     204 "Report deleted"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     409 {object} ErrorResponse "Report not pending"
// @Router      /reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reportService.DeleteUserReport(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
