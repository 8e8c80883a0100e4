// Package dashboard implements the admin dashboard's state and operations
// on top of the API client.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"expensedesk/internal/client"
)

// maxRejectReasonLen mirrors the server-side cap so the modal can refuse
// over-long reasons before the request is ever sent.
const maxRejectReasonLen = 500

// defaultLimit is the page size the dashboard requests.
const defaultLimit = 10

// Notifier receives user-facing notices (action results and failures).
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

// Notify calls f.
func (f NotifierFunc) Notify(message string) { f(message) }

// Fetch keys for the generation counters.
const (
	fetchReports    = "reports"
	fetchAggregates = "aggregates"
	fetchUsers      = "users"
)

// Controller holds the dashboard state: the current report page, the
// filtered view derived from it, filters, pagination, aggregates, and modal
// state. All methods are safe for concurrent use; responses that arrive
// after a newer request for the same data were issued are discarded.
type Controller struct {
	mu       sync.Mutex
	api      *client.Client
	notifier Notifier

	users      []client.User
	reports    []client.Report
	filtered   []client.Report
	aggregates []client.MonthlyAggregate

	selectedEmployee string
	selectedMonth    string
	page             int
	limit            int
	totalPages       int

	details      *client.Report
	rejectTarget *client.Report
	rejectReason string
	inputLocked  bool

	gens    map[string]uint64
	cancels map[string]context.CancelFunc
}

// NewController creates a dashboard controller over the given API client.
func NewController(api *client.Client, notifier Notifier) *Controller {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Controller{
		api:        api,
		notifier:   notifier,
		page:       1,
		limit:      defaultLimit,
		totalPages: 1,
		gens:       map[string]uint64{},
		cancels:    map[string]context.CancelFunc{},
	}
}

// beginFetch bumps the generation for a fetch key and cancels the
// in-flight request it supersedes.
func (c *Controller) beginFetch(ctx context.Context, key string) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cancel := c.cancels[key]; cancel != nil {
		cancel()
	}
	c.gens[key]++
	gen := c.gens[key]

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancels[key] = cancel
	return fetchCtx, gen
}

// isCurrent reports whether a fetch generation is still the latest for its
// key. Must be called with the lock held.
func (c *Controller) isCurrent(key string, gen uint64) bool {
	return c.gens[key] == gen
}

// refilterLocked re-derives the filtered view from the current page by
// reapplying the employee and month predicates. Must be called with the
// lock held, after every change to the page or the filters.
func (c *Controller) refilterLocked() {
	c.filtered = ApplyFilters(c.reports, c.selectedEmployee, c.selectedMonth)
}

// LoadUsers fetches the user list for the employee dropdown. A failure
// leaves an empty list and is silent, matching the dropdown simply having
// no entries.
func (c *Controller) LoadUsers(ctx context.Context) {
	fetchCtx, gen := c.beginFetch(ctx, fetchUsers)

	users, err := c.api.GetUsers(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrent(fetchUsers, gen) {
		return
	}
	if err != nil {
		c.users = []client.User{}
		return
	}
	c.users = users
}

// Refresh reloads the current report page with the active filters.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	query := client.ReportQuery{
		Page:  c.page,
		Limit: c.limit,
		Name:  c.selectedEmployee,
		Month: c.selectedMonth,
	}
	c.mu.Unlock()

	fetchCtx, gen := c.beginFetch(ctx, fetchReports)
	page, err := c.api.GetReports(fetchCtx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrent(fetchReports, gen) {
		return
	}
	if err != nil {
		c.reports = []client.Report{}
		c.totalPages = 1
		c.refilterLocked()
		return
	}
	c.reports = page.Reports
	c.totalPages = page.TotalPages
	if c.totalPages < 1 {
		c.totalPages = 1
	}
	c.refilterLocked()
}

// refreshAggregates loads the per-category totals for the selected month, or
// clears them when no month is selected.
func (c *Controller) refreshAggregates(ctx context.Context) {
	c.mu.Lock()
	month := c.selectedMonth
	c.mu.Unlock()

	if month == "" {
		c.mu.Lock()
		c.gens[fetchAggregates]++
		c.aggregates = nil
		c.mu.Unlock()
		return
	}

	fetchCtx, gen := c.beginFetch(ctx, fetchAggregates)
	rows, err := c.api.GetAggregate(fetchCtx, month)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrent(fetchAggregates, gen) {
		return
	}
	if err != nil {
		c.aggregates = nil
		return
	}
	c.aggregates = rows
}

// SetEmployee switches the employee filter, re-filters the page on hand,
// resets to page one, and reloads.
func (c *Controller) SetEmployee(ctx context.Context, name string) {
	c.mu.Lock()
	c.selectedEmployee = name
	c.page = 1
	c.refilterLocked()
	c.mu.Unlock()

	c.Refresh(ctx)
}

// SetMonth switches the month filter, re-filters the page on hand, resets
// to page one, and reloads the reports and the monthly aggregates.
func (c *Controller) SetMonth(ctx context.Context, month string) {
	c.mu.Lock()
	c.selectedMonth = month
	c.page = 1
	c.refilterLocked()
	c.mu.Unlock()

	c.Refresh(ctx)
	c.refreshAggregates(ctx)
}

// CanPrev reports whether a previous page exists.
func (c *Controller) CanPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page > 1
}

// CanNext reports whether a next page exists.
func (c *Controller) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page < c.totalPages
}

// NextPage advances one page when possible.
func (c *Controller) NextPage(ctx context.Context) {
	c.mu.Lock()
	if c.page >= c.totalPages {
		c.mu.Unlock()
		return
	}
	c.page++
	c.mu.Unlock()

	c.Refresh(ctx)
}

// PrevPage goes back one page when possible.
func (c *Controller) PrevPage(ctx context.Context) {
	c.mu.Lock()
	if c.page <= 1 {
		c.mu.Unlock()
		return
	}
	c.page--
	c.mu.Unlock()

	c.Refresh(ctx)
}

// Finance marks a pending report as financed. On success only the target
// report is patched locally; no refetch.
func (c *Controller) Finance(ctx context.Context, id uint) error {
	updated, err := c.api.FinanceReport(ctx, id)
	if err != nil {
		c.notifier.Notify(fmt.Sprintf("Failed to finance report: %v", err))
		return err
	}

	c.mu.Lock()
	for i := range c.reports {
		if c.reports[i].ID == id {
			c.reports[i].Status = updated.Status
			break
		}
	}
	c.refilterLocked()
	c.mu.Unlock()

	c.notifier.Notify("Report financed")
	return nil
}

// OpenRejectModal opens the rejection modal for a report and locks
// background input until the modal closes.
func (c *Controller) OpenRejectModal(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.reports {
		if c.reports[i].ID == id {
			target := c.reports[i]
			c.rejectTarget = &target
			c.rejectReason = ""
			c.inputLocked = true
			return true
		}
	}
	return false
}

// SetRejectReason updates the draft reason, truncating at the 500-rune cap.
func (c *Controller) SetRejectReason(reason string) {
	if utf8.RuneCountInString(reason) > maxRejectReasonLen {
		runes := []rune(reason)
		reason = string(runes[:maxRejectReasonLen])
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejectReason = reason
}

// RejectReason returns the current draft reason.
func (c *Controller) RejectReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectReason
}

// ReasonCharsLeft returns how many characters of the cap remain, for the
// modal's live counter.
func (c *Controller) ReasonCharsLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maxRejectReasonLen - utf8.RuneCountInString(c.rejectReason)
}

// SubmitReject validates and submits the rejection. A blank reason aborts
// before any request is made and keeps the modal open; a request failure
// also keeps the modal open. On success the target report is patched
// locally and the modal closes.
func (c *Controller) SubmitReject(ctx context.Context) error {
	c.mu.Lock()
	target := c.rejectTarget
	reason := strings.TrimSpace(c.rejectReason)
	c.mu.Unlock()

	if target == nil {
		return fmt.Errorf("no report selected for rejection")
	}
	if reason == "" {
		c.notifier.Notify("A rejection reason is required")
		return fmt.Errorf("rejection reason is required")
	}

	if err := c.api.RejectReport(ctx, target.ID, reason); err != nil {
		c.notifier.Notify(fmt.Sprintf("Failed to reject report: %v", err))
		return err
	}

	c.mu.Lock()
	for i := range c.reports {
		if c.reports[i].ID == target.ID {
			c.reports[i].Status = "rejected"
			c.reports[i].RejectReason = reason
			break
		}
	}
	c.refilterLocked()
	c.rejectTarget = nil
	c.rejectReason = ""
	c.inputLocked = false
	c.mu.Unlock()

	c.notifier.Notify("Report rejected")
	return nil
}

// CloseRejectModal discards the draft rejection and unlocks input.
func (c *Controller) CloseRejectModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejectTarget = nil
	c.rejectReason = ""
	c.inputLocked = false
}

// RejectTarget returns the report the modal is open for, or nil.
func (c *Controller) RejectTarget() *client.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rejectTarget == nil {
		return nil
	}
	copied := *c.rejectTarget
	return &copied
}

// InputLocked reports whether a modal is holding the background input lock.
func (c *Controller) InputLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputLocked
}

// OpenDetails opens the details view for a report.
func (c *Controller) OpenDetails(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.reports {
		if c.reports[i].ID == id {
			detail := c.reports[i]
			c.details = &detail
			return true
		}
	}
	return false
}

// CloseDetails closes the details view.
func (c *Controller) CloseDetails() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details = nil
}

// Details returns the report the details view shows, or nil.
func (c *Controller) Details() *client.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.details == nil {
		return nil
	}
	copied := *c.details
	return &copied
}

// Reports returns the current page of reports as the server sent it.
func (c *Controller) Reports() []client.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Report(nil), c.reports...)
}

// FilteredReports returns the displayed view: the current page with the
// employee and month predicates reapplied client-side.
func (c *Controller) FilteredReports() []client.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Report(nil), c.filtered...)
}

// Users returns the loaded user list.
func (c *Controller) Users() []client.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.User(nil), c.users...)
}

// Aggregates returns the per-category totals for the selected month.
func (c *Controller) Aggregates() []client.MonthlyAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.MonthlyAggregate(nil), c.aggregates...)
}

// Page returns the 1-based current page.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages returns the last known page count.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// SelectedEmployee returns the active employee filter, empty for all.
func (c *Controller) SelectedEmployee() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedEmployee
}

// SelectedMonth returns the active month filter, empty for all.
func (c *Controller) SelectedMonth() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedMonth
}
