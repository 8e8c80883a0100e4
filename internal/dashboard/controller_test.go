package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"expensedesk/internal/client"
)

// fakeAPI is a minimal in-memory ExpenseDesk API for controller tests.
type fakeAPI struct {
	mu       sync.Mutex
	reports  []map[string]any
	requests atomic.Int64

	// reportsDelay stalls GET /reports responses keyed by the date param,
	// for the stale-response tests.
	reportsDelay map[string]time.Duration
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		reports: []map[string]any{
			{"id": 1, "user": "Alice Wong", "request_title": "Team lunch", "date": "2025-05-03", "amount": 4500, "status": "pending"},
			{"id": 2, "user": "Alice Wong", "request_title": "Taxi", "date": "2025-06-10", "amount": 1200, "status": "pending"},
			{"id": 3, "user": "Bob Tan", "request_title": "Hotel", "date": "2025-05-20", "amount": 30000, "status": "pending"},
		},
		reportsDelay: map[string]time.Duration{},
	}
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)

		switch {
		case r.URL.Path == "/api/v1/users":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": "u-1", "name": "Alice Wong", "email": "alice@test.com", "role": "user"},
				{"id": "u-2", "name": "Bob Tan", "email": "bob@test.com", "role": "user"},
			})

		case r.URL.Path == "/api/v1/reports" && r.Method == http.MethodGet:
			name := r.URL.Query().Get("name")
			month := r.URL.Query().Get("date")

			f.mu.Lock()
			delay := f.reportsDelay[month]
			matched := []map[string]any{}
			for _, rep := range f.reports {
				if name != "" && rep["user"] != name {
					continue
				}
				if month != "" && !strings.HasPrefix(rep["date"].(string), month) {
					continue
				}
				matched = append(matched, rep)
			}
			f.mu.Unlock()

			if delay > 0 {
				time.Sleep(delay)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"reports": matched, "totalPages": 1})

		case r.URL.Path == "/api/v1/reports/aggregate":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"category": "Meals", "report_count": 1, "total_amount": 4500},
			})

		case strings.HasSuffix(r.URL.Path, "/finance"):
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "status": "financed"})

		case strings.HasSuffix(r.URL.Path, "/reject"):
			w.WriteHeader(http.StatusNoContent)

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *captureNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

func newTestController(t *testing.T) (*Controller, *fakeAPI, *captureNotifier) {
	t.Helper()

	api := newFakeAPI()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	notifier := &captureNotifier{}
	c := client.New(server.URL, "tok-123", server.Client())
	return NewController(c, notifier), api, notifier
}

func TestLoadUsersAndRefresh(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	ctrl.LoadUsers(ctx)
	if len(ctrl.Users()) != 2 {
		t.Fatalf("expected 2 users, got %d", len(ctrl.Users()))
	}

	ctrl.Refresh(ctx)
	if len(ctrl.Reports()) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(ctrl.Reports()))
	}
}

func TestLoadUsersFailureIsSilentAndEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := &captureNotifier{}
	ctrl := NewController(client.New(server.URL, "tok", server.Client()), notifier)

	ctrl.LoadUsers(context.Background())
	if got := ctrl.Users(); len(got) != 0 {
		t.Errorf("expected empty users on failure, got %v", got)
	}
	if notifier.last() != "" {
		t.Errorf("user load failures should be silent, got %q", notifier.last())
	}
}

func TestRefreshFailureLeavesEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctrl := NewController(client.New(server.URL, "tok", server.Client()), nil)
	ctrl.Refresh(context.Background())

	if len(ctrl.Reports()) != 0 {
		t.Error("expected empty reports on failure")
	}
	if ctrl.TotalPages() != 1 {
		t.Errorf("expected totalPages reset to 1, got %d", ctrl.TotalPages())
	}
}

func TestFilterScenario(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	ctrl.SetEmployee(ctx, "Alice Wong")
	reports := ctrl.FilteredReports()
	if len(reports) != 2 {
		t.Fatalf("expected Alice's 2 reports, got %d", len(reports))
	}

	// Switching to Bob must filter from the full set, not Alice's subset.
	ctrl.SetEmployee(ctx, "Bob Tan")
	reports = ctrl.FilteredReports()
	if len(reports) != 1 || reports[0].User != "Bob Tan" {
		t.Fatalf("expected Bob's 1 report, got %+v", reports)
	}

	// Adding a month narrows with AND.
	ctrl.SetMonth(ctx, "2025-05")
	reports = ctrl.FilteredReports()
	if len(reports) != 1 || reports[0].ID != 3 {
		t.Fatalf("expected Bob's May report, got %+v", reports)
	}

	// Clearing both restores everything.
	ctrl.SetEmployee(ctx, "")
	ctrl.SetMonth(ctx, "")
	if len(ctrl.FilteredReports()) != 3 {
		t.Errorf("expected all 3 reports, got %d", len(ctrl.FilteredReports()))
	}
}

func TestFilteredViewReappliesPredicates(t *testing.T) {
	// This server ignores the name and date query params entirely, so the
	// displayed view must come from the client-side re-filter of the page.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"reports": []map[string]any{
				{"id": 1, "user": "Alice Wong", "request_title": "Team lunch", "date": "2025-05-03", "status": "pending"},
				{"id": 2, "user": "Alice Wong", "request_title": "Taxi", "date": "2025-06-10", "status": "pending"},
				{"id": 3, "user": "Bob Tan", "request_title": "Hotel", "date": "2025-05-20", "status": "pending"},
			},
			"totalPages": 1,
		})
	}))
	defer server.Close()

	ctrl := NewController(client.New(server.URL, "tok", server.Client()), nil)
	ctx := context.Background()

	ctrl.SetEmployee(ctx, "Alice Wong")

	if got := ctrl.Reports(); len(got) != 3 {
		t.Fatalf("expected the raw page to keep all 3 reports, got %d", len(got))
	}
	filtered := ctrl.FilteredReports()
	if len(filtered) != 2 {
		t.Fatalf("expected 2 displayed reports, got %+v", filtered)
	}
	for _, r := range filtered {
		if r.User != "Alice Wong" {
			t.Errorf("displayed row for %q leaked past the employee filter", r.User)
		}
	}

	// The month predicate narrows with AND on the same page.
	ctrl.SetMonth(ctx, "2025-05")
	filtered = ctrl.FilteredReports()
	if len(filtered) != 1 || filtered[0].ID != 1 {
		t.Fatalf("expected only Alice's May report, got %+v", filtered)
	}

	// Clearing the filters restores the full page.
	ctrl.SetEmployee(ctx, "")
	ctrl.SetMonth(ctx, "")
	if got := ctrl.FilteredReports(); len(got) != 3 {
		t.Errorf("expected all 3 reports displayed, got %d", len(got))
	}
}

func TestSetMonthLoadsAggregates(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	ctrl.SetMonth(ctx, "2025-05")
	rows := ctrl.Aggregates()
	if len(rows) != 1 || rows[0].Category != "Meals" {
		t.Fatalf("unexpected aggregates: %+v", rows)
	}

	ctrl.SetMonth(ctx, "")
	if len(ctrl.Aggregates()) != 0 {
		t.Error("clearing the month should clear the aggregates")
	}
}

func TestFinancePatchesOnlyTargetReport(t *testing.T) {
	ctrl, _, notifier := newTestController(t)
	ctx := context.Background()

	ctrl.Refresh(ctx)
	if err := ctrl.Finance(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range ctrl.Reports() {
		switch r.ID {
		case 1:
			if r.Status != "financed" {
				t.Errorf("report 1 should be financed, got %q", r.Status)
			}
		default:
			if r.Status != "pending" {
				t.Errorf("report %d should stay pending, got %q", r.ID, r.Status)
			}
		}
	}
	if notifier.last() != "Report financed" {
		t.Errorf("expected a success notice, got %q", notifier.last())
	}

	// The displayed view carries the patch too.
	for _, r := range ctrl.FilteredReports() {
		if r.ID == 1 && r.Status != "financed" {
			t.Errorf("filtered view should show report 1 financed, got %q", r.Status)
		}
	}
}

func TestRejectFlow(t *testing.T) {
	t.Run("empty reason makes no request and keeps the modal open", func(t *testing.T) {
		ctrl, api, _ := newTestController(t)
		ctx := context.Background()

		ctrl.Refresh(ctx)
		if !ctrl.OpenRejectModal(1) {
			t.Fatal("expected modal to open")
		}

		before := api.requests.Load()
		ctrl.SetRejectReason("   ")
		if err := ctrl.SubmitReject(ctx); err == nil {
			t.Fatal("expected validation error")
		}

		if api.requests.Load() != before {
			t.Error("blank reason must not reach the network")
		}
		if ctrl.RejectTarget() == nil {
			t.Error("modal should stay open after validation failure")
		}
		if !ctrl.InputLocked() {
			t.Error("input lock should still be held")
		}
	})

	t.Run("successful reject patches and closes", func(t *testing.T) {
		ctrl, _, notifier := newTestController(t)
		ctx := context.Background()

		ctrl.Refresh(ctx)
		if !ctrl.OpenRejectModal(2) {
			t.Fatal("expected modal to open")
		}
		ctrl.SetRejectReason("  missing receipt  ")
		if err := ctrl.SubmitReject(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if ctrl.RejectTarget() != nil {
			t.Error("modal should close after success")
		}
		if ctrl.InputLocked() {
			t.Error("input lock should be released")
		}
		if ctrl.RejectReason() != "" {
			t.Error("draft reason should be cleared")
		}

		for _, r := range ctrl.Reports() {
			if r.ID == 2 {
				if r.Status != "rejected" || r.RejectReason != "missing receipt" {
					t.Errorf("unexpected patched report: %+v", r)
				}
			}
		}
		if notifier.last() != "Report rejected" {
			t.Errorf("expected a success notice, got %q", notifier.last())
		}
	})

	t.Run("request failure keeps the modal open", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/reject") {
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "REPORT_NOT_PENDING", "message": "Only pending reports can be updated"},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"reports":    []map[string]any{{"id": 1, "user": "Alice Wong", "date": "2025-05-03", "status": "pending"}},
				"totalPages": 1,
			})
		}))
		defer server.Close()

		ctrl := NewController(client.New(server.URL, "tok", server.Client()), nil)
		ctx := context.Background()

		ctrl.Refresh(ctx)
		if !ctrl.OpenRejectModal(1) {
			t.Fatal("expected modal to open")
		}
		ctrl.SetRejectReason("reason")
		if err := ctrl.SubmitReject(ctx); err == nil {
			t.Fatal("expected error")
		}
		if ctrl.RejectTarget() == nil {
			t.Error("modal should stay open after a request failure")
		}
	})
}

func TestRejectReasonCap(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	long := strings.Repeat("x", 600)
	ctrl.SetRejectReason(long)

	if got := len([]rune(ctrl.RejectReason())); got != 500 {
		t.Errorf("expected reason truncated to 500 runes, got %d", got)
	}
	if ctrl.ReasonCharsLeft() != 0 {
		t.Errorf("expected 0 characters left, got %d", ctrl.ReasonCharsLeft())
	}

	ctrl.SetRejectReason("short")
	if ctrl.ReasonCharsLeft() != 495 {
		t.Errorf("expected 495 characters left, got %d", ctrl.ReasonCharsLeft())
	}
}

func TestPaginationGates(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	ctrl.Refresh(ctx)
	if ctrl.Page() != 1 || ctrl.TotalPages() != 1 {
		t.Fatalf("expected page 1 of 1, got %d of %d", ctrl.Page(), ctrl.TotalPages())
	}

	if ctrl.CanPrev() {
		t.Error("prev should be disabled on page 1")
	}
	if ctrl.CanNext() {
		t.Error("next should be disabled when totalPages is 1")
	}

	// Gated moves are no-ops.
	ctrl.NextPage(ctx)
	if ctrl.Page() != 1 {
		t.Errorf("next past the last page should not move, got page %d", ctrl.Page())
	}
	ctrl.PrevPage(ctx)
	if ctrl.Page() != 1 {
		t.Errorf("prev before page 1 should not move, got page %d", ctrl.Page())
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	ctrl, api, _ := newTestController(t)
	ctx := context.Background()

	// The May fetch stalls; the June fetch issued afterwards answers first.
	api.mu.Lock()
	api.reportsDelay["2025-05"] = 200 * time.Millisecond
	api.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.SetMonth(ctx, "2025-05")
	}()

	time.Sleep(50 * time.Millisecond)
	ctrl.SetMonth(ctx, "2025-06")
	wg.Wait()

	if got := ctrl.SelectedMonth(); got != "2025-06" {
		t.Fatalf("expected month 2025-06, got %q", got)
	}
	reports := ctrl.Reports()
	if len(reports) != 1 || reports[0].ID != 2 {
		t.Fatalf("stale May response should be discarded, got %+v", reports)
	}
}
