// Command dashboard renders the admin expense dashboard once: it logs in
// (or reuses a stored session), loads the filtered report page, and prints
// the table plus the monthly per-category totals.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"expensedesk/internal/client"
	"expensedesk/internal/dashboard"
	"expensedesk/internal/format"
	"expensedesk/internal/prefs"
	"expensedesk/internal/session"
)

type config struct {
	APIURL         string
	Username       string
	Password       string
	Employee       string
	Month          string
	Page           int
	StateFile      string
	RequestTimeout time.Duration
}

func loadConfig() (*config, error) {
	cfg := &config{
		APIURL:         getEnv("EXPENSEDESK_API_URL", "http://localhost:8080"),
		Username:       os.Getenv("EXPENSEDESK_USERNAME"),
		Password:       os.Getenv("EXPENSEDESK_PASSWORD"),
		Employee:       os.Getenv("EXPENSEDESK_EMPLOYEE"),
		Month:          os.Getenv("EXPENSEDESK_MONTH"),
		Page:           1,
		RequestTimeout: 15 * time.Second,
	}

	if raw := os.Getenv("EXPENSEDESK_PAGE"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &cfg.Page); err != nil || cfg.Page < 1 {
			return nil, fmt.Errorf("invalid EXPENSEDESK_PAGE %q", raw)
		}
	}
	if raw := os.Getenv("EXPENSEDESK_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPENSEDESK_TIMEOUT %q: %w", raw, err)
		}
		cfg.RequestTimeout = d
	}

	cfg.StateFile = os.Getenv("EXPENSEDESK_STATE_FILE")
	if cfg.StateFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.StateFile = filepath.Join(home, ".config", "expensedesk", "state.json")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config, logger *slog.Logger) error {
	storage := session.NewFileStorage(cfg.StateFile)
	sessions := session.NewStore(storage)
	preferences := prefs.NewStore(storage)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	api := client.New(cfg.APIURL, sessions.Token(), httpClient)

	ctx := context.Background()

	if sessions.Current() == nil {
		if cfg.Username == "" || cfg.Password == "" {
			return fmt.Errorf("no stored session; set EXPENSEDESK_USERNAME and EXPENSEDESK_PASSWORD")
		}
		token, user, err := api.Login(ctx, cfg.Username, cfg.Password)
		if err != nil {
			return fmt.Errorf("logging in: %w", err)
		}
		if err := sessions.Login(token, session.User{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		}); err != nil {
			logger.Warn("session not persisted", "error", err)
		}
		logger.Info("logged in", "user", user.Name, "role", user.Role)
	} else {
		logger.Info("using stored session", "user", sessions.Current().User.Name)
	}

	notices := dashboard.NotifierFunc(func(message string) {
		fmt.Fprintln(os.Stderr, message)
	})
	ctrl := dashboard.NewController(api, notices)

	ctrl.LoadUsers(ctx)
	if cfg.Employee != "" {
		ctrl.SetEmployee(ctx, cfg.Employee)
	}
	if cfg.Month != "" {
		ctrl.SetMonth(ctx, cfg.Month)
	} else {
		ctrl.Refresh(ctx)
	}
	for ctrl.Page() < cfg.Page && ctrl.CanNext() {
		ctrl.NextPage(ctx)
	}

	render(os.Stdout, ctrl, preferences.Language())

	logger.Info("dashboard rendered",
		"reports", len(ctrl.FilteredReports()),
		"page", ctrl.Page(),
		"total_pages", ctrl.TotalPages(),
		"employee", ctrl.SelectedEmployee(),
		"month", ctrl.SelectedMonth(),
	)
	return nil
}

func render(out *os.File, ctrl *dashboard.Controller, lang string) {
	f := format.New(lang)

	if names := dashboard.EmployeeNames(ctrl.Users()); len(names) > 0 {
		fmt.Fprintf(out, "Employees: %s\n", strings.Join(names, ", "))
	}
	if options := dashboard.MonthOptions(ctrl.Reports(), lang); len(options) > 0 {
		labels := make([]string, len(options))
		for i, o := range options {
			labels[i] = o.Label
		}
		fmt.Fprintf(out, "Months: %s\n\n", strings.Join(labels, ", "))
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMPLOYEE\tTITLE\tDATE\tAMOUNT\tSTATUS")
	for _, r := range ctrl.FilteredReports() {
		date := r.Date
		if d, err := time.Parse("2006-01-02", r.Date); err == nil {
			date = f.Date(d)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.User, r.Title, date, f.Currency(r.Amount), r.Status)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nPage %d of %d\n", ctrl.Page(), ctrl.TotalPages())

	if rows := ctrl.Aggregates(); len(rows) > 0 {
		fmt.Fprintf(out, "\nTotals for %s\n", f.MonthLabel(ctrl.SelectedMonth()))
		aw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(aw, "CATEGORY\tREPORTS\tTOTAL")
		for _, row := range rows {
			fmt.Fprintf(aw, "%s\t%d\t%s\n", row.Category, row.ReportCount, f.Currency(row.TotalAmount))
		}
		_ = aw.Flush()
	}
}
