// Package client provides an HTTP client for the ExpenseDesk API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// User represents a user returned by the ExpenseDesk API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Report represents an expense report returned by the ExpenseDesk API.
type Report struct {
	ID           uint   `json:"id"`
	User         string `json:"user"`
	Title        string `json:"request_title"`
	Date         string `json:"date"` // YYYY-MM-DD
	Amount       int64  `json:"amount"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason"`
	SubmittedAt  string `json:"submitted_at"`
	ReceiptURL   string `json:"receipt_url"`
}

// ReportPage is one page of reports plus the total page count.
type ReportPage struct {
	Reports    []Report `json:"reports"`
	TotalPages int      `json:"totalPages"`
}

// MonthlyAggregate is one per-category summary row for a month.
type MonthlyAggregate struct {
	Category    string `json:"category"`
	ReportCount int64  `json:"report_count"`
	TotalAmount int64  `json:"total_amount"`
}

// ReportQuery holds the optional parameters for listing reports.
type ReportQuery struct {
	Page  int
	Limit int
	Name  string // exact employee display name
	Month string // YYYY-MM
}

// Client communicates with the ExpenseDesk API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new ExpenseDesk API client.
func New(baseURL, token string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Login authenticates and returns the bearer token and user. The returned
// token is also stored on the client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, *User, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var result struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", body, http.StatusOK, &result); err != nil {
		return "", nil, fmt.Errorf("logging in: %w", err)
	}

	c.token = result.Token
	return result.Token, &result.User, nil
}

// GetUsers fetches all users for the employee filter dropdown.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/users", nil, http.StatusOK, &users); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	return users, nil
}

// GetReports fetches one page of reports with the given filters.
func (c *Client) GetReports(ctx context.Context, query ReportQuery) (*ReportPage, error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Name != "" {
		params.Set("name", query.Name)
	}
	if query.Month != "" {
		params.Set("date", query.Month)
	}

	path := "/api/v1/reports"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page ReportPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, http.StatusOK, &page); err != nil {
		return nil, fmt.Errorf("fetching reports: %w", err)
	}
	return &page, nil
}

// GetAggregate fetches the per-category totals for one "YYYY-MM" month.
func (c *Client) GetAggregate(ctx context.Context, month string) ([]MonthlyAggregate, error) {
	var rows []MonthlyAggregate
	path := "/api/v1/reports/aggregate?month=" + url.QueryEscape(month)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, http.StatusOK, &rows); err != nil {
		return nil, fmt.Errorf("fetching aggregate: %w", err)
	}
	return rows, nil
}

// FinanceReport marks a pending report as financed and returns the updated report.
func (c *Client) FinanceReport(ctx context.Context, id uint) (*Report, error) {
	var report Report
	path := fmt.Sprintf("/api/v1/reports/%d/finance", id)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, http.StatusOK, &report); err != nil {
		return nil, fmt.Errorf("financing report %d: %w", id, err)
	}
	return &report, nil
}

// RejectReport marks a pending report as rejected with a reason.
func (c *Client) RejectReport(ctx context.Context, id uint, reason string) error {
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}

	path := fmt.Sprintf("/api/v1/reports/%d/reject", id)
	if err := c.doJSON(ctx, http.MethodPost, path, body, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("rejecting report %d: %w", id, err)
	}
	return nil
}

// UpdateUserRole changes a user's role and returns the updated user.
func (c *Client) UpdateUserRole(ctx context.Context, id, role string) (*User, error) {
	body := struct {
		Role string `json:"role"`
	}{Role: role}

	var user User
	path := "/api/v1/users/" + url.PathEscape(id) + "/role"
	if err := c.doJSON(ctx, http.MethodPut, path, body, http.StatusOK, &user); err != nil {
		return nil, fmt.Errorf("updating role for user %s: %w", id, err)
	}
	return &user, nil
}

// doJSON issues one request with the bearer token and decodes the response
// into out when it is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, wantStatus int, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// APIError is a structured error returned by the ExpenseDesk API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
}
