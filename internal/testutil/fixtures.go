package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expensedesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a hashed password and unique
// username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithName(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithName creates an active user with the given username.
func CreateTestUserWithName(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    username + "@test.com",
		Password: string(hash),
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates an active user with the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	user.Role = models.RoleAdmin
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	return user
}

// CreateTestReport creates a pending report for the user dated on the given
// day with the given amount (in cents).
func CreateTestReport(t *testing.T, db *gorm.DB, user *models.User, date time.Time, amount int64) *models.Report {
	t.Helper()

	report := &models.Report{
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		Title:       fmt.Sprintf("Test Report %d", nextID()),
		Date:        date,
		Amount:      amount,
		Category:    "Travel",
		Status:      models.StatusPending,
		SubmittedAt: time.Now(),
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("failed to create test report: %v", err)
	}
	return report
}

// CreateTestReportWithStatus creates a report in the given status.
func CreateTestReportWithStatus(t *testing.T, db *gorm.DB, user *models.User, status models.ReportStatus) *models.Report {
	t.Helper()

	report := CreateTestReport(t, db, user, time.Now(), 2500)
	report.Status = status
	if status == models.StatusRejected {
		report.RejectReason = "test rejection"
	}
	if err := db.Save(report).Error; err != nil {
		t.Fatalf("failed to update test report status: %v", err)
	}
	return report
}
