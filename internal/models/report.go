package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportStatus represents the lifecycle status of an expense report
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusFinanced ReportStatus = "financed"
	StatusRejected ReportStatus = "rejected"
)

// Report represents a single employee expense submission. Reports use a
// numeric primary key; UserName snapshots the submitter's display name so
// that admin filters match rows without a join.
type Report struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName string `gorm:"not null" json:"user_name"`

	Title       string       `gorm:"not null" json:"title"`
	Date        time.Time    `gorm:"not null;index" json:"date"`
	Amount      int64        `gorm:"type:bigint;not null" json:"amount"` // cents
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Status      ReportStatus `gorm:"not null;default:pending;index" json:"status"`

	// Set iff Status is rejected.
	RejectReason string `json:"reject_reason,omitempty"`

	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	ReceiptURL  string    `json:"receipt_url,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// MonthKey returns the report date's "YYYY-MM" prefix.
func (r *Report) MonthKey() string {
	return r.Date.Format("2006-01")
}
