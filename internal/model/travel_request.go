package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestType enum constants
const (
	RequestTypeOperations = "operations"
	RequestTypeProject    = "project"
)

// RequestStatus enum constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// TravelRequest is a pre-trip approval request. Status leaves pending exactly
// once; the approver is fixed when the request is submitted.
type TravelRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterID uuid.UUID  `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   *User      `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	RequestType string     `gorm:"type:varchar(20);not null" json:"request_type"` // operations, project
	ProjectID   *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	Destination   string          `gorm:"type:varchar(255);not null" json:"destination"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time       `gorm:"type:date;not null" json:"end_date"`
	Purpose       string          `gorm:"type:text;not null" json:"purpose"`
	EstimatedCost decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"estimated_cost"`

	TAccountID uuid.UUID `gorm:"column:taccount_id;type:uuid;not null;index" json:"taccount_id"`
	TAccount   *TAccount `gorm:"foreignKey:TAccountID" json:"taccount,omitempty"`

	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApproverID       *uuid.UUID `gorm:"type:uuid;index" json:"approver_id"`
	Approver         *User      `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovalDate     *time.Time `json:"approval_date"`
	ApprovalComments *string    `gorm:"type:text" json:"approval_comments"`
	RejectionReason  *string    `gorm:"type:text" json:"rejection_reason"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidStatus reports whether status is one of the request states.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsPending reports whether a decision can still be taken on the request.
func (r *TravelRequest) IsPending() bool {
	return r.Status == StatusPending
}
