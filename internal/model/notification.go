package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enum constants
const (
	NotificationRequestSubmitted = "request_submitted"
	NotificationRequestApproved  = "request_approved"
	NotificationRequestRejected  = "request_rejected"
)

// Notification is an in-app message. Only IsRead ever changes after insert.
type Notification struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TravelRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"travel_request_id"`
	Type            string    `gorm:"column:notification_type;type:varchar(30);not null" json:"type"`
	Message         string    `gorm:"type:text;not null" json:"message"`
	IsRead          bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
