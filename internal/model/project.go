package model

import (
	"time"

	"github.com/google/uuid"
)

// Project groups project-type travel requests. Its team lead approves them.
type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	TeamLeadID  *uuid.UUID `gorm:"type:uuid;index" json:"team_lead_id"`
	TeamLead    *User      `gorm:"foreignKey:TeamLeadID" json:"team_lead,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
