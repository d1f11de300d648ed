package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	ActionCreateProject     = "create_project"
	ActionUpdateProject     = "update_project"
	ActionAssignTeamLead    = "assign_team_lead"
	ActionDeactivateProject = "deactivate_project"
)

const (
	EntityTravelRequest = "travel_request"
	EntityProject       = "project"
)

// AuditLog is an append-only record of who did what to which entity.
// Rows are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string            `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string            `gorm:"type:varchar(100);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   string            `gorm:"type:varchar(50);not null;index:idx_audit_entity" json:"entity_id"`
	Details    datatypes.JSONMap `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time         `gorm:"index" json:"timestamp"`
}
