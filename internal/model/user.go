package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enum constants
const (
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleTeamLead   = "team_lead"
	RoleAdmin      = "admin"
	RoleAccounting = "accounting"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleTeamLead, RoleAdmin, RoleAccounting:
		return true
	}
	return false
}

// User is any actor of the workflow. ManagerID is a plain reference resolved
// through the user repository; only the direct manager is ever consulted.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Role         string     `gorm:"type:varchar(30);not null;index" json:"role"` // employee, manager, team_lead, admin, accounting
	ManagerID    *uuid.UUID `gorm:"type:uuid;index" json:"manager_id"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CanLeadProjects reports whether the user may be assigned as a project team lead.
func (u *User) CanLeadProjects() bool {
	return u.Role == RoleTeamLead || u.Role == RoleManager
}
