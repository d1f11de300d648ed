package model

import (
	"time"

	"github.com/google/uuid"
)

// TAccount is a budget account used to categorise travel costs.
type TAccount struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountCode string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"account_code"` // e.g. T-1001
	AccountName string    `gorm:"type:varchar(255);not null" json:"account_name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TAccount) TableName() string {
	return "t_accounts"
}
