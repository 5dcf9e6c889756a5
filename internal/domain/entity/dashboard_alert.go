package entity

import (
	"time"

	"github.com/google/uuid"
)

// DashboardAlert is the persisted in-app channel of the notification gateway:
// emergency staff see these on the admin dashboard.
type DashboardAlert struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"case_id"`
	Severity   string    `gorm:"type:varchar(20);not null;index" json:"severity"`
	Department string    `gorm:"type:varchar(100)" json:"department"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Read       bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (DashboardAlert) TableName() string {
	return "dashboard_alerts"
}
