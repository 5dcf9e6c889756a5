package repository

import (
	"medassist/internal/domain/entity"

	"gorm.io/gorm"
)

type DashboardAlertRepository interface {
	Create(db *gorm.DB, alert *entity.DashboardAlert) error
	FindUnread(db *gorm.DB, limit int) ([]entity.DashboardAlert, error)
	MarkRead(db *gorm.DB, id int64) (int64, error)
}
