package repository

import (
	"medassist/internal/domain/entity"
	domainRepo "medassist/internal/domain/repository"

	"gorm.io/gorm"
)

type dashboardAlertRepository struct{}

func NewDashboardAlertRepository() domainRepo.DashboardAlertRepository {
	return &dashboardAlertRepository{}
}

func (r *dashboardAlertRepository) Create(db *gorm.DB, alert *entity.DashboardAlert) error {
	return db.Create(alert).Error
}

func (r *dashboardAlertRepository) FindUnread(db *gorm.DB, limit int) ([]entity.DashboardAlert, error) {
	var alerts []entity.DashboardAlert
	err := db.Where("read = ?", false).Order("created_at DESC").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *dashboardAlertRepository) MarkRead(db *gorm.DB, id int64) (int64, error) {
	result := db.Model(&entity.DashboardAlert{}).
		Where("id = ? AND read = ?", id, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
