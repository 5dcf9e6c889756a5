package repository

import (
	"errors"

	"medassist/internal/domain/entity"
	domainRepo "medassist/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type emergencyCaseRepository struct{}

func NewEmergencyCaseRepository() domainRepo.EmergencyCaseRepository {
	return &emergencyCaseRepository{}
}

func (r *emergencyCaseRepository) SaveTerminal(db *gorm.DB, record *entity.EmergencyCaseRecord) error {
	return db.Save(record).Error
}

func (r *emergencyCaseRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.EmergencyCaseRecord, error) {
	var record entity.EmergencyCaseRecord
	err := db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
