package repository

import (
	"medassist/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmergencyCaseRepository is the persistence collaborator that receives a case
// once the orchestrator is done with it. Active cases never touch the store.
type EmergencyCaseRepository interface {
	SaveTerminal(db *gorm.DB, record *entity.EmergencyCaseRecord) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.EmergencyCaseRecord, error)
}
