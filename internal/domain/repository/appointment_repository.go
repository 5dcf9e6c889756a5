package repository

import (
	"time"

	"medassist/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindActiveBySlot(db *gorm.DB, doctorID uuid.UUID, startAt time.Time) (*entity.Appointment, error)
	FindActiveByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error)
	UpdateSlot(db *gorm.DB, id uuid.UUID, startAt time.Time, status entity.AppointmentStatus) error
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
}
