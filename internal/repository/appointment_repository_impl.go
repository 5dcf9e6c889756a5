package repository

import (
	"errors"
	"time"

	"medassist/internal/domain/entity"
	domainRepo "medassist/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var activeStatuses = []entity.AppointmentStatus{
	entity.AppointmentStatusScheduled,
	entity.AppointmentStatusRescheduled,
}

var terminalStatuses = []entity.AppointmentStatus{
	entity.AppointmentStatusCancelled,
	entity.AppointmentStatusCompleted,
}

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveBySlot(db *gorm.DB, doctorID uuid.UUID, startAt time.Time) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("doctor_id = ? AND start_at = ? AND status IN ?", doctorID, startAt.UTC(), activeStatuses).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND start_at >= ? AND start_at < ? AND status IN ?",
		doctorID, dayStart.UTC(), dayEnd.UTC(), activeStatuses).
		Order("start_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateSlot(db *gorm.DB, id uuid.UUID, startAt time.Time, status entity.AppointmentStatus) error {
	return db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"start_at": startAt.UTC(), "status": status}).Error
}

// UpdateStatus atomically moves an appointment that is still in a live
// status. Returns affected rows: 1 = success, 0 = the appointment already
// reached a terminal status (double-cancel races, or cancelling a completed
// visit).
func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Update("status", status)
	return result.RowsAffected, result.Error
}
