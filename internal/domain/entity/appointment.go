package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
)

// SlotKey identifies exactly one bookable unit: a doctor and a discrete slot
// start time (fixed granularity, stored in UTC).
type SlotKey struct {
	DoctorID uuid.UUID
	StartAt  time.Time
}

// String renders the key in the canonical "doctorID:RFC3339" form used by the
// slot ledger implementations.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s:%s", k.DoctorID, k.StartAt.UTC().Format(time.RFC3339))
}

// Appointment represents a booked slot. At most one non-cancelled appointment
// may exist per SlotKey at any time; the slot ledger enforces this under
// concurrency and the DB unique index backs it durably.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_slot" json:"doctor_id"`
	StartAt   time.Time         `gorm:"not null;index:idx_appointments_slot" json:"start_at"`
	Duration  int               `gorm:"not null" json:"duration"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SlotKey returns the key of the slot this appointment occupies.
func (a *Appointment) SlotKey() SlotKey {
	return SlotKey{DoctorID: a.DoctorID, StartAt: a.StartAt}
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusRescheduled
}

// IsCancelled checks if the appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// Cancel changes appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}
