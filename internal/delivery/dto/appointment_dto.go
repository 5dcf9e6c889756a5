package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LockSlotRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	HolderToken string    `json:"holder_token" validate:"required"`
}

type ReleaseSlotRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	HolderToken string    `json:"holder_token" validate:"required"`
}

type BookAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id" validate:"required"`
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	Duration    int       `json:"duration" validate:"omitempty,min=5,max=240"`
	HolderToken string    `json:"holder_token"`
	Notes       string    `json:"notes" validate:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	NewStartAt  time.Time `json:"new_start_at" validate:"required"`
	HolderToken string    `json:"holder_token"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartAt   time.Time `json:"start_at"`
	Duration  int       `json:"duration"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LockSlotResponse struct {
	Locked    bool      `json:"locked"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AvailableSlotsResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	Date     string         `json:"date"`
	Duration int            `json:"duration"`
	Slots    []SlotResponse `json:"slots"`
	Total    int            `json:"total"`
}

type SlotResponse struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}
