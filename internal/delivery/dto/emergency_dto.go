package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type OpenEmergencyRequest struct {
	Text     string `json:"text" validate:"required,max=2000"`
	Contact  string `json:"contact" validate:"required,max=100"`
	Location string `json:"location" validate:"max=255"`
}

type UpdateEmergencyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING DISPATCHED ARRIVED COMPLETED"`
	Actor  string `json:"actor" validate:"required,max=100"`
}

type ProvideLocationRequest struct {
	Location string `json:"location" validate:"required,max=255"`
}

// Response DTOs

type EmergencyCaseResponse struct {
	ID          uuid.UUID              `json:"id"`
	Severity    AssessmentResponse     `json:"severity"`
	Contact     string                 `json:"contact"`
	Location    string                 `json:"location,omitempty"`
	Status      string                 `json:"status"`
	Notes       []string               `json:"notes,omitempty"`
	Transitions []CaseTransitionEntry  `json:"transitions"`
	Deliveries  []ChannelDeliveryEntry `json:"deliveries,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type CaseTransitionEntry struct {
	Status    string    `json:"status"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

type ChannelDeliveryEntry struct {
	Channel   string `json:"channel"`
	Attempts  int    `json:"attempts"`
	Delivered bool   `json:"delivered"`
	LastError string `json:"last_error,omitempty"`
}

type EmergencyListResponse struct {
	Cases []EmergencyCaseResponse `json:"cases"`
	Total int                     `json:"total"`
}
