package dto

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type AlertResponse struct {
	ID         int64     `json:"id"`
	CaseID     uuid.UUID `json:"case_id"`
	Severity   string    `json:"severity"`
	Department string    `json:"department,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Total  int             `json:"total"`
}

type AuditEntryResponse struct {
	ID        int64                  `json:"id"`
	Actor     string                 `json:"actor,omitempty"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type ActivityListResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
}
