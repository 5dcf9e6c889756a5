package converter

import (
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
)

// AlertToResponse converts a DashboardAlert entity to its response DTO
func AlertToResponse(alert *entity.DashboardAlert) *dto.AlertResponse {
	if alert == nil {
		return nil
	}
	return &dto.AlertResponse{
		ID:         alert.ID,
		CaseID:     alert.CaseID,
		Severity:   alert.Severity,
		Department: alert.Department,
		Message:    alert.Message,
		CreatedAt:  alert.CreatedAt,
	}
}

// AlertsToResponses converts a slice of DashboardAlert entities
func AlertsToResponses(alerts []entity.DashboardAlert) []dto.AlertResponse {
	responses := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		responses = append(responses, *AlertToResponse(&alerts[i]))
	}
	return responses
}

// AuditLogsToResponses converts a slice of AuditLog entities
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditEntryResponse {
	responses := make([]dto.AuditEntryResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, dto.AuditEntryResponse{
			ID:        log.ID,
			Actor:     log.Actor,
			Action:    log.Action,
			Metadata:  map[string]interface{}(log.Metadata),
			CreatedAt: log.CreatedAt,
		})
	}
	return responses
}
