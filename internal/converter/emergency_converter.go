package converter

import (
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
)

// EmergencyCaseToResponse converts an EmergencyCase snapshot to its response DTO
func EmergencyCaseToResponse(c *entity.EmergencyCase) *dto.EmergencyCaseResponse {
	if c == nil {
		return nil
	}
	transitions := make([]dto.CaseTransitionEntry, 0, len(c.Transitions))
	for _, t := range c.Transitions {
		transitions = append(transitions, dto.CaseTransitionEntry{
			Status:    string(t.Status),
			Actor:     t.Actor,
			Timestamp: t.Timestamp,
		})
	}
	deliveries := make([]dto.ChannelDeliveryEntry, 0, len(c.Deliveries))
	for _, d := range c.Deliveries {
		deliveries = append(deliveries, dto.ChannelDeliveryEntry{
			Channel:   d.Channel,
			Attempts:  d.Attempts,
			Delivered: d.Delivered,
			LastError: d.LastError,
		})
	}
	return &dto.EmergencyCaseResponse{
		ID:          c.ID,
		Severity:    *AssessmentToResponse(&c.Severity),
		Contact:     c.Contact,
		Location:    c.Location,
		Status:      string(c.Status),
		Notes:       c.Notes,
		Transitions: transitions,
		Deliveries:  deliveries,
		CreatedAt:   c.CreatedAt,
	}
}

// EmergencyCasesToResponses converts a slice of EmergencyCase snapshots
func EmergencyCasesToResponses(cases []entity.EmergencyCase) []dto.EmergencyCaseResponse {
	responses := make([]dto.EmergencyCaseResponse, 0, len(cases))
	for i := range cases {
		responses = append(responses, *EmergencyCaseToResponse(&cases[i]))
	}
	return responses
}
