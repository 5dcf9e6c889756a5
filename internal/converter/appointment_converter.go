package converter

import (
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to its response DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}
	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		PatientID: appointment.PatientID,
		DoctorID:  appointment.DoctorID,
		StartAt:   appointment.StartAt,
		Duration:  appointment.Duration,
		Status:    string(appointment.Status),
		Notes:     appointment.Notes,
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}
