package converter

import (
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
)

// ScheduleToResponse converts a DoctorSchedule entity to its response DTO
func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}
	return &dto.ScheduleResponse{
		ID:           schedule.ID,
		DoctorID:     schedule.DoctorID,
		ScheduleDate: schedule.ScheduleDate.Format("2006-01-02"),
		StartTime:    schedule.StartTime,
		EndTime:      schedule.EndTime,
		CreatedAt:    schedule.CreatedAt,
		UpdatedAt:    schedule.UpdatedAt,
	}
}

// SchedulesToResponses converts a slice of DoctorSchedule entities
func SchedulesToResponses(schedules []entity.DoctorSchedule) []dto.ScheduleResponse {
	responses := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, *ScheduleToResponse(&schedules[i]))
	}
	return responses
}
