package usecase

import (
	"context"
	"time"

	"medassist/internal/converter"
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
	"medassist/internal/domain/repository"
	"medassist/internal/service"
	"medassist/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorScheduleUsecase interface {
	CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	GetSchedule(ctx context.Context, scheduleID int) (*dto.ScheduleResponse, error)
	GetSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.ScheduleListResponse, error)
	GetAllSchedules(ctx context.Context) (*dto.ScheduleListResponse, error)
	UpdateSchedule(ctx context.Context, scheduleID int, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, scheduleID int) error
}

type doctorScheduleUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	scheduleRepo repository.DoctorScheduleRepository
	audit        service.AuditService
}

func NewDoctorScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	audit service.AuditService,
) DoctorScheduleUsecase {
	return &doctorScheduleUsecase{
		db:           db,
		log:          log,
		scheduleRepo: scheduleRepo,
		audit:        audit,
	}
}

func (u *doctorScheduleUsecase) CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	scheduleDate, err := time.Parse("2006-01-02", req.ScheduleDate)
	if err != nil {
		return nil, apperr.Validation("invalid schedule date format, use YYYY-MM-DD")
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	schedule := &entity.DoctorSchedule{
		DoctorID:     req.DoctorID,
		ScheduleDate: scheduleDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}
	if err := u.scheduleRepo.Create(u.db.WithContext(ctx), schedule); err != nil {
		u.log.Warnf("Failed to create schedule: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, SystemActor, entity.AuditActionScheduleCreate, entity.JSON{
		"schedule_id": schedule.ID,
		"doctor_id":   req.DoctorID.String(),
	})
	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) GetSchedule(ctx context.Context, scheduleID int) (*dto.ScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, apperr.NotFound("schedule not found")
	}
	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) GetSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.ScheduleListResponse, error) {
	schedules, err := u.scheduleRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find schedules for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return &dto.ScheduleListResponse{
		Schedules: converter.SchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

func (u *doctorScheduleUsecase) GetAllSchedules(ctx context.Context) (*dto.ScheduleListResponse, error) {
	schedules, err := u.scheduleRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list schedules: %+v", err)
		return nil, err
	}
	return &dto.ScheduleListResponse{
		Schedules: converter.SchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

func (u *doctorScheduleUsecase) UpdateSchedule(ctx context.Context, scheduleID int, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, apperr.NotFound("schedule not found")
	}

	if req.ScheduleDate != "" {
		scheduleDate, err := time.Parse("2006-01-02", req.ScheduleDate)
		if err != nil {
			return nil, apperr.Validation("invalid schedule date format, use YYYY-MM-DD")
		}
		schedule.ScheduleDate = scheduleDate
	}
	if req.StartTime != "" {
		schedule.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		schedule.EndTime = req.EndTime
	}
	if err := validateTimeRange(schedule.StartTime, schedule.EndTime); err != nil {
		return nil, err
	}

	if err := u.scheduleRepo.Update(u.db.WithContext(ctx), schedule); err != nil {
		u.log.Warnf("Failed to update schedule %d: %+v", scheduleID, err)
		return nil, err
	}

	u.audit.Record(ctx, SystemActor, entity.AuditActionScheduleUpdate, entity.JSON{
		"schedule_id": scheduleID,
	})
	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) DeleteSchedule(ctx context.Context, scheduleID int) error {
	affected, err := u.scheduleRepo.Delete(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to delete schedule %d: %+v", scheduleID, err)
		return err
	}
	if affected == 0 {
		return apperr.NotFound("schedule not found")
	}

	u.audit.Record(ctx, SystemActor, entity.AuditActionScheduleDelete, entity.JSON{
		"schedule_id": scheduleID,
	})
	return nil
}

func validateTimeRange(start, end string) error {
	startTime, err := time.Parse("15:04", start)
	if err != nil {
		return apperr.Validation("invalid start time format, use HH:MM")
	}
	endTime, err := time.Parse("15:04", end)
	if err != nil {
		return apperr.Validation("invalid end time format, use HH:MM")
	}
	if !endTime.After(startTime) {
		return apperr.Validation("end time must be after start time")
	}
	return nil
}
