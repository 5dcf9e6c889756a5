package usecase

import (
	"context"
	"fmt"
	"time"

	"medassist/config"
	"medassist/internal/domain/entity"
	"medassist/internal/domain/repository"
	"medassist/internal/service"
	"medassist/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BookAppointmentInput struct {
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	StartAt     time.Time
	Duration    int
	HolderToken string
	Notes       string
}

// AvailableSlot is one free candidate slot.
type AvailableSlot struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type BookingUsecase interface {
	LockSlot(ctx context.Context, doctorID uuid.UUID, startAt time.Time, holderToken string) (time.Time, error)
	ReleaseSlot(ctx context.Context, doctorID uuid.UUID, startAt time.Time, holderToken string) error
	Book(ctx context.Context, input *BookAppointmentInput) (*entity.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, newStartAt time.Time, holderToken string) (*entity.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, duration int) ([]AvailableSlot, error)
}

// bookingUsecase coordinates the slot ledger (fast, racy path) with the
// durable appointment store. The ledger decides every race; the DB write
// follows, with ledger compensation when it fails.
type bookingUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	scheduleRepo    repository.DoctorScheduleRepository
	ledger          service.SlotLedger
	audit           service.AuditService
	cfg             config.BookingConfig
	now             func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	scheduleRepo repository.DoctorScheduleRepository,
	ledger service.SlotLedger,
	audit service.AuditService,
	cfg config.BookingConfig,
) BookingUsecase {
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = 30
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &bookingUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		ledger:          ledger,
		audit:           audit,
		cfg:             cfg,
		now:             time.Now,
	}
}

// slotKey validates alignment against the slot granularity and normalizes to
// UTC.
func (u *bookingUsecase) slotKey(doctorID uuid.UUID, startAt time.Time) (entity.SlotKey, error) {
	start := startAt.UTC()
	granularity := time.Duration(u.cfg.SlotMinutes) * time.Minute
	if !start.Truncate(granularity).Equal(start) {
		return entity.SlotKey{}, apperr.Validation(
			fmt.Sprintf("slot start must align to %d-minute boundaries", u.cfg.SlotMinutes))
	}
	return entity.SlotKey{DoctorID: doctorID, StartAt: start}, nil
}

// LockSlot reserves a slot for the booking flow. The reservation is advisory
// with a TTL: holding it past expiry is the same as not holding it.
func (u *bookingUsecase) LockSlot(ctx context.Context, doctorID uuid.UUID, startAt time.Time, holderToken string) (time.Time, error) {
	if holderToken == "" {
		return time.Time{}, apperr.Validation("holder token is required")
	}
	key, err := u.slotKey(doctorID, startAt)
	if err != nil {
		return time.Time{}, err
	}
	if key.StartAt.Before(u.now()) {
		return time.Time{}, apperr.Validation("cannot lock a past slot")
	}

	// The ledger does not survive restarts; an appointment row in the DB
	// still occupies the slot.
	existing, err := u.appointmentRepo.FindActiveBySlot(u.db.WithContext(ctx), key.DoctorID, key.StartAt)
	if err != nil {
		u.log.Warnf("Failed to check slot %s: %+v", key, err)
		return time.Time{}, err
	}
	if existing != nil {
		return time.Time{}, apperr.Conflict("slot is already booked")
	}

	if err := u.ledger.Acquire(ctx, key, holderToken, u.cfg.LockTTL); err != nil {
		return time.Time{}, err
	}
	return u.now().Add(u.cfg.LockTTL), nil
}

func (u *bookingUsecase) ReleaseSlot(ctx context.Context, doctorID uuid.UUID, startAt time.Time, holderToken string) error {
	if holderToken == "" {
		return apperr.Validation("holder token is required")
	}
	key, err := u.slotKey(doctorID, startAt)
	if err != nil {
		return err
	}
	return u.ledger.Release(ctx, key, holderToken)
}

// Book claims the slot and writes the appointment.
//
// Flow:
// 1. Validate the key and that the slot is in the future
// 2. Ledger claim (the atomic check-and-set deciding every race)
// 3. Re-check the durable store, in case the ledger is fresh
// 4. Insert appointment; on failure compensate by freeing the claim
func (u *bookingUsecase) Book(ctx context.Context, input *BookAppointmentInput) (*entity.Appointment, error) {
	if input.PatientID == uuid.Nil || input.DoctorID == uuid.Nil {
		return nil, apperr.Validation("patient and doctor are required")
	}
	if input.Duration <= 0 {
		input.Duration = u.cfg.SlotMinutes
	}
	key, err := u.slotKey(input.DoctorID, input.StartAt)
	if err != nil {
		return nil, err
	}
	if key.StartAt.Before(u.now()) {
		return nil, apperr.Validation("cannot book a past slot")
	}

	if err := u.ledger.Claim(ctx, key, input.HolderToken, u.cfg.RequireLock); err != nil {
		return nil, err
	}

	existing, err := u.appointmentRepo.FindActiveBySlot(u.db.WithContext(ctx), key.DoctorID, key.StartAt)
	if err != nil {
		u.compensate(ctx, key)
		u.log.Warnf("Failed to check existing appointment for slot %s: %+v", key, err)
		return nil, err
	}
	if existing != nil {
		u.compensate(ctx, key)
		return nil, apperr.Conflict("slot is already booked")
	}

	appointment := &entity.Appointment{
		ID:        uuid.New(),
		PatientID: input.PatientID,
		DoctorID:  key.DoctorID,
		StartAt:   key.StartAt,
		Duration:  input.Duration,
		Status:    entity.AppointmentStatusScheduled,
		Notes:     input.Notes,
	}
	if err := u.appointmentRepo.Create(u.db.WithContext(ctx), appointment); err != nil {
		u.log.Errorf("Failed to insert appointment for slot %s, compensating ledger: %+v", key, err)
		u.compensate(ctx, key)
		return nil, err
	}

	u.audit.Record(ctx, input.PatientID.String(), entity.AuditActionAppointmentBook, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"doctor_id":      key.DoctorID.String(),
		"start_at":       key.StartAt,
	})
	u.log.Infof("Appointment booked: id=%s slot=%s", appointment.ID, key)
	return appointment, nil
}

// Reschedule claims the new slot first; only after that succeeds does it
// touch the existing appointment, so a conflict leaves the original exactly
// as it was.
func (u *bookingUsecase) Reschedule(ctx context.Context, id uuid.UUID, newStartAt time.Time, holderToken string) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, apperr.NotFound("appointment not found")
	}
	if !appointment.IsActive() {
		return nil, apperr.Conflict(fmt.Sprintf("cannot reschedule a %s appointment", appointment.Status))
	}

	newKey, err := u.slotKey(appointment.DoctorID, newStartAt)
	if err != nil {
		return nil, err
	}
	if newKey.StartAt.Before(u.now()) {
		return nil, apperr.Validation("cannot reschedule into a past slot")
	}
	oldKey := appointment.SlotKey()
	if newKey == oldKey {
		return appointment, nil
	}

	if err := u.ledger.Claim(ctx, newKey, holderToken, u.cfg.RequireLock); err != nil {
		return nil, err
	}

	existing, err := u.appointmentRepo.FindActiveBySlot(u.db.WithContext(ctx), newKey.DoctorID, newKey.StartAt)
	if err != nil {
		u.compensate(ctx, newKey)
		return nil, err
	}
	if existing != nil {
		u.compensate(ctx, newKey)
		return nil, apperr.Conflict("new slot is already booked")
	}

	if err := u.appointmentRepo.UpdateSlot(u.db.WithContext(ctx), id, newKey.StartAt, entity.AppointmentStatusRescheduled); err != nil {
		u.log.Errorf("Failed to move appointment %s, compensating ledger: %+v", id, err)
		u.compensate(ctx, newKey)
		return nil, err
	}

	// The old slot only opens up once the move is durable.
	if err := u.ledger.Free(ctx, oldKey); err != nil {
		u.log.Warnf("Failed to free old slot %s (non-fatal): %+v", oldKey, err)
	}

	appointment.StartAt = newKey.StartAt
	appointment.Status = entity.AppointmentStatusRescheduled

	u.audit.Record(ctx, appointment.PatientID.String(), entity.AuditActionAppointmentReschedule, entity.JSON{
		"appointment_id": id.String(),
		"old_start_at":   oldKey.StartAt,
		"new_start_at":   newKey.StartAt,
	})
	u.log.Infof("Appointment rescheduled: id=%s %s -> %s", id, oldKey, newKey)
	return appointment, nil
}

// Cancel marks the appointment cancelled and frees its slot unconditionally.
func (u *bookingUsecase) Cancel(ctx context.Context, id uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if appointment == nil {
		return apperr.NotFound("appointment not found")
	}

	affected, err := u.appointmentRepo.UpdateStatus(u.db.WithContext(ctx), id, entity.AppointmentStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return apperr.Conflict(fmt.Sprintf("cannot cancel a %s appointment", appointment.Status))
	}

	if err := u.ledger.Free(ctx, appointment.SlotKey()); err != nil {
		u.log.Warnf("Failed to free slot %s (non-fatal): %+v", appointment.SlotKey(), err)
	}

	u.audit.Record(ctx, appointment.PatientID.String(), entity.AuditActionAppointmentCancel, entity.JSON{
		"appointment_id": id.String(),
	})
	u.log.Infof("Appointment cancelled: id=%s slot=%s", id, appointment.SlotKey())
	return nil
}

// AvailableSlots partitions the doctor's working hours into duration-sized
// candidates and filters out anything booked or carrying a live lock.
func (u *bookingUsecase) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, duration int) ([]AvailableSlot, error) {
	if duration <= 0 {
		duration = u.cfg.SlotMinutes
	}
	step := time.Duration(duration) * time.Minute

	schedules, err := u.scheduleRepo.FindByDoctorAndDate(u.db.WithContext(ctx), doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to load working hours for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if len(schedules) == 0 {
		return []AvailableSlot{}, nil
	}

	dayStart := date.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	appointments, err := u.appointmentRepo.FindActiveByDoctorAndDay(u.db.WithContext(ctx), doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := []AvailableSlot{}
	for _, schedule := range schedules {
		r := schedule.Range()
		for start := r.Start; !start.Add(step).After(r.End); start = start.Add(step) {
			end := start.Add(step)
			if overlapsAny(start, end, appointments) {
				continue
			}
			occupied, err := u.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: start})
			if err != nil {
				return nil, err
			}
			if occupied {
				continue
			}
			slots = append(slots, AvailableSlot{StartAt: start, EndAt: end})
		}
	}
	return slots, nil
}

// compensate frees a ledger claim after a failed DB write so the two stores
// stay consistent.
func (u *bookingUsecase) compensate(ctx context.Context, key entity.SlotKey) {
	freeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.ledger.Free(freeCtx, key); err != nil {
		u.log.Errorf("CRITICAL: failed to free slot %s after failed DB write: %+v", key, err)
	}
}

func overlapsAny(start, end time.Time, appointments []entity.Appointment) bool {
	for _, a := range appointments {
		aEnd := a.StartAt.Add(time.Duration(a.Duration) * time.Minute)
		if start.Before(aEnd) && end.After(a.StartAt) {
			return true
		}
	}
	return false
}
