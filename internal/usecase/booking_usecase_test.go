package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medassist/config"
	"medassist/internal/domain/entity"
	"medassist/internal/service"
	"medassist/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// newTestDB builds a gorm handle on the no-op dialector so WithContext works
// without a live connection. The fake repositories ignore it entirely.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

// fakeAppointmentRepo is an in-memory stand-in for the gorm repository. The
// db argument is ignored.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
	failCreate   bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{}}
}

func (r *fakeAppointmentRepo) Create(_ *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("insert failed")
	}
	cp := *appointment
	r.appointments[appointment.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) FindActiveBySlot(_ *gorm.DB, doctorID uuid.UUID, startAt time.Time) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.StartAt.Equal(startAt) && a.IsActive() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindActiveByDoctorAndDay(_ *gorm.DB, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.IsActive() && !a.StartAt.Before(dayStart) && a.StartAt.Before(dayEnd) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateSlot(_ *gorm.DB, id uuid.UUID, startAt time.Time, status entity.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return errors.New("not found")
	}
	a.StartAt = startAt
	a.Status = status
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || !a.IsActive() {
		return 0, nil
	}
	a.Status = status
	return 1, nil
}

type fakeScheduleRepo struct {
	schedules []entity.DoctorSchedule
}

func (r *fakeScheduleRepo) Create(_ *gorm.DB, schedule *entity.DoctorSchedule) error { return nil }
func (r *fakeScheduleRepo) FindByID(_ *gorm.DB, id int) (*entity.DoctorSchedule, error) {
	return nil, nil
}
func (r *fakeScheduleRepo) FindByDoctorID(_ *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error) {
	return r.schedules, nil
}
func (r *fakeScheduleRepo) FindByDoctorAndDate(_ *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.DoctorSchedule, error) {
	return r.schedules, nil
}
func (r *fakeScheduleRepo) FindAll(_ *gorm.DB) ([]entity.DoctorSchedule, error) {
	return r.schedules, nil
}
func (r *fakeScheduleRepo) Update(_ *gorm.DB, schedule *entity.DoctorSchedule) error { return nil }
func (r *fakeScheduleRepo) Delete(_ *gorm.DB, id int) (int64, error)                 { return 1, nil }

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, string, entity.JSON) {}

type bookingFixture struct {
	usecase  *bookingUsecase
	repo     *fakeAppointmentRepo
	schedule *fakeScheduleRepo
	ledger   service.SlotLedger
}

func newBookingFixture(t *testing.T, cfg config.BookingConfig) *bookingFixture {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	ledger := service.NewMemorySlotLedger(log)
	t.Cleanup(ledger.Stop)

	repo := newFakeAppointmentRepo()
	schedule := &fakeScheduleRepo{}

	uc := NewBookingUsecase(newTestDB(t), log, repo, schedule, ledger, noopAudit{}, cfg).(*bookingUsecase)
	return &bookingFixture{usecase: uc, repo: repo, schedule: schedule, ledger: ledger}
}

func futureSlot() time.Time {
	return time.Now().UTC().Truncate(30 * time.Minute).Add(24 * time.Hour)
}

func TestBookSuccess(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(),
		DoctorID:  doctorID,
		StartAt:   startAt,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusScheduled, appointment.Status)
	assert.Equal(t, 30, appointment.Duration)

	stored, err := f.repo.FindByID(nil, appointment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	occupied, err := f.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: startAt})
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestBookSameSlotConflicts(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	first, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.NoError(t, err)

	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	assert.True(t, apperr.IsConflict(err))

	// The winner is untouched.
	stored, err := f.repo.FindByID(nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusScheduled, stored.Status)
}

func TestBookConcurrentExactlyOneWins(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.usecase.Book(ctx, &BookAppointmentInput{
				PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if apperr.IsConflict(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, conflicts)

	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Len(t, f.repo.appointments, 1)
}

func TestBookValidation(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()

	_, err := f.usecase.Book(ctx, &BookAppointmentInput{DoctorID: uuid.New(), StartAt: futureSlot()})
	assert.True(t, apperr.IsValidation(err), "missing patient")

	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: uuid.New(), StartAt: futureSlot().Add(7 * time.Minute),
	})
	assert.True(t, apperr.IsValidation(err), "misaligned start")

	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: uuid.New(),
		StartAt: time.Now().UTC().Truncate(30 * time.Minute).Add(-24 * time.Hour),
	})
	assert.True(t, apperr.IsValidation(err), "past slot")
}

func TestBookCompensatesLedgerOnInsertFailure(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()
	f.repo.failCreate = true

	_, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.Error(t, err)

	// The claim must have been rolled back so the slot is not stranded.
	occupied, err := f.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: startAt})
	require.NoError(t, err)
	assert.False(t, occupied)

	// And the slot is bookable once the store recovers.
	f.repo.failCreate = false
	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	assert.NoError(t, err)
}

func TestBookRequireLockFlow(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute, RequireLock: true})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	// Booking without a prior lock is refused in strict mode.
	_, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt, HolderToken: "tok-1",
	})
	assert.True(t, apperr.IsConflict(err))

	expiresAt, err := f.usecase.LockSlot(ctx, doctorID, startAt, "tok-1")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	// A different token cannot consume the lock.
	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt, HolderToken: "tok-2",
	})
	assert.True(t, apperr.IsConflict(err))

	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt, HolderToken: "tok-1",
	})
	assert.NoError(t, err)
}

func TestLockSlotRefusesBookedSlot(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	_, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.NoError(t, err)

	_, err = f.usecase.LockSlot(ctx, doctorID, startAt, "tok-1")
	assert.True(t, apperr.IsConflict(err))
}

func TestLockSlotSeesDurableAppointments(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	// An appointment row with no ledger entry models a restart that wiped
	// the in-memory ledger.
	require.NoError(t, f.repo.Create(nil, &entity.Appointment{
		ID: uuid.New(), PatientID: uuid.New(), DoctorID: doctorID,
		StartAt: startAt, Duration: 30, Status: entity.AppointmentStatusScheduled,
	}))

	_, err := f.usecase.LockSlot(ctx, doctorID, startAt, "tok-1")
	assert.True(t, apperr.IsConflict(err))
}

func TestRescheduleMovesSlotAtomically(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	oldStart := futureSlot()
	newStart := oldStart.Add(time.Hour)

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: oldStart,
	})
	require.NoError(t, err)

	moved, err := f.usecase.Reschedule(ctx, appointment.ID, newStart, "")
	require.NoError(t, err)
	assert.Equal(t, newStart, moved.StartAt)
	assert.Equal(t, entity.AppointmentStatusRescheduled, moved.Status)

	// Old slot opened, new slot occupied.
	occupied, err := f.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: oldStart})
	require.NoError(t, err)
	assert.False(t, occupied)
	occupied, err = f.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: newStart})
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestRescheduleConflictLeavesOriginalIntact(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	oldStart := futureSlot()
	busyStart := oldStart.Add(time.Hour)

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: oldStart,
	})
	require.NoError(t, err)
	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: busyStart,
	})
	require.NoError(t, err)

	_, err = f.usecase.Reschedule(ctx, appointment.ID, busyStart, "")
	assert.True(t, apperr.IsConflict(err))

	// Original appointment and its slot claim are untouched.
	stored, err := f.repo.FindByID(nil, appointment.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartAt.Equal(oldStart))
	assert.Equal(t, entity.AppointmentStatusScheduled, stored.Status)

	occupied, err := f.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: oldStart})
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestRescheduleToSameSlotIsNoop(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.NoError(t, err)

	moved, err := f.usecase.Reschedule(ctx, appointment.ID, startAt, "")
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusScheduled, moved.Status)
}

func TestRescheduleCancelledAppointment(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.NoError(t, err)
	require.NoError(t, f.usecase.Cancel(ctx, appointment.ID))

	_, err = f.usecase.Reschedule(ctx, appointment.ID, startAt.Add(time.Hour), "")
	assert.True(t, apperr.IsConflict(err))
}

func TestCancelFreesSlotAndIsIdempotentlyGuarded(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()
	startAt := futureSlot()

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.NoError(t, err)

	require.NoError(t, f.usecase.Cancel(ctx, appointment.ID))

	occupied, err := f.ledger.Occupied(ctx, entity.SlotKey{DoctorID: doctorID, StartAt: startAt})
	require.NoError(t, err)
	assert.False(t, occupied, "cancelling must free the slot")

	// A repeat cancel hits the rows-affected guard.
	err = f.usecase.Cancel(ctx, appointment.ID)
	assert.True(t, apperr.IsConflict(err))

	// And the freed slot can be booked again.
	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	assert.NoError(t, err)
}

func TestCancelCompletedAppointmentConflicts(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()

	completed := &entity.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		StartAt:   futureSlot(),
		Duration:  30,
		Status:    entity.AppointmentStatusCompleted,
	}
	require.NoError(t, f.repo.Create(nil, completed))

	err := f.usecase.Cancel(ctx, completed.ID)
	assert.True(t, apperr.IsConflict(err))

	stored, err := f.repo.FindByID(nil, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCompleted, stored.Status, "completed visits stay completed")
}

func TestCancelUnknownAppointment(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})

	err := f.usecase.Cancel(context.Background(), uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestAvailableSlotsPartitionsWorkingHours(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()

	date := time.Now().UTC().Truncate(24 * time.Hour).Add(48 * time.Hour)
	f.schedule.schedules = []entity.DoctorSchedule{
		{ID: 1, DoctorID: doctorID, ScheduleDate: date, StartTime: "09:00", EndTime: "12:00"},
	}

	slots, err := f.usecase.AvailableSlots(ctx, doctorID, date, 30)
	require.NoError(t, err)
	require.Len(t, slots, 6)
	assert.True(t, slots[0].StartAt.Equal(date.Add(9*time.Hour)))
	assert.True(t, slots[5].EndAt.Equal(date.Add(12*time.Hour)))

	// A booking removes its slot from the listing.
	booked := date.Add(10 * time.Hour)
	_, err = f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: booked,
	})
	require.NoError(t, err)

	// A live lock hides its slot as well.
	_, err = f.usecase.LockSlot(ctx, doctorID, date.Add(9*time.Hour+30*time.Minute), "tok-1")
	require.NoError(t, err)

	slots, err = f.usecase.AvailableSlots(ctx, doctorID, date, 30)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for _, slot := range slots {
		assert.False(t, slot.StartAt.Equal(booked))
		assert.False(t, slot.StartAt.Equal(date.Add(9*time.Hour+30*time.Minute)))
	}
}

func TestAvailableSlotsIncludeCancelledSlotAgain(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})
	ctx := context.Background()
	doctorID := uuid.New()

	date := time.Now().UTC().Truncate(24 * time.Hour).Add(48 * time.Hour)
	f.schedule.schedules = []entity.DoctorSchedule{
		{ID: 1, DoctorID: doctorID, ScheduleDate: date, StartTime: "09:00", EndTime: "10:00"},
	}
	startAt := date.Add(9 * time.Hour)

	appointment, err := f.usecase.Book(ctx, &BookAppointmentInput{
		PatientID: uuid.New(), DoctorID: doctorID, StartAt: startAt,
	})
	require.NoError(t, err)

	slots, err := f.usecase.AvailableSlots(ctx, doctorID, date, 30)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	require.NoError(t, f.usecase.Cancel(ctx, appointment.ID))

	slots, err = f.usecase.AvailableSlots(ctx, doctorID, date, 30)
	require.NoError(t, err)
	require.Len(t, slots, 2, "cancelled slot must be offered again")
}

func TestAvailableSlotsNoWorkingHours(t *testing.T) {
	f := newBookingFixture(t, config.BookingConfig{SlotMinutes: 30, LockTTL: 2 * time.Minute})

	slots, err := f.usecase.AvailableSlots(context.Background(), uuid.New(), time.Now().UTC(), 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
