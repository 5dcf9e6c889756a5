package usecase

import (
	"context"
	"sync"
	"testing"

	"medassist/internal/domain/entity"
	"medassist/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.DashboardAlert
	nextID int64
}

func (r *fakeAlertRepo) Create(_ *gorm.DB, alert *entity.DashboardAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	alert.ID = r.nextID
	cp := *alert
	r.alerts = append(r.alerts, &cp)
	return nil
}

func (r *fakeAlertRepo) FindUnread(_ *gorm.DB, limit int) ([]entity.DashboardAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DashboardAlert
	for i := len(r.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if !r.alerts[i].Read {
			out = append(out, *r.alerts[i])
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) MarkRead(_ *gorm.DB, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id && !a.Read {
			a.Read = true
			return 1, nil
		}
	}
	return 0, nil
}

type fakeAuditLogRepo struct {
	mu     sync.Mutex
	logs   []entity.AuditLog
	nextID int64
}

func (r *fakeAuditLogRepo) Create(_ *gorm.DB, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	log.ID = r.nextID
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditLogRepo) FindRecent(_ *gorm.DB, limit int) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AuditLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

type dashboardFixture struct {
	usecase DashboardUsecase
	alerts  *fakeAlertRepo
	audit   *fakeAuditLogRepo
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	alerts := &fakeAlertRepo{}
	audit := &fakeAuditLogRepo{}
	uc := NewDashboardUsecase(newTestDB(t), log, alerts, audit)
	return &dashboardFixture{usecase: uc, alerts: alerts, audit: audit}
}

func seedAlert(t *testing.T, repo *fakeAlertRepo, severity string) *entity.DashboardAlert {
	t.Helper()
	alert := &entity.DashboardAlert{
		CaseID:   uuid.New(),
		Severity: severity,
		Message:  "EMERGENCY " + severity,
	}
	require.NoError(t, repo.Create(nil, alert))
	return alert
}

func TestUnreadAlertsSkipAcknowledged(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	first := seedAlert(t, f.alerts, "CRITICAL")
	seedAlert(t, f.alerts, "URGENT")
	seedAlert(t, f.alerts, "CRITICAL")

	require.NoError(t, f.usecase.MarkAlertRead(ctx, first.ID))

	alerts, err := f.usecase.UnreadAlerts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	// Newest first.
	assert.Equal(t, int64(3), alerts[0].ID)
	assert.Equal(t, int64(2), alerts[1].ID)
}

func TestUnreadAlertsHonorLimit(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedAlert(t, f.alerts, "URGENT")
	}

	alerts, err := f.usecase.UnreadAlerts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	// Out-of-range limits collapse to the bounds.
	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 20, clampLimit(-5))
	assert.Equal(t, 100, clampLimit(1000))
}

func TestMarkAlertReadGuards(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	alert := seedAlert(t, f.alerts, "CRITICAL")

	require.NoError(t, f.usecase.MarkAlertRead(ctx, alert.ID))

	// A second acknowledgement finds nothing unread.
	err := f.usecase.MarkAlertRead(ctx, alert.ID)
	assert.True(t, apperr.IsNotFound(err))

	err = f.usecase.MarkAlertRead(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRecentActivityNewestFirst(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	for _, action := range []string{
		entity.AuditActionAppointmentBook,
		entity.AuditActionEmergencyOpen,
		entity.AuditActionAppointmentCancel,
	} {
		require.NoError(t, f.audit.Create(nil, &entity.AuditLog{Actor: "system", Action: action}))
	}

	logs, err := f.usecase.RecentActivity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, entity.AuditActionAppointmentCancel, logs[0].Action)
	assert.Equal(t, entity.AuditActionEmergencyOpen, logs[1].Action)
}
