package usecase

import (
	"context"

	"medassist/internal/domain/entity"
	"medassist/internal/domain/repository"
	"medassist/pkg/apperr"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultDashboardLimit = 20
	maxDashboardLimit     = 100
)

// DashboardUsecase serves the staff-facing read side: unread alerts written
// by the in-app notification channel and the recent audit trail.
type DashboardUsecase interface {
	UnreadAlerts(ctx context.Context, limit int) ([]entity.DashboardAlert, error)
	MarkAlertRead(ctx context.Context, id int64) error
	RecentActivity(ctx context.Context, limit int) ([]entity.AuditLog, error)
}

type dashboardUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	alertRepo repository.DashboardAlertRepository
	auditRepo repository.AuditLogRepository
}

func NewDashboardUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	alertRepo repository.DashboardAlertRepository,
	auditRepo repository.AuditLogRepository,
) DashboardUsecase {
	return &dashboardUsecase{
		db:        db,
		log:       log,
		alertRepo: alertRepo,
		auditRepo: auditRepo,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultDashboardLimit
	}
	if limit > maxDashboardLimit {
		return maxDashboardLimit
	}
	return limit
}

func (u *dashboardUsecase) UnreadAlerts(ctx context.Context, limit int) ([]entity.DashboardAlert, error) {
	alerts, err := u.alertRepo.FindUnread(u.db.WithContext(ctx), clampLimit(limit))
	if err != nil {
		u.log.Warnf("Failed to list unread alerts: %+v", err)
		return nil, err
	}
	return alerts, nil
}

// MarkAlertRead acknowledges one alert. Acknowledging twice is a conflict so
// two staff members racing on the same alert notice each other.
func (u *dashboardUsecase) MarkAlertRead(ctx context.Context, id int64) error {
	affected, err := u.alertRepo.MarkRead(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to mark alert %d read: %+v", id, err)
		return err
	}
	if affected == 0 {
		return apperr.NotFound("unread alert not found")
	}
	return nil
}

func (u *dashboardUsecase) RecentActivity(ctx context.Context, limit int) ([]entity.AuditLog, error) {
	logs, err := u.auditRepo.FindRecent(u.db.WithContext(ctx), clampLimit(limit))
	if err != nil {
		u.log.Warnf("Failed to list audit trail: %+v", err)
		return nil, err
	}
	return logs, nil
}
