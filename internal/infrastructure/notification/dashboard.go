package notification

import (
	"context"

	"medassist/internal/domain/entity"
	"medassist/internal/domain/repository"
	"medassist/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// dashboardChannel is the in-app channel: alerts are persisted so emergency
// staff see them on the admin dashboard.
type dashboardChannel struct {
	db        *gorm.DB
	log       *logrus.Logger
	alertRepo repository.DashboardAlertRepository
}

func NewDashboardChannel(db *gorm.DB, log *logrus.Logger, alertRepo repository.DashboardAlertRepository) service.Gateway {
	return &dashboardChannel{
		db:        db,
		log:       log,
		alertRepo: alertRepo,
	}
}

func (c *dashboardChannel) Send(ctx context.Context, _ service.Channel, _ string, n *service.Notification) error {
	alert := &entity.DashboardAlert{
		CaseID:     n.CaseID,
		Severity:   n.Severity,
		Department: n.Department,
		Message:    n.Message,
	}
	if err := c.alertRepo.Create(c.db.WithContext(ctx), alert); err != nil {
		c.log.Warnf("Failed to persist dashboard alert for case %s: %+v", n.CaseID, err)
		return err
	}
	return nil
}
