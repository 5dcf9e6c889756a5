package service

import (
	"context"

	"medassist/internal/domain/entity"
	"medassist/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	Record(ctx context.Context, actor string, action string, metadata entity.JSON)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// Record writes one audit trail entry. Audit failures are logged and
// swallowed; they never fail the action being audited.
func (s *auditService) Record(ctx context.Context, actor string, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		Actor:    actor,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for action %s: %+v", action, err)
	}
}
