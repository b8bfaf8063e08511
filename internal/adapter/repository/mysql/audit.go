package mysql

import (
	"context"

	auditDomain "coop-lending-engine/internal/domain/audit"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, e *auditDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entity, entityID string) ([]auditDomain.Entry, error) {
	var out []auditDomain.Entry
	res := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
