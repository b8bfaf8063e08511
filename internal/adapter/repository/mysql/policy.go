package mysql

import (
	"context"

	requestDomain "coop-lending-engine/internal/domain/request"

	"gorm.io/gorm"
)

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func (r *PolicyRepository) Create(ctx context.Context, p *requestDomain.Policy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PolicyRepository) Save(ctx context.Context, p *requestDomain.Policy) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*requestDomain.Policy, error) {
	var out requestDomain.Policy
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *PolicyRepository) List(ctx context.Context) ([]requestDomain.Policy, error) {
	var out []requestDomain.Policy
	res := r.db.WithContext(ctx).Order("name ASC").Find(&out)
	return out, res.Error
}
