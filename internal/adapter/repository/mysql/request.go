package mysql

import (
	"context"

	requestDomain "coop-lending-engine/internal/domain/request"

	"gorm.io/gorm"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) Save(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := lockForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *RequestRepository) ListByMemberID(ctx context.Context, memberID string) ([]requestDomain.Request, error) {
	var out []requestDomain.Request
	res := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *RequestRepository) ListByStatus(ctx context.Context, s requestDomain.Status) ([]requestDomain.Request, error) {
	var out []requestDomain.Request
	res := r.db.WithContext(ctx).
		Where("status = ?", s).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
