package mysql

import (
	"context"

	memberDomain "coop-lending-engine/internal/domain/member"

	"gorm.io/gorm"
)

type MemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) Create(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MemberRepository) Save(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*memberDomain.Member, error) {
	var out memberDomain.Member
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *MemberRepository) GetByIDForUpdate(ctx context.Context, id string) (*memberDomain.Member, error) {
	var out memberDomain.Member
	res := lockForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *MemberRepository) GetByUserID(ctx context.Context, userID string) (*memberDomain.Member, error) {
	var out memberDomain.Member
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	return &out, res.Error
}

func (r *MemberRepository) List(ctx context.Context) ([]memberDomain.Member, error) {
	var out []memberDomain.Member
	res := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out)
	return out, res.Error
}
