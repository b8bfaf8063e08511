package member

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"coop-lending-engine/internal/domain/audit"
	"coop-lending-engine/internal/domain/jsonmap"
	domainMember "coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/domain/uow"
)

// trackedProfileFields is the allow-list the audit recorder diffs on
// profile updates. Anything outside it never produces an audit entry.
var trackedProfileFields = []string{"full_name", "document", "phone", "address", "fiscal_data"}

type Usecase struct {
	members domainMember.Repository
	uow     uow.UnitOfWork
}

func NewUsecase(members domainMember.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{members: members, uow: tx}
}

type ProfileInput struct {
	UserID     string      `json:"user_id"`
	FullName   string      `json:"full_name"`
	Document   *string     `json:"document,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Address    string      `json:"address,omitempty"`
	FiscalData jsonmap.Map `json:"fiscal_data,omitempty"`
}

// EnsureForUser guarantees that a member-role user has exactly one Member,
// creating it on first call and returning the existing row afterwards. This
// is the explicit replacement for implicit on-registration hooks.
func (u *Usecase) EnsureForUser(ctx context.Context, in ProfileInput) (*domainMember.Member, error) {
	if in.UserID == "" || in.FullName == "" {
		return nil, fmt.Errorf("%w: user id and full name are required", domainMember.ErrInvalidTransition)
	}

	existing, err := u.members.GetByUserID(ctx, in.UserID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	m := &domainMember.Member{
		ID:         uuid.NewString(),
		UserID:     &in.UserID,
		FullName:   in.FullName,
		Document:   in.Document,
		Phone:      in.Phone,
		Address:    in.Address,
		Status:     domainMember.StatusActive,
		FiscalData: in.FiscalData,
	}
	if m.FiscalData == nil {
		m.FiscalData = jsonmap.Map{}
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Members.Create(ctx, m); err != nil {
			return err
		}
		return r.Audits.Create(ctx, &audit.Entry{
			Entity:     "member",
			EntityID:   m.ID,
			ActorID:    &in.UserID,
			Action:     audit.ActionCreate,
			NewStatus:  string(m.Status),
			PrevValues: jsonmap.Map{},
			NewValues:  snapshot(m),
			Metadata:   jsonmap.Map{},
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

type UpdateInput struct {
	FullName   string      `json:"full_name"`
	Document   *string     `json:"document,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Address    string      `json:"address,omitempty"`
	FiscalData jsonmap.Map `json:"fiscal_data,omitempty"`
}

// UpdateProfile applies an admin edit to the allow-listed profile fields
// and records a field-level audit diff. A no-op edit writes nothing.
func (u *Usecase) UpdateProfile(ctx context.Context, memberID string, actorID *string, in UpdateInput) (*domainMember.Member, error) {
	var out *domainMember.Member
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Members.GetByIDForUpdate(ctx, memberID)
		if err != nil {
			return domainMember.ErrNotFound
		}
		before := snapshot(m)

		m.FullName = in.FullName
		m.Document = in.Document
		m.Phone = in.Phone
		m.Address = in.Address
		if in.FiscalData != nil {
			m.FiscalData = in.FiscalData
		}

		entry := audit.Diff("member", m.ID, actorID, audit.ActionUpdate, trackedProfileFields, before, snapshot(m))
		if entry == nil {
			out = m
			return nil
		}
		if err := r.Members.Save(ctx, m); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeStatus moves a member through the guarded state machine. The guard
// and the write run inside one locked transaction; every successful
// transition is audited with previous and new status plus the reason.
func (u *Usecase) ChangeStatus(ctx context.Context, memberID string, actorID *string, next domainMember.Status, reason string) (*domainMember.Member, error) {
	if !domainMember.ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", domainMember.ErrInvalidTransition, next)
	}

	var out *domainMember.Member
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Members.GetByIDForUpdate(ctx, memberID)
		if err != nil {
			return domainMember.ErrNotFound
		}
		if !domainMember.CanTransition(m.Status, next) {
			return fmt.Errorf("%w: %s -> %s (member %s)", domainMember.ErrInvalidTransition, m.Status, next, m.ID)
		}

		prev := m.Status
		m.Status = next
		if err := r.Members.Save(ctx, m); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, &audit.Entry{
			Entity:     "member",
			EntityID:   m.ID,
			ActorID:    actorID,
			Action:     audit.ActionStateChange,
			PrevStatus: string(prev),
			NewStatus:  string(next),
			PrevValues: jsonmap.Map{"status": string(prev)},
			NewValues:  jsonmap.Map{"status": string(next)},
			Metadata:   jsonmap.Map{"reason": reason},
		}); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate is the soft delete: a forced, audited transition to inactive
// through the same guarded path. Members are never hard-deleted.
func (u *Usecase) Deactivate(ctx context.Context, memberID string, actorID *string, reason string) (*domainMember.Member, error) {
	return u.ChangeStatus(ctx, memberID, actorID, domainMember.StatusInactive, reason)
}

func (u *Usecase) Get(ctx context.Context, memberID string) (*domainMember.Member, error) {
	m, err := u.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, domainMember.ErrNotFound
	}
	return m, nil
}

func (u *Usecase) List(ctx context.Context) ([]domainMember.Member, error) {
	return u.members.List(ctx)
}

func snapshot(m *domainMember.Member) jsonmap.Map {
	doc := any(nil)
	if m.Document != nil {
		doc = *m.Document
	}
	return jsonmap.Map{
		"full_name":   m.FullName,
		"document":    doc,
		"phone":       m.Phone,
		"address":     m.Address,
		"fiscal_data": m.FiscalData,
	}
}
