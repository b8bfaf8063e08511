package member

import (
	"context"
	"errors"
	"testing"

	"coop-lending-engine/internal/domain/audit"
	domainMember "coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/domain/uow"
	"coop-lending-engine/internal/testutil/auditmock"
	"coop-lending-engine/internal/testutil/membermock"
	"coop-lending-engine/internal/testutil/uowmock"
)

func newFixture(m *domainMember.Member) (*membermock.Repo, *auditmock.Repo, *Usecase) {
	members := &membermock.Repo{}
	if m != nil {
		members.GetByIDForUpdateFn = func(ctx context.Context, id string) (*domainMember.Member, error) {
			if id == m.ID {
				return m, nil
			}
			return nil, domainMember.ErrNotFound
		}
		members.GetByIDFn = members.GetByIDForUpdateFn
	}
	audits := &auditmock.Repo{}
	tx := uowmock.Passthrough(uow.Repos{Members: members, Audits: audits})
	return members, audits, NewUsecase(members, tx)
}

func TestChangeStatus(t *testing.T) {
	actor := "admin-1"

	tests := []struct {
		name    string
		from    domainMember.Status
		to      domainMember.Status
		wantErr error
	}{
		{"active to suspended", domainMember.StatusActive, domainMember.StatusSuspended, nil},
		{"active to inactive", domainMember.StatusActive, domainMember.StatusInactive, nil},
		{"inactive back to active", domainMember.StatusInactive, domainMember.StatusActive, nil},
		{"suspended back to active", domainMember.StatusSuspended, domainMember.StatusActive, nil},
		{"same status is rejected", domainMember.StatusActive, domainMember.StatusActive, domainMember.ErrInvalidTransition},
		{"inactive to suspended is rejected", domainMember.StatusInactive, domainMember.StatusSuspended, domainMember.ErrInvalidTransition},
		{"suspended to inactive is rejected", domainMember.StatusSuspended, domainMember.StatusInactive, domainMember.ErrInvalidTransition},
		{"unknown status is rejected", domainMember.StatusActive, domainMember.Status("deleted"), domainMember.ErrInvalidTransition},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &domainMember.Member{ID: "m1", FullName: "Socio Demo", Status: tc.from}
			_, audits, uc := newFixture(m)

			got, err := uc.ChangeStatus(context.Background(), "m1", &actor, tc.to, "because")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if len(audits.Entries) != 0 {
					t.Fatalf("failed transition must not audit, got %d entries", len(audits.Entries))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tc.to {
				t.Fatalf("status = %s, want %s", got.Status, tc.to)
			}
			if len(audits.Entries) != 1 {
				t.Fatalf("expected one audit entry, got %d", len(audits.Entries))
			}
			e := audits.Entries[0]
			if e.Action != audit.ActionStateChange || e.PrevStatus != string(tc.from) || e.NewStatus != string(tc.to) {
				t.Fatalf("audit entry mismatch: %+v", e)
			}
			if e.Metadata["reason"] != "because" {
				t.Fatalf("audit reason missing: %v", e.Metadata)
			}
		})
	}
}

func TestChangeStatus_NotFound(t *testing.T) {
	_, _, uc := newFixture(nil)
	_, err := uc.ChangeStatus(context.Background(), "missing", nil, domainMember.StatusInactive, "")
	if !errors.Is(err, domainMember.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeactivate_GoesThroughStateMachine(t *testing.T) {
	m := &domainMember.Member{ID: "m1", Status: domainMember.StatusSuspended}
	_, _, uc := newFixture(m)

	// suspended -> inactive is not in the allowed set; the soft delete must
	// not bypass the guard.
	_, err := uc.Deactivate(context.Background(), "m1", nil, "cleanup")
	if !errors.Is(err, domainMember.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	actor := "admin-1"
	doc := "DOC-1"

	t.Run("changed fields are audited", func(t *testing.T) {
		m := &domainMember.Member{ID: "m1", FullName: "Ana", Document: &doc, Phone: "555", Status: domainMember.StatusActive}
		members, audits, uc := newFixture(m)

		saved := false
		members.SaveFn = func(ctx context.Context, mem *domainMember.Member) error {
			saved = true
			return nil
		}

		got, err := uc.UpdateProfile(context.Background(), "m1", &actor, UpdateInput{
			FullName: "Ana Maria",
			Document: &doc,
			Phone:    "555",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !saved {
			t.Fatal("expected the member to be saved")
		}
		if got.FullName != "Ana Maria" {
			t.Fatalf("full name = %s", got.FullName)
		}
		if len(audits.Entries) != 1 {
			t.Fatalf("expected one audit entry, got %d", len(audits.Entries))
		}
		e := audits.Entries[0]
		if e.NewValues["full_name"] != "Ana Maria" || e.PrevValues["full_name"] != "Ana" {
			t.Fatalf("diff mismatch: %v -> %v", e.PrevValues, e.NewValues)
		}
		if _, tracked := e.NewValues["phone"]; tracked {
			t.Fatal("unchanged field must not appear in the diff")
		}
	})

	t.Run("no-op update writes nothing", func(t *testing.T) {
		m := &domainMember.Member{ID: "m1", FullName: "Ana", Document: &doc, Phone: "555", Status: domainMember.StatusActive}
		members, audits, uc := newFixture(m)
		members.SaveFn = func(ctx context.Context, mem *domainMember.Member) error {
			t.Fatal("no-op update must not save")
			return nil
		}

		_, err := uc.UpdateProfile(context.Background(), "m1", &actor, UpdateInput{
			FullName: "Ana",
			Document: &doc,
			Phone:    "555",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(audits.Entries) != 0 {
			t.Fatalf("expected no audit entries, got %d", len(audits.Entries))
		}
	})
}

func TestEnsureForUser(t *testing.T) {
	t.Run("creates a member on first call", func(t *testing.T) {
		members, audits, uc := newFixture(nil)
		var created *domainMember.Member
		members.CreateFn = func(ctx context.Context, m *domainMember.Member) error {
			created = m
			return nil
		}

		got, err := uc.EnsureForUser(context.Background(), ProfileInput{UserID: "u1", FullName: "Socio Test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || created.ID != got.ID {
			t.Fatal("expected the member to be created")
		}
		if got.Status != domainMember.StatusActive {
			t.Fatalf("new member status = %s, want active", got.Status)
		}
		if len(audits.Entries) != 1 || audits.Entries[0].Action != audit.ActionCreate {
			t.Fatalf("expected a create audit entry, got %+v", audits.Entries)
		}
	})

	t.Run("returns the existing member afterwards", func(t *testing.T) {
		existing := &domainMember.Member{ID: "m1", FullName: "Socio Test", Status: domainMember.StatusActive}
		members, _, uc := newFixture(nil)
		members.GetByUserIDFn = func(ctx context.Context, userID string) (*domainMember.Member, error) {
			return existing, nil
		}
		members.CreateFn = func(ctx context.Context, m *domainMember.Member) error {
			t.Fatal("must not create a second member for the same user")
			return nil
		}

		got, err := uc.EnsureForUser(context.Background(), ProfileInput{UserID: "u1", FullName: "Socio Test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "m1" {
			t.Fatalf("expected the existing member, got %s", got.ID)
		}
	})
}
