package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	memberDomain "coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/domain/uow"
	"coop-lending-engine/internal/testutil/auditmock"
	"coop-lending-engine/internal/testutil/membermock"
	"coop-lending-engine/internal/testutil/uowmock"
	uc "coop-lending-engine/internal/usecase/member"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newMemberHandler(m *memberDomain.Member) (*MemberHandler, *auditmock.Repo) {
	members := &membermock.Repo{}
	if m != nil {
		byID := func(ctx context.Context, id string) (*memberDomain.Member, error) {
			if id == m.ID {
				return m, nil
			}
			return nil, memberDomain.ErrNotFound
		}
		members.GetByIDFn = byID
		members.GetByIDForUpdateFn = byID
	}
	audits := &auditmock.Repo{}
	tx := uowmock.Passthrough(uow.Repos{Members: members, Audits: audits})
	return NewMemberHandler(uc.NewUsecase(members, tx)), audits
}

// -------- tests --------

func TestChangeStatus_Success(t *testing.T) {
	e := newEchoWithValidator()
	h, audits := newMemberHandler(&memberDomain.Member{ID: "m1", Status: memberDomain.StatusActive})

	req := httptest.NewRequest(stdhttp.MethodPost, "/members/m1/status",
		mustJSON(map[string]any{"status": "suspended", "reason": "arrears"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, "admin-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("member_id")
	c.SetParamValues("m1")

	if err := h.ChangeStatus(c); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var got memberDomain.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != memberDomain.StatusSuspended {
		t.Fatalf("status = %s, want suspended", got.Status)
	}
	if len(audits.Entries) != 1 || *audits.Entries[0].ActorID != "admin-1" {
		t.Fatalf("audits = %+v", audits.Entries)
	}
}

func TestChangeStatus_IllegalTransitionIsConflict(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newMemberHandler(&memberDomain.Member{ID: "m1", Status: memberDomain.StatusSuspended})

	req := httptest.NewRequest(stdhttp.MethodPost, "/members/m1/status",
		mustJSON(map[string]any{"status": "inactive"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("member_id")
	c.SetParamValues("m1")

	if err := h.ChangeStatus(c); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", rec.Code, rec.Body)
	}
}

func TestChangeStatus_UnknownStatusFailsValidation(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newMemberHandler(nil)

	req := httptest.NewRequest(stdhttp.MethodPost, "/members/m1/status",
		mustJSON(map[string]any{"status": "frozen"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("member_id")
	c.SetParamValues("m1")

	if err := h.ChangeStatus(c); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestGetMember_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newMemberHandler(nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/members/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("member_id")
	c.SetParamValues("missing")

	if err := h.GetMember(c); err != nil {
		t.Fatalf("GetMember error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestEnsureMember_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newMemberHandler(nil)

	req := httptest.NewRequest(stdhttp.MethodPost, "/members", strings.NewReader(`{"user_id":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.EnsureMember(c); err != nil {
		t.Fatalf("EnsureMember error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
