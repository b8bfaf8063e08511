package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coop-lending-engine/internal/domain/jsonmap"
	memberDomain "coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/usecase/member"
)

type MemberHandler struct{ uc *member.Usecase }

func NewMemberHandler(uc *member.Usecase) *MemberHandler { return &MemberHandler{uc: uc} }

type ensureMemberReq struct {
	UserID     string      `json:"user_id"    validate:"required,uuid"`
	FullName   string      `json:"full_name"  validate:"required,max=150"`
	Document   *string     `json:"document,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Address    string      `json:"address,omitempty"`
	FiscalData jsonmap.Map `json:"fiscal_data,omitempty"`
}

// EnsureMember returns the caller's member row, creating it on first call.
func (h *MemberHandler) EnsureMember(c echo.Context) error {
	var req ensureMemberReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.uc.EnsureForUser(c.Request().Context(), member.ProfileInput{
		UserID:     req.UserID,
		FullName:   req.FullName,
		Document:   req.Document,
		Phone:      req.Phone,
		Address:    req.Address,
		FiscalData: req.FiscalData,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

type updateProfileReq struct {
	FullName   string      `json:"full_name"  validate:"required,max=150"`
	Document   *string     `json:"document,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Address    string      `json:"address,omitempty"`
	FiscalData jsonmap.Map `json:"fiscal_data,omitempty"`
}

// UpdateProfile is admin-only; route-level middleware enforces the role.
func (h *MemberHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.uc.UpdateProfile(c.Request().Context(), c.Param("member_id"), actorID(c), member.UpdateInput{
		FullName:   req.FullName,
		Document:   req.Document,
		Phone:      req.Phone,
		Address:    req.Address,
		FiscalData: req.FiscalData,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

type changeStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
	Reason string `json:"reason,omitempty"`
}

func (h *MemberHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.uc.ChangeStatus(c.Request().Context(), c.Param("member_id"), actorID(c), memberDomain.Status(req.Status), req.Reason)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) Deactivate(c echo.Context) error {
	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	m, err := h.uc.Deactivate(c.Request().Context(), c.Param("member_id"), actorID(c), req.Reason)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) GetMember(c echo.Context) error {
	m, err := h.uc.Get(c.Request().Context(), c.Param("member_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) ListMembers(c echo.Context) error {
	ms, err := h.uc.List(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, ms)
}
