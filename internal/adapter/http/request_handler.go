package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	requestDomain "coop-lending-engine/internal/domain/request"
	"coop-lending-engine/internal/usecase/request"
)

type RequestHandler struct{ uc *request.Usecase }

func NewRequestHandler(uc *request.Usecase) *RequestHandler { return &RequestHandler{uc: uc} }

type simulateReq struct {
	MemberID   string `json:"member_id"   validate:"required,uuid"`
	TypeID     string `json:"type_id"     validate:"required,uuid"`
	Amount     string `json:"amount"      validate:"required,money"`
	TermMonths int    `json:"term_months" validate:"gte=0"`
}

func (h *RequestHandler) Simulate(c echo.Context) error {
	var req simulateReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount)
	sim, err := h.uc.Simulate(c.Request().Context(), request.SimulateInput{
		MemberID:   req.MemberID,
		TypeID:     req.TypeID,
		Amount:     amount,
		TermMonths: req.TermMonths,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, sim)
}

type submitReq struct {
	MemberID    string `json:"member_id"   validate:"required,uuid"`
	TypeID      string `json:"type_id"     validate:"required,uuid"`
	Amount      string `json:"amount"      validate:"required,money"`
	TermMonths  int    `json:"term_months" validate:"gte=0"`
	Description string `json:"description,omitempty"`
}

func (h *RequestHandler) Submit(c echo.Context) error {
	var req submitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount)
	out, err := h.uc.Submit(c.Request().Context(), request.SubmitInput{
		MemberID:    req.MemberID,
		TypeID:      req.TypeID,
		Amount:      amount,
		TermMonths:  req.TermMonths,
		Description: req.Description,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *RequestHandler) Evaluate(c echo.Context) error {
	ev, err := h.uc.Evaluate(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

type observationReq struct {
	Text string `json:"text" validate:"required"`
}

func (h *RequestHandler) RecordObservation(c echo.Context) error {
	var req observationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.RecordObservation(c.Request().Context(), c.Param("request_id"), actorID(c), req.Text)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type decideReq struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Comment  string `json:"comment,omitempty"`
}

func (h *RequestHandler) Decide(c echo.Context) error {
	var req decideReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.Decide(c.Request().Context(), c.Param("request_id"), actorID(c), requestDomain.Status(req.Decision), req.Comment)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type policyReq struct {
	Name            string `json:"name"                         validate:"required,max=120"`
	Description     string `json:"description,omitempty"`
	MinScore        int    `json:"min_score"                    validate:"gte=0,lte=1000"`
	MinTenureMonths int    `json:"min_tenure_months"            validate:"gte=0"`
	MaxRatio        string `json:"max_installment_income_ratio" validate:"required,rate"`
	Active          *bool  `json:"active,omitempty"`
}

func (h *RequestHandler) CreatePolicy(c echo.Context) error {
	var req policyReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ratio, _ := decimal.NewFromString(req.MaxRatio)
	p, err := h.uc.CreatePolicy(c.Request().Context(), actorID(c), request.PolicyInput{
		Name:            req.Name,
		Description:     req.Description,
		MinScore:        req.MinScore,
		MinTenureMonths: req.MinTenureMonths,
		MaxRatio:        ratio,
		Active:          req.Active,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RequestHandler) ListPolicies(c echo.Context) error {
	ps, err := h.uc.ListPolicies(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}
