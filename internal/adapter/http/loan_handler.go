package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coop-lending-engine/internal/domain/jsonmap"
	"coop-lending-engine/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	MemberID    string  `json:"member_id"    validate:"required,uuid"`
	TypeID      *string `json:"type_id,omitempty"`
	Principal   string  `json:"principal"    validate:"required,money"`
	Rate        string  `json:"rate"         validate:"required,rate"`
	TermMonths  int     `json:"term_months"  validate:"gte=0"`
	DisbursedAt string  `json:"disbursed_at" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description,omitempty"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	disbursedAt, err := parseDate(req.DisbursedAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid disbursed_at"})
	}
	principal, _ := decimal.NewFromString(req.Principal)
	rate, _ := decimal.NewFromString(req.Rate)

	l, err := h.uc.Create(c.Request().Context(), actorID(c), loan.CreateInput{
		MemberID:    req.MemberID,
		TypeID:      req.TypeID,
		Principal:   principal,
		Rate:        rate,
		TermMonths:  req.TermMonths,
		DisbursedAt: disbursedAt,
		Description: req.Description,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

type disburseReq struct {
	Amount    string `json:"amount" validate:"required,money"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (h *LoanHandler) RecordDisbursement(c echo.Context) error {
	var req disburseReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount)
	d, err := h.uc.RecordDisbursement(c.Request().Context(), c.Param("loan_id"), actorID(c), loan.DisburseInput{
		Amount:    amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

type paymentReq struct {
	Amount    string `json:"amount"  validate:"required,money"`
	PaidAt    string `json:"paid_at" validate:"required,datetime=2006-01-02"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (h *LoanHandler) RecordPayment(c echo.Context) error {
	var req paymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paid_at"})
	}
	amount, _ := decimal.NewFromString(req.Amount)
	res, err := h.uc.RecordPayment(c.Request().Context(), c.Param("loan_id"), actorID(c), loan.PaymentInput{
		Amount:    amount,
		PaidAt:    paidAt,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) CancelLoan(c echo.Context) error {
	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	l, err := h.uc.Cancel(c.Request().Context(), c.Param("loan_id"), actorID(c), req.Reason)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// ReclassifyDelinquent triggers the delinquency sweep. It is exposed for
// schedulers and operators; the sweep itself runs with no actor.
func (h *LoanHandler) ReclassifyDelinquent(c echo.Context) error {
	asOf := time.Now().UTC()
	if s := c.QueryParam("as_of"); s != "" {
		parsed, err := parseDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid as_of"})
		}
		asOf = parsed
	}
	n, err := h.uc.ReclassifyDelinquent(c.Request().Context(), asOf)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"reclassified": n})
}

type loanTypeReq struct {
	Name        string      `json:"name"         validate:"required,max=80"`
	Description string      `json:"description,omitempty"`
	AnnualRate  string      `json:"annual_rate"  validate:"required,rate"`
	TermMonths  int         `json:"term_months"  validate:"required,gte=1"`
	Requisites  jsonmap.Map `json:"requisites,omitempty"`
	Active      *bool       `json:"active,omitempty"`
}

func (r loanTypeReq) toInput() loan.TypeInput {
	rate, _ := decimal.NewFromString(r.AnnualRate)
	return loan.TypeInput{
		Name:        r.Name,
		Description: r.Description,
		AnnualRate:  rate,
		TermMonths:  r.TermMonths,
		Requisites:  r.Requisites,
		Active:      r.Active,
	}
}

func (h *LoanHandler) CreateLoanType(c echo.Context) error {
	var req loanTypeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	t, err := h.uc.CreateType(c.Request().Context(), actorID(c), req.toInput())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *LoanHandler) UpdateLoanType(c echo.Context) error {
	var req loanTypeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	t, err := h.uc.UpdateType(c.Request().Context(), c.Param("type_id"), actorID(c), req.toInput())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *LoanHandler) ListLoanTypes(c echo.Context) error {
	ts, err := h.uc.ListTypes(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, ts)
}
