package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	loanDomain "coop-lending-engine/internal/domain/loan"
	"coop-lending-engine/internal/usecase/report"
)

type ReportHandler struct{ uc *report.Usecase }

func NewReportHandler(uc *report.Usecase) *ReportHandler { return &ReportHandler{uc: uc} }

// CreditHistory builds the per-member credit report. Query params:
// member_id (required), states (comma-separated), from, to (YYYY-MM-DD,
// applied to disbursement dates and shown payments), as_of.
func (h *ReportHandler) CreditHistory(c echo.Context) error {
	memberID := c.QueryParam("member_id")
	if memberID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing member_id query param"})
	}

	f := report.Filter{MemberID: memberID}
	if s := c.QueryParam("states"); s != "" {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			f.States = append(f.States, loanDomain.State(part))
		}
	}
	var err error
	if f.From, err = optionalDate(c.QueryParam("from")); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	if f.To, err = optionalDate(c.QueryParam("to")); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	asOf := time.Now().UTC()
	if s := c.QueryParam("as_of"); s != "" {
		parsed, err := parseDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid as_of"})
		}
		asOf = parsed
	}

	rep, err := h.uc.History(c.Request().Context(), f, asOf)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// MemberLoans is the member-facing "my loans" listing.
func (h *ReportHandler) MemberLoans(c echo.Context) error {
	loans, err := h.uc.MemberLoans(c.Request().Context(), c.Param("member_id"), time.Now().UTC())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
