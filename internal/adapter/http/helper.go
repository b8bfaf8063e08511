package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	loanDomain "coop-lending-engine/internal/domain/loan"
	memberDomain "coop-lending-engine/internal/domain/member"
	requestDomain "coop-lending-engine/internal/domain/request"
)

// HeaderActorID carries the authenticated caller's id. Authentication itself
// lives in front of this service; handlers only thread the actor into the
// audit trail.
const HeaderActorID = "X-Actor-ID"

func actorID(c echo.Context) *string {
	v := c.Request().Header.Get(HeaderActorID)
	if v == "" {
		return nil
	}
	return &v
}

// domainError maps domain sentinels to an HTTP response. Not-found beats
// conflict beats unprocessable; anything unrecognized is a 500.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, memberDomain.ErrNotFound),
		errors.Is(err, loanDomain.ErrNotFound),
		errors.Is(err, loanDomain.ErrTypeNotFound),
		errors.Is(err, requestDomain.ErrNotFound),
		errors.Is(err, requestDomain.ErrPolicyNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, memberDomain.ErrInvalidTransition),
		errors.Is(err, loanDomain.ErrInvalidTransition),
		errors.Is(err, loanDomain.ErrInvalidDisbursement),
		errors.Is(err, requestDomain.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loanDomain.ErrInvalidAmount),
		errors.Is(err, requestDomain.ErrInvalidAmount),
		errors.Is(err, requestDomain.ErrInvalidTerm),
		errors.Is(err, requestDomain.ErrMemberNotActive),
		errors.Is(err, requestDomain.ErrTypeNotActive):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// bindAndValidate binds the JSON body and runs struct validation. The bool
// reports whether the handler may proceed; on false the response has already
// been written.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// parseDate accepts canonical `YYYY-MM-DD`.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
