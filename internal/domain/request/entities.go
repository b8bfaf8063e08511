package request

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("loan request not found")
	ErrPolicyNotFound    = errors.New("approval policy not found")
	ErrInvalidTransition = errors.New("request status transition not allowed")
	ErrInvalidTerm       = errors.New("requested term outside allowed schedule")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrMemberNotActive   = errors.New("member is not active")
	ErrTypeNotActive     = errors.New("loan type is not active")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decided reports whether s is terminal for a request.
func Decided(s Status) bool { return s == StatusApproved || s == StatusRejected }

// Request is a member's loan application. On approval exactly one Loan is
// created sharing the request's id, which makes promotion idempotent.
type Request struct {
	ID           string          `gorm:"primaryKey;size:36;column:id" json:"id"`
	MemberID     string          `gorm:"size:36;not null;index:idx_requests_member;column:member_id" json:"member_id"`
	TypeID       string          `gorm:"size:36;not null;column:type_id" json:"type_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null;column:amount" json:"amount"`
	Rate         decimal.Decimal `gorm:"type:decimal(5,2);not null;column:rate" json:"rate"`
	TermMonths   int             `gorm:"not null;column:term_months" json:"term_months"`
	Description  string          `gorm:"size:255;column:description" json:"description,omitempty"`
	Status       Status          `gorm:"size:15;not null;default:'pending';index:idx_requests_status;column:status" json:"status"`
	Observations string          `gorm:"type:text;column:observations" json:"observations,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Request) TableName() string { return "loan_requests" }

// Policy is scoring configuration for semi-automated approval. Stored and
// managed here; the evaluation recommendation currently runs on flat amount
// thresholds and does not consult it.
type Policy struct {
	ID             string          `gorm:"primaryKey;size:36;column:id" json:"id"`
	Name           string          `gorm:"size:120;not null;uniqueIndex:ux_policies_name;column:name" json:"name"`
	Description    string          `gorm:"size:255;column:description" json:"description,omitempty"`
	MinScore       int             `gorm:"not null;column:min_score" json:"min_score"`
	MinTenureMonth int             `gorm:"not null;column:min_tenure_months" json:"min_tenure_months"`
	MaxRatio       decimal.Decimal `gorm:"type:decimal(5,3);not null;column:max_installment_income_ratio" json:"max_installment_income_ratio"`
	Active         bool            `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Policy) TableName() string { return "approval_policies" }
