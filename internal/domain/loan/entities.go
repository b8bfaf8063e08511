package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"coop-lending-engine/internal/domain/jsonmap"
)

var (
	ErrNotFound            = errors.New("loan not found")
	ErrTypeNotFound        = errors.New("loan type not found")
	ErrInvalidTransition   = errors.New("loan status transition not allowed")
	ErrInvalidDisbursement = errors.New("disbursement not allowed")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

type State string

const (
	StateApproved   State = "approved"
	StateDisbursed  State = "disbursed"
	StateActive     State = "active"
	StateDelinquent State = "delinquent"
	StatePaid       State = "paid"
	StateCancelled  State = "cancelled"
	StateRejected   State = "rejected"
)

// Terminal reports whether no further transition may leave s.
func Terminal(s State) bool {
	switch s {
	case StatePaid, StateCancelled, StateRejected:
		return true
	}
	return false
}

// Outstanding groups the states in which a loan carries a live balance.
// Disbursed, active and delinquent are operationally the same family:
// funds released, not fully repaid.
func Outstanding(s State) bool {
	switch s {
	case StateDisbursed, StateActive, StateDelinquent:
		return true
	}
	return false
}

// Disbursable reports whether a loan in state s may receive a disbursement.
// Approved loans take their first disbursement; outstanding loans may take
// further partial disbursements up to principal.
func Disbursable(s State) bool {
	return s == StateApproved || Outstanding(s)
}

type Loan struct {
	ID           string          `gorm:"primaryKey;size:36;column:id" json:"id"`
	MemberID     string          `gorm:"size:36;not null;index:idx_loans_member;column:member_id" json:"member_id"`
	TypeID       *string         `gorm:"size:36;column:type_id" json:"type_id,omitempty"`
	Principal    decimal.Decimal `gorm:"type:decimal(14,2);not null;column:principal" json:"principal"`
	InterestRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:interest_rate" json:"interest_rate"`
	TermMonths   int             `gorm:"not null;default:0;column:term_months" json:"term_months"`
	State        State           `gorm:"size:15;not null;default:'approved';index:idx_loans_state;column:state" json:"state"`
	DisbursedAt  time.Time       `gorm:"type:date;not null;column:disbursed_at" json:"disbursed_at"`
	DueAt        *time.Time      `gorm:"type:date;column:due_at" json:"due_at,omitempty"`
	Description  string          `gorm:"size:255;column:description" json:"description,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// LoanType is a product template. Issued loans snapshot rate and term, so
// later edits never touch existing loans.
type LoanType struct {
	ID          string          `gorm:"primaryKey;size:36;column:id" json:"id"`
	Name        string          `gorm:"size:80;not null;uniqueIndex:ux_loan_types_name;column:name" json:"name"`
	Description string          `gorm:"size:255;column:description" json:"description,omitempty"`
	AnnualRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;column:annual_rate" json:"annual_rate"`
	TermMonths  int             `gorm:"not null;column:term_months" json:"term_months"`
	Requisites  jsonmap.Map     `gorm:"column:requisites" json:"requisites"`
	Active      bool            `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (LoanType) TableName() string { return "loan_types" }

// Payment is an append-only ledger entry. Rows are never edited or removed
// once written.
type Payment struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	LoanID    string          `gorm:"size:36;not null;index:idx_payments_loan;column:loan_id" json:"loan_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null;column:amount" json:"amount"`
	PaidAt    time.Time       `gorm:"type:date;not null;column:paid_at" json:"paid_at"`
	Method    string          `gorm:"size:50;column:method" json:"method,omitempty"`
	Reference string          `gorm:"size:50;column:reference" json:"reference,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// Disbursement records one release of funds against a loan. Several are
// allowed as long as their sum stays within principal.
type Disbursement struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	LoanID    string          `gorm:"size:36;not null;index:idx_disbursements_loan;column:loan_id" json:"loan_id"`
	MemberID  string          `gorm:"size:36;not null;column:member_id" json:"member_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null;column:amount" json:"amount"`
	Method    string          `gorm:"size:50;column:method" json:"method,omitempty"`
	Reference string          `gorm:"size:50;column:reference" json:"reference,omitempty"`
	Notes     string          `gorm:"size:255;column:notes" json:"notes,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Disbursement) TableName() string { return "disbursements" }
