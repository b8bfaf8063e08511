package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coop-lending-engine/internal/amort"
	"coop-lending-engine/internal/domain/audit"
	"coop-lending-engine/internal/domain/jsonmap"
	domainLoan "coop-lending-engine/internal/domain/loan"
	domainMember "coop-lending-engine/internal/domain/member"
	domainRequest "coop-lending-engine/internal/domain/request"
	"coop-lending-engine/internal/domain/uow"
	"coop-lending-engine/internal/notify"
)

// Recommendation values returned by Evaluate.
const (
	RecommendApprove = "approve"
	RecommendReview  = "review"
	RecommendReject  = "reject"
)

// Config holds the flat amount thresholds behind Evaluate's recommendation.
// Approval policies are stored alongside but intentionally not consulted
// here; wiring them in is a product decision, not an engine default.
type Config struct {
	ApproveUpTo decimal.Decimal
	ReviewUpTo  decimal.Decimal
}

type Usecase struct {
	members  domainMember.Repository
	requests domainRequest.Repository
	types    domainLoan.TypeRepository
	policies domainRequest.PolicyRepository
	uow      uow.UnitOfWork
	notifier notify.Notifier
	cfg      Config
}

func NewUsecase(
	members domainMember.Repository,
	requests domainRequest.Repository,
	types domainLoan.TypeRepository,
	policies domainRequest.PolicyRepository,
	tx uow.UnitOfWork,
	notifier notify.Notifier,
	cfg Config,
) *Usecase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Usecase{members: members, requests: requests, types: types, policies: policies, uow: tx, notifier: notifier, cfg: cfg}
}

type SimulateInput struct {
	MemberID   string          `json:"member_id"`
	TypeID     string          `json:"type_id"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months,omitempty"` // 0 means the loan type's full term
}

type Simulation struct {
	TypeID     string          `json:"type_id"`
	Amount     decimal.Decimal `json:"amount"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months"`
	Schedule   *amort.Schedule `json:"schedule"`
}

// Simulate computes the proposed schedule for a member without persisting
// anything. The member and the loan type must both be active; a custom term
// must be a positive multiple of six months within the product's term.
func (u *Usecase) Simulate(ctx context.Context, in SimulateInput) (*Simulation, error) {
	m, err := u.members.GetByID(ctx, in.MemberID)
	if err != nil {
		return nil, domainMember.ErrNotFound
	}
	if m.Status != domainMember.StatusActive {
		return nil, fmt.Errorf("%w: member %s is %s", domainRequest.ErrMemberNotActive, m.ID, m.Status)
	}
	t, err := u.types.GetByID(ctx, in.TypeID)
	if err != nil {
		return nil, domainLoan.ErrTypeNotFound
	}
	if !t.Active {
		return nil, fmt.Errorf("%w: %s", domainRequest.ErrTypeNotActive, t.Name)
	}
	if !in.Amount.IsPositive() {
		return nil, domainRequest.ErrInvalidAmount
	}
	term, err := resolveTerm(in.TermMonths, t.TermMonths)
	if err != nil {
		return nil, err
	}

	schedule, err := amort.Compute(in.Amount, t.AnnualRate, term)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		TypeID:     t.ID,
		Amount:     in.Amount,
		AnnualRate: t.AnnualRate,
		TermMonths: term,
		Schedule:   schedule,
	}, nil
}

type SubmitInput struct {
	MemberID    string          `json:"member_id"`
	TypeID      string          `json:"type_id"`
	Amount      decimal.Decimal `json:"amount"`
	TermMonths  int             `json:"term_months,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Submit validates exactly like Simulate and persists a pending request
// snapshotting the product's current rate.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*domainRequest.Request, error) {
	sim, err := u.Simulate(ctx, SimulateInput{
		MemberID:   in.MemberID,
		TypeID:     in.TypeID,
		Amount:     in.Amount,
		TermMonths: in.TermMonths,
	})
	if err != nil {
		return nil, err
	}

	req := &domainRequest.Request{
		ID:          uuid.NewString(),
		MemberID:    in.MemberID,
		TypeID:      in.TypeID,
		Amount:      in.Amount,
		Rate:        sim.AnnualRate,
		TermMonths:  sim.TermMonths,
		Description: in.Description,
		Status:      domainRequest.StatusPending,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		return r.Audits.Create(ctx, &audit.Entry{
			Entity:     "request",
			EntityID:   req.ID,
			ActorID:    &in.MemberID,
			Action:     audit.ActionCreate,
			NewStatus:  string(req.Status),
			PrevValues: jsonmap.Map{},
			NewValues:  jsonmap.Map{"amount": req.Amount.String(), "term_months": req.TermMonths},
			Metadata:   jsonmap.Map{},
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

type Evaluation struct {
	Request        *domainRequest.Request `json:"request"`
	Member         *domainMember.Member   `json:"member"`
	Recommendation string                 `json:"recommendation"`
}

// Evaluate is read-only: it pairs the request with its member and a flat
// threshold recommendation for the analyst.
func (u *Usecase) Evaluate(ctx context.Context, requestID string) (*Evaluation, error) {
	req, err := u.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, domainRequest.ErrNotFound
	}
	m, err := u.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, domainMember.ErrNotFound
	}
	return &Evaluation{Request: req, Member: m, Recommendation: u.recommend(req, m)}, nil
}

func (u *Usecase) recommend(req *domainRequest.Request, m *domainMember.Member) string {
	switch {
	case m.Status != domainMember.StatusActive:
		return RecommendReject
	case req.Amount.LessThanOrEqual(u.cfg.ApproveUpTo):
		return RecommendApprove
	case req.Amount.LessThanOrEqual(u.cfg.ReviewUpTo):
		return RecommendReview
	default:
		return RecommendReject
	}
}

// RecordObservation appends analyst free text to the request without
// touching its status. Appending the same note twice keeps a single copy.
func (u *Usecase) RecordObservation(ctx context.Context, requestID string, actorID *string, text string) (*domainRequest.Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty observation", domainRequest.ErrInvalidAmount)
	}

	var out *domainRequest.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return domainRequest.ErrNotFound
		}
		before := req.Observations
		req.Observations = appendObservation(req.Observations, text)
		if req.Observations == before {
			out = req
			return nil
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, &audit.Entry{
			Entity:     "request",
			EntityID:   req.ID,
			ActorID:    actorID,
			Action:     audit.ActionUpdate,
			PrevValues: jsonmap.Map{"observations": before},
			NewValues:  jsonmap.Map{"observations": req.Observations},
			Metadata:   jsonmap.Map{},
		}); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendObservation(existing, note string) string {
	if existing == "" {
		return note
	}
	for _, line := range strings.Split(existing, "\n") {
		if strings.TrimSpace(line) == note {
			return existing
		}
	}
	return existing + "\n" + note
}

type Decision struct {
	Request *domainRequest.Request `json:"request"`
	Loan    *domainLoan.Loan       `json:"loan,omitempty"`
}

// Decide resolves a pending request. Approval promotes the request into a
// loan inside the same transaction, reusing the request id as the loan id:
// the request and its loan are created together or not at all, and a second
// approval call finds the existing loan instead of minting a duplicate.
// Rejection only moves the status. Either outcome emits a notification
// signal for the member.
func (u *Usecase) Decide(ctx context.Context, requestID string, actorID *string, next domainRequest.Status, comment string) (*Decision, error) {
	if next != domainRequest.StatusApproved && next != domainRequest.StatusRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", domainRequest.ErrInvalidTransition)
	}

	var (
		out      Decision
		notified bool
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return domainRequest.ErrNotFound
		}

		// Idempotent re-approval: the loan shares the request id.
		if req.Status == domainRequest.StatusApproved && next == domainRequest.StatusApproved {
			l, err := r.Loans.GetByID(ctx, req.ID)
			if err != nil {
				return fmt.Errorf("%w: request %s approved but loan missing", domainRequest.ErrInvalidTransition, req.ID)
			}
			out = Decision{Request: req, Loan: l}
			return nil
		}
		if req.Status != domainRequest.StatusPending {
			return fmt.Errorf("%w: request %s is %s", domainRequest.ErrInvalidTransition, req.ID, req.Status)
		}

		prev := req.Status
		req.Status = next
		if comment != "" {
			req.Observations = appendObservation(req.Observations, comment)
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, &audit.Entry{
			Entity:     "request",
			EntityID:   req.ID,
			ActorID:    actorID,
			Action:     audit.ActionStateChange,
			PrevStatus: string(prev),
			NewStatus:  string(next),
			PrevValues: jsonmap.Map{"status": string(prev)},
			NewValues:  jsonmap.Map{"status": string(next)},
			Metadata:   jsonmap.Map{"comment": comment},
		}); err != nil {
			return err
		}

		out = Decision{Request: req}
		if next != domainRequest.StatusApproved {
			notified = true
			return nil
		}

		disbursedAt := time.Now().UTC().Truncate(24 * time.Hour)
		due := disbursedAt.AddDate(0, req.TermMonths, 0)
		l := &domainLoan.Loan{
			ID:           req.ID,
			MemberID:     req.MemberID,
			TypeID:       &req.TypeID,
			Principal:    req.Amount,
			InterestRate: req.Rate,
			TermMonths:   req.TermMonths,
			State:        domainLoan.StateApproved,
			DisbursedAt:  disbursedAt,
			DueAt:        &due,
			Description:  req.Description,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, &audit.Entry{
			Entity:     "loan",
			EntityID:   l.ID,
			ActorID:    actorID,
			Action:     audit.ActionCreate,
			NewStatus:  string(l.State),
			PrevValues: jsonmap.Map{},
			NewValues:  jsonmap.Map{"principal": l.Principal.String(), "request_id": req.ID},
			Metadata:   jsonmap.Map{},
		}); err != nil {
			return err
		}
		out.Loan = l
		notified = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notified {
		d := notify.Decision{
			MemberID:  out.Request.MemberID,
			RequestID: out.Request.ID,
			Decision:  string(out.Request.Status),
			Comment:   comment,
		}
		if out.Loan != nil {
			d.LoanID = out.Loan.ID
		}
		u.notifier.DecisionMade(ctx, d)
	}
	return &out, nil
}

// resolveTerm validates a requested term against the product's term. A zero
// request means "use the product's full term"; anything else must be a
// positive multiple of six months that does not exceed it.
func resolveTerm(requested, productTerm int) (int, error) {
	if requested == 0 {
		return productTerm, nil
	}
	if requested < 6 || requested%6 != 0 {
		return 0, fmt.Errorf("%w: %d months is not a multiple of six", domainRequest.ErrInvalidTerm, requested)
	}
	if requested > productTerm {
		return 0, fmt.Errorf("%w: %d months exceeds product term of %d", domainRequest.ErrInvalidTerm, requested, productTerm)
	}
	return requested, nil
}
