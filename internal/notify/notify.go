// Package notify carries the logical "member was notified of a decision"
// signal out of the core. Delivery (mail, SMS) lives outside; the engine
// only emits the recipient, the decision and the ids involved.
package notify

import (
	"context"

	"go.uber.org/zap"
)

type Decision struct {
	MemberID  string
	RequestID string
	LoanID    string
	Decision  string
	Comment   string
}

type Notifier interface {
	DecisionMade(ctx context.Context, d Decision)
}

// LogNotifier records the signal on the service log. It stands in until a
// real delivery channel is attached by the host.
type LogNotifier struct{ log *zap.Logger }

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) DecisionMade(_ context.Context, d Decision) {
	n.log.Info("request decision notification",
		zap.String("member_id", d.MemberID),
		zap.String("request_id", d.RequestID),
		zap.String("loan_id", d.LoanID),
		zap.String("decision", d.Decision),
	)
}

// Nop drops every signal. Useful in tests.
type Nop struct{}

func (Nop) DecisionMade(context.Context, Decision) {}
