package expense

import (
	"strings"
	"time"

	"github.com/frahmantamala/field-expense/internal"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSettle  Action = "settle"
)

// legal lists the only state each action may start from.
var legal = map[Action]Status{
	ActionApprove: StatusPending,
	ActionReject:  StatusPending,
	ActionSettle:  StatusApproved,
}

// Can reports whether action is legal from the record's current status.
func (r *Record) Can(action Action) bool {
	from, ok := legal[action]
	return ok && r.Status == from
}

func (r *Record) invalidTransition(action Action) error {
	return internal.ErrInvalidTransition.WithDetails(map[string]string{
		"expense_id": r.ID,
		"status":     string(r.Status),
		"action":     string(action),
	})
}

func (r *Record) Approve(approverID int64, now time.Time) error {
	if !r.Can(ActionApprove) {
		return r.invalidTransition(ActionApprove)
	}
	r.Status = StatusApproved
	r.ApproverID = &approverID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject checks the reason before legality, so a blank reason reports
// MissingReason from any state.
func (r *Record) Reject(approverID int64, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return internal.ErrMissingReason
	}
	if !r.Can(ActionReject) {
		return r.invalidTransition(ActionReject)
	}
	r.Status = StatusRejected
	r.RejectionReason = &reason
	r.ApproverID = &approverID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

func (r *Record) Settle(now time.Time) error {
	if !r.Can(ActionSettle) {
		return r.invalidTransition(ActionSettle)
	}
	r.Status = StatusSettled
	r.SettledAt = &now
	r.UpdatedAt = now
	return nil
}

// Apply dispatches action to the matching transition.
func (r *Record) Apply(action Action, actorID int64, reason string, now time.Time) error {
	switch action {
	case ActionApprove:
		return r.Approve(actorID, now)
	case ActionReject:
		return r.Reject(actorID, reason, now)
	case ActionSettle:
		return r.Settle(now)
	}
	return r.invalidTransition(action)
}
