package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeExpenseSubmitted = "expense.submitted"
	EventTypeExpenseApproved  = "expense.approved"
	EventTypeExpenseRejected  = "expense.rejected"
	EventTypeExpenseSettled   = "expense.settled"
	EventTypeLimitUpdated     = "limit.updated"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type ExpenseSubmittedEvent struct {
	BaseEvent
	OwnerID    int64    `json:"owner_id"`
	MissionID  string   `json:"mission_id"`
	ExpenseIDs []string `json:"expense_ids"`
	OverLimit  int      `json:"over_limit"`
}

func NewExpenseSubmittedEvent(ownerID int64, missionID string, expenseIDs []string, overLimit int) *ExpenseSubmittedEvent {
	return &ExpenseSubmittedEvent{
		BaseEvent: newBase(EventTypeExpenseSubmitted, map[string]interface{}{
			"owner_id":    ownerID,
			"mission_id":  missionID,
			"expense_ids": expenseIDs,
			"over_limit":  overLimit,
		}),
		OwnerID:    ownerID,
		MissionID:  missionID,
		ExpenseIDs: expenseIDs,
		OverLimit:  overLimit,
	}
}

// ExpenseStatusChangedEvent covers approve, reject and settle.
type ExpenseStatusChangedEvent struct {
	BaseEvent
	ExpenseID string          `json:"expense_id"`
	OwnerID   int64           `json:"owner_id"`
	ActorID   int64           `json:"actor_id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

func NewExpenseStatusChangedEvent(eventType, expenseID string, ownerID, actorID int64, from, to string, amount decimal.Decimal, reason string) *ExpenseStatusChangedEvent {
	return &ExpenseStatusChangedEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"expense_id": expenseID,
			"owner_id":   ownerID,
			"actor_id":   actorID,
			"from":       from,
			"to":         to,
			"amount":     amount.String(),
			"reason":     reason,
		}),
		ExpenseID: expenseID,
		OwnerID:   ownerID,
		ActorID:   actorID,
		From:      from,
		To:        to,
		Amount:    amount,
		Reason:    reason,
	}
}

type LimitUpdatedEvent struct {
	BaseEvent
	Category   string          `json:"category"`
	DailyLimit decimal.Decimal `json:"daily_limit"`
	UpdatedBy  int64           `json:"updated_by"`
}

func NewLimitUpdatedEvent(category string, dailyLimit decimal.Decimal, updatedBy int64) *LimitUpdatedEvent {
	return &LimitUpdatedEvent{
		BaseEvent: newBase(EventTypeLimitUpdated, map[string]interface{}{
			"category":    category,
			"daily_limit": dailyLimit.String(),
			"updated_by":  updatedBy,
		}),
		Category:   category,
		DailyLimit: dailyLimit,
		UpdatedBy:  updatedBy,
	}
}

// AuditTrail returns a handler that writes every lifecycle event to the log.
func AuditTrail(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}
}
