package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/field-expense/internal/core/events"
	"github.com/frahmantamala/field-expense/internal/limit"
)

type RepositoryAPI interface {
	CreateBatch(ctx context.Context, rows []*expenseDatamodel.Expense) error
	GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error)
	Find(ctx context.Context, filter Filter) ([]*expenseDatamodel.Expense, error)
	// UpdateStatus writes a transition only if the stored status still equals
	// from, returning ErrStatusConflict otherwise.
	UpdateStatus(ctx context.Context, row *expenseDatamodel.Expense, from string) error
}

type Authorizer interface {
	IsAdmin(ctx context.Context, actorID int64) (bool, error)
}

// MissionResolver maps a requested mission id to the owner's active mission.
type MissionResolver interface {
	ResolveActive(ctx context.Context, ownerID int64, missionID string) (string, error)
}

type LimitSource interface {
	Policy(ctx context.Context) (*limit.Policy, error)
}

// SubmitResult carries the records of one batch and their limit verdicts, in
// the same order.
type SubmitResult struct {
	Records  []*Record
	Warnings []LimitWarning
}

func (r *SubmitResult) ToResponse() SubmitBatchResponse {
	return SubmitBatchResponse{
		Expenses:  ToResponses(r.Records),
		Warnings:  ToWarningResponses(r.Warnings),
		OverLimit: CountExceeded(r.Warnings),
	}
}

type Service struct {
	repo      RepositoryAPI
	authz     Authorizer
	missions  MissionResolver
	limits    LimitSource
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, authz Authorizer, missions MissionResolver, limits LimitSource, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		authz:     authz,
		missions:  missions,
		limits:    limits,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitBatch normalizes, limit-checks and stores a batch all-or-nothing.
// Over-limit records are still stored as pending.
func (s *Service) SubmitBatch(ctx context.Context, actor *internal.User, dto SubmitBatchDTO) (*SubmitResult, error) {
	if !actor.IsApproved {
		s.logger.Warn("submit denied: user not approved", "user_id", actor.ID)
		return nil, internal.ErrUserNotApproved
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	missionID, err := s.missions.ResolveActive(ctx, actor.ID, dto.MissionID)
	if err != nil {
		s.logger.Warn("submit denied: mission not resolved", "error", err, "user_id", actor.ID, "mission_id", dto.MissionID)
		return nil, err
	}

	result, err := s.evaluate(ctx, actor.ID, missionID, dto)
	if err != nil {
		return nil, err
	}

	rows := make([]*expenseDatamodel.Expense, len(result.Records))
	for i, r := range result.Records {
		rows[i] = ToDataModel(r)
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		s.logger.Error("failed to store expense batch", "error", err, "user_id", actor.ID, "count", len(rows))
		return nil, fmt.Errorf("store expense batch: %w", err)
	}

	ids := make([]string, len(result.Records))
	for i, r := range result.Records {
		ids[i] = r.ID
	}
	overLimit := CountExceeded(result.Warnings)

	s.logger.Info("expense batch submitted successfully",
		"user_id", actor.ID,
		"mission_id", missionID,
		"count", len(ids),
		"over_limit", overLimit)
	if overLimit > 0 {
		s.logger.Warn("expense batch exceeds daily limit, requires admin review",
			"user_id", actor.ID,
			"over_limit", overLimit)
	}

	s.publish(ctx, events.NewExpenseSubmittedEvent(actor.ID, missionID, ids, overLimit))
	return result, nil
}

// Preview runs the same normalization and limit check without storing
// anything.
func (s *Service) Preview(ctx context.Context, actor *internal.User, dto SubmitBatchDTO) (*SubmitResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.evaluate(ctx, actor.ID, dto.MissionID, dto)
}

func (s *Service) evaluate(ctx context.Context, ownerID int64, missionID string, dto SubmitBatchDTO) (*SubmitResult, error) {
	batch, err := dto.ToBatch(ownerID, missionID)
	if err != nil {
		return nil, err
	}

	records, err := Normalize(batch, s.now())
	if err != nil {
		return nil, err
	}

	policy, err := s.limits.Policy(ctx)
	if err != nil {
		s.logger.Error("failed to load limit policy", "error", err)
		return nil, fmt.Errorf("load limit policy: %w", err)
	}

	day := Day(batch.Date)
	sameDay, err := s.repo.Find(ctx, Filter{OwnerID: &ownerID, From: &day, To: &day})
	if err != nil {
		s.logger.Error("failed to load same-day expenses", "error", err, "user_id", ownerID)
		return nil, fmt.Errorf("load same-day expenses: %w", err)
	}

	return &SubmitResult{
		Records:  records,
		Warnings: CheckLimits(records, policy, PersistedTotals(FromDataModelSlice(sameDay))),
	}, nil
}

// Get returns a record visible to actor: its owner or an admin.
func (s *Service) Get(ctx context.Context, actorID int64, id string) (*Record, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, internal.ErrExpenseNotFound) {
			s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		}
		return nil, err
	}
	record := FromDataModel(row)

	if record.OwnerID != actorID {
		isAdmin, err := s.authz.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			s.logger.Warn("unauthorized access to expense", "expense_id", id, "user_id", actorID, "owner_id", record.OwnerID)
			return nil, internal.ErrUnauthorizedAccess
		}
	}
	return record, nil
}

// List reads the actor's own records, or everyone's when all is set and the
// actor is an admin.
func (s *Service) List(ctx context.Context, actorID int64, filter Filter, all bool) ([]*Record, error) {
	if all {
		isAdmin, err := s.authz.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			s.logger.Warn("list all expenses denied: insufficient permissions", "user_id", actorID)
			return nil, internal.ErrUnauthorizedAccess
		}
	} else {
		filter.OwnerID = &actorID
	}

	rows, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", actorID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Approve(ctx context.Context, actorID int64, id string) (*Record, error) {
	return s.transition(ctx, actorID, id, ActionApprove, "")
}

func (s *Service) Reject(ctx context.Context, actorID int64, id, reason string) (*Record, error) {
	return s.transition(ctx, actorID, id, ActionReject, reason)
}

func (s *Service) Settle(ctx context.Context, actorID int64, id string) (*Record, error) {
	return s.transition(ctx, actorID, id, ActionSettle, "")
}

func (s *Service) transition(ctx context.Context, actorID int64, id string, action Action, reason string) (*Record, error) {
	isAdmin, err := s.authz.IsAdmin(ctx, actorID)
	if err != nil {
		s.logger.Error("authorization check failed", "error", err, "actor_id", actorID)
		return nil, err
	}
	if !isAdmin {
		s.logger.Warn("expense transition denied: insufficient permissions",
			"expense_id", id,
			"actor_id", actorID,
			"action", action)
		return nil, internal.ErrUnauthorizedAccess
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("expense not found for transition", "error", err, "expense_id", id, "action", action)
		return nil, err
	}
	record := FromDataModel(row)
	from := record.Status

	if err := record.Apply(action, actorID, reason, s.now()); err != nil {
		if errors.Is(err, internal.ErrInvalidTransition) {
			// Gated callers should never reach an illegal transition.
			s.logger.Error("invalid expense transition",
				"expense_id", id,
				"action", action,
				"current_status", from)
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, ToDataModel(record), string(from)); err != nil {
		if errors.Is(err, internal.ErrStatusConflict) {
			s.logger.Warn("expense status changed concurrently", "expense_id", id, "expected_status", from)
			return nil, err
		}
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id, "status", record.Status)
		return nil, fmt.Errorf("update expense status: %w", err)
	}

	s.logger.Info("expense "+string(record.Status)+" successfully",
		"expense_id", id,
		"actor_id", actorID,
		"amount", record.Amount.String())

	s.publish(ctx, events.NewExpenseStatusChangedEvent(
		eventTypeFor(action), record.ID, record.OwnerID, actorID,
		string(from), string(record.Status), record.Amount, reason))
	return record, nil
}

func eventTypeFor(action Action) string {
	switch action {
	case ActionApprove:
		return events.EventTypeExpenseApproved
	case ActionReject:
		return events.EventTypeExpenseRejected
	default:
		return events.EventTypeExpenseSettled
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
