package limit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	limitDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/limit"
	"github.com/frahmantamala/field-expense/internal/core/events"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*limitDatamodel.CategoryLimit, error)
	GetByCategory(ctx context.Context, category string) (*limitDatamodel.CategoryLimit, error)
	Save(ctx context.Context, limit *limitDatamodel.CategoryLimit) error
}

// Authorizer answers whether an actor holds administrative capability.
type Authorizer interface {
	IsAdmin(ctx context.Context, actorID int64) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	authz     Authorizer
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, authz Authorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		authz:     authz,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// GetAll returns one limit per category in display order. Categories with no
// stored row come back unlimited.
func (s *Service) GetAll(ctx context.Context) ([]*CategoryLimit, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get category limits", "error", err)
		return nil, err
	}

	byCategory := make(map[category.Category]*CategoryLimit, len(rows))
	for _, row := range rows {
		l := FromDataModel(row)
		if !l.Category.Valid() {
			s.logger.Warn("ignoring limit for unknown category", "category", row.Category)
			continue
		}
		byCategory[l.Category] = l
	}

	out := make([]*CategoryLimit, 0, len(category.All()))
	for _, c := range category.All() {
		if l, ok := byCategory[c]; ok {
			out = append(out, l)
			continue
		}
		out = append(out, &CategoryLimit{Category: c, DailyLimit: decimal.Zero})
	}
	return out, nil
}

// Policy snapshots the current limits.
func (s *Service) Policy(ctx context.Context) (*Policy, error) {
	limits, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewPolicy(limits), nil
}

func (s *Service) UpdateLimit(ctx context.Context, actorID int64, c category.Category, amount decimal.Decimal) (*CategoryLimit, error) {
	if !c.Valid() {
		return nil, internal.ErrInvalidCategory
	}
	if amount.IsNegative() {
		return nil, internal.NewValidationFieldError("daily_limit", "daily_limit cannot be negative", internal.ErrCodeInvalidAmount)
	}

	isAdmin, err := s.authz.IsAdmin(ctx, actorID)
	if err != nil {
		s.logger.Error("authorization check failed", "error", err, "actor_id", actorID)
		return nil, err
	}
	if !isAdmin {
		s.logger.Warn("update limit denied: insufficient permissions", "actor_id", actorID, "category", c)
		return nil, internal.ErrUnauthorizedAccess
	}

	row, err := s.repo.GetByCategory(ctx, string(c))
	if err != nil {
		s.logger.Error("failed to load category limit", "error", err, "category", c)
		return nil, err
	}

	l := &CategoryLimit{Category: c}
	if row != nil {
		l = FromDataModel(row)
	}
	l.SetDailyLimit(amount, actorID, s.now())

	data := ToDataModel(l)
	if err := s.repo.Save(ctx, data); err != nil {
		s.logger.Error("failed to save category limit", "error", err, "category", c)
		return nil, fmt.Errorf("save category limit: %w", err)
	}
	l.ID = data.ID

	s.logger.Info("category limit updated",
		"category", c,
		"daily_limit", amount.String(),
		"actor_id", actorID)

	s.publish(ctx, events.NewLimitUpdatedEvent(string(c), amount, actorID))

	return l, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func (s *Service) Categories() []CategoryResponse {
	out := make([]CategoryResponse, 0, len(category.All()))
	for _, c := range category.All() {
		out = append(out, CategoryResponse{
			Name:        string(c),
			Description: c.Description(),
			IsCredit:    c.IsCredit(),
		})
	}
	return out
}
