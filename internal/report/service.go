package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/frahmantamala/field-expense/internal/ledger"
	"github.com/frahmantamala/field-expense/internal/limit"
	"github.com/frahmantamala/field-expense/internal/user"
	"golang.org/x/sync/errgroup"
)

type ExpenseSource interface {
	Find(ctx context.Context, f expense.Filter) ([]*expenseDatamodel.Expense, error)
}

type UserDirectory interface {
	List(ctx context.Context) ([]*user.User, error)
}

type LimitSource interface {
	GetAll(ctx context.Context) ([]*limit.CategoryLimit, error)
}

// Authorizer answers whether an actor holds administrative capability.
type Authorizer interface {
	IsAdmin(ctx context.Context, actorID int64) (bool, error)
}

// Overview is the admin dashboard: every owner's records rolled up.
type Overview struct {
	Summary      ledger.Summary
	Breakdown    ledger.Breakdown
	StatusCounts []ledger.StatusCount
	Limits       []*limit.CategoryLimit
	UserCount    int
	PendingUsers int
	ExpenseCount int
	GeneratedAt  time.Time
}

type Service struct {
	expenses ExpenseSource
	users    UserDirectory
	limits   LimitSource
	authz    Authorizer
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(expenses ExpenseSource, users UserDirectory, limits LimitSource, authz Authorizer, logger *slog.Logger) *Service {
	return &Service{
		expenses: expenses,
		users:    users,
		limits:   limits,
		authz:    authz,
		logger:   logger,
		now:      time.Now,
	}
}

// Overview loads expenses, users and limits concurrently and aggregates them.
func (s *Service) Overview(ctx context.Context, actorID int64, filter expense.Filter) (*Overview, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	var (
		records []*expense.Record
		users   []*user.User
		limits  []*limit.CategoryLimit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.expenses.Find(gctx, filter)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		records = expense.FromDataModelSlice(rows)
		return nil
	})
	g.Go(func() error {
		var err error
		if users, err = s.users.List(gctx); err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if limits, err = s.limits.GetAll(gctx); err != nil {
			return fmt.Errorf("load limits: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build overview", "error", err)
		return nil, err
	}

	now := s.now()
	o := &Overview{
		Summary:      ledger.Summarize(records, now),
		Breakdown:    ledger.CategoryBreakdown(records),
		StatusCounts: ledger.StatusCounts(records),
		Limits:       limits,
		UserCount:    len(users),
		ExpenseCount: len(records),
		GeneratedAt:  now,
	}
	for _, u := range users {
		if !u.IsApproved {
			o.PendingUsers++
		}
	}
	return o, nil
}

// ExportFor is Export behind an admin check.
func (s *Service) ExportFor(ctx context.Context, actorID int64, filter expense.Filter, w io.Writer) (int, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return 0, err
	}
	return s.Export(ctx, filter, w)
}

// Export writes the filtered records as CSV and returns how many it wrote.
func (s *Service) Export(ctx context.Context, filter expense.Filter, w io.Writer) (int, error) {
	var (
		rows  []*expenseDatamodel.Expense
		users []*user.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.expenses.Find(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load export data", "error", err)
		return 0, fmt.Errorf("load export data: %w", err)
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = u.Email
		}
		names[u.ID] = name
	}

	records := expense.FromDataModelSlice(rows)
	if err := WriteCSV(w, records, names); err != nil {
		return 0, err
	}

	s.logger.Info("expenses exported", "rows", len(records))
	return len(records), nil
}

func (s *Service) requireAdmin(ctx context.Context, actorID int64) error {
	ok, err := s.authz.IsAdmin(ctx, actorID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if !ok {
		return internal.ErrUnauthorizedAccess
	}
	return nil
}
