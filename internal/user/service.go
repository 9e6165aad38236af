package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/field-expense/internal"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetApproved(ctx context.Context, userID int64, approved bool) error
	GrantPermission(ctx context.Context, userID int64, permission string, grantedBy int64) error
}

// Authorizer answers whether an actor holds administrative capability.
type Authorizer interface {
	IsAdmin(ctx context.Context, actorID int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	authz  Authorizer
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, authz Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authz,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// List returns every user for the admin console.
func (s *Service) List(ctx context.Context, actorID int64) ([]*User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Approve lets a registered user start submitting expenses.
func (s *Service) Approve(ctx context.Context, actorID, userID int64) (*User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.repo.SetApproved(ctx, userID, true); err != nil {
		s.logger.Error("failed to approve user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("approve user: %w", err)
	}

	s.logger.Info("user approved", "user_id", userID, "approved_by", actorID)
	return s.repo.GetByID(ctx, userID)
}

// Promote grants the admin permission. Promoting an admin is a no-op.
func (s *Service) Promote(ctx context.Context, actorID, userID int64) (*User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.HasPermission(internal.PermissionAdmin) {
		return target, nil
	}

	if err := s.repo.GrantPermission(ctx, userID, internal.PermissionAdmin, actorID); err != nil {
		s.logger.Error("failed to promote user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("promote user: %w", err)
	}

	s.logger.Info("user promoted to admin", "user_id", userID, "granted_by", actorID)
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) requireAdmin(ctx context.Context, actorID int64) error {
	ok, err := s.authz.IsAdmin(ctx, actorID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if !ok {
		s.logger.Warn("admin action refused", "actor_id", actorID)
		return internal.ErrUnauthorizedAccess
	}
	return nil
}
