package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	missionDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/mission"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Create(ctx context.Context, m *missionDatamodel.Mission) error
	GetByID(ctx context.Context, id string) (*missionDatamodel.Mission, error)
	// GetActive returns nil, nil when the owner has no active mission.
	GetActive(ctx context.Context, ownerID int64) (*missionDatamodel.Mission, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*missionDatamodel.Mission, error)
	// Complete only touches a mission that is still active.
	Complete(ctx context.Context, id string, endDate time.Time) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Start opens a mission for the owner. Only one may be active at a time.
func (s *Service) Start(ctx context.Context, ownerID int64, dto StartMissionDTO) (*Mission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	active, err := s.repo.GetActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get active mission: %w", err)
	}
	if active != nil {
		return nil, internal.ErrMissionAlreadyActive.WithDetails(map[string]string{"mission_id": active.ID})
	}

	m := &Mission{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      dto.Name,
		Status:    StatusActive,
		StartDate: day(s.now()),
	}
	if err := s.repo.Create(ctx, ToDataModel(m)); err != nil {
		s.logger.Error("failed to create mission", "error", err, "owner_id", ownerID)
		return nil, fmt.Errorf("create mission: %w", err)
	}

	s.logger.Info("mission started", "mission_id", m.ID, "owner_id", ownerID)
	return m, nil
}

// Complete closes the owner's active mission with today as its end date.
func (s *Service) Complete(ctx context.Context, ownerID int64, missionID string) (*Mission, error) {
	row, err := s.repo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if row.OwnerID != ownerID {
		return nil, internal.ErrMissionNotFound
	}
	if Status(row.Status) != StatusActive {
		return nil, internal.ErrNoActiveMission
	}

	end := day(s.now())
	if err := s.repo.Complete(ctx, missionID, end); err != nil {
		return nil, err
	}

	m := FromDataModel(row)
	m.Status = StatusCompleted
	m.EndDate = &end

	s.logger.Info("mission completed", "mission_id", missionID, "owner_id", ownerID)
	return m, nil
}

func (s *Service) Active(ctx context.Context, ownerID int64) (*Mission, error) {
	row, err := s.repo.GetActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get active mission: %w", err)
	}
	if row == nil {
		return nil, internal.ErrNoActiveMission
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]*Mission, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	out := make([]*Mission, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// ResolveActive returns the owner's active mission id. An explicit missionID
// must name that mission.
func (s *Service) ResolveActive(ctx context.Context, ownerID int64, missionID string) (string, error) {
	active, err := s.Active(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if missionID != "" && missionID != active.ID {
		if _, err := s.repo.GetByID(ctx, missionID); errors.Is(err, internal.ErrMissionNotFound) {
			return "", internal.ErrMissionNotFound
		}
		return "", internal.ErrNoActiveMission.WithDetails(map[string]string{"mission_id": missionID})
	}
	return active.ID, nil
}
