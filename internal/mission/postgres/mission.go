package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	missionDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/mission"
	"github.com/frahmantamala/field-expense/internal/mission"
	"gorm.io/gorm"
)

type MissionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) mission.RepositoryAPI {
	return &MissionRepository{db: db}
}

func (r *MissionRepository) Create(ctx context.Context, m *missionDatamodel.Mission) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MissionRepository) GetByID(ctx context.Context, id string) (*missionDatamodel.Mission, error) {
	var row missionDatamodel.Mission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrMissionNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *MissionRepository) GetActive(ctx context.Context, ownerID int64) (*missionDatamodel.Mission, error) {
	var rows []*missionDatamodel.Mission
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, string(mission.StatusActive)).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *MissionRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*missionDatamodel.Mission, error) {
	var rows []*missionDatamodel.Mission
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_date DESC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *MissionRepository) Complete(ctx context.Context, id string, endDate time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&missionDatamodel.Mission{}).
		Where("id = ? AND status = ?", id, string(mission.StatusActive)).
		Updates(map[string]interface{}{
			"status":   string(mission.StatusCompleted),
			"end_date": endDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrNoActiveMission
	}
	return nil
}
