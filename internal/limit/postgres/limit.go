package postgres

import (
	"context"
	"errors"

	limitDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/limit"
	"github.com/frahmantamala/field-expense/internal/limit"
	"gorm.io/gorm"
)

type LimitRepository struct {
	db *gorm.DB
}

func NewLimitRepository(db *gorm.DB) limit.RepositoryAPI {
	return &LimitRepository{db: db}
}

func (r *LimitRepository) GetAll(ctx context.Context) ([]*limitDatamodel.CategoryLimit, error) {
	var limits []*limitDatamodel.CategoryLimit
	err := r.db.WithContext(ctx).Order("category ASC").Find(&limits).Error
	return limits, err
}

func (r *LimitRepository) GetByCategory(ctx context.Context, category string) (*limitDatamodel.CategoryLimit, error) {
	var l limitDatamodel.CategoryLimit
	err := r.db.WithContext(ctx).Where("category = ?", category).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Save inserts a new row when ID is zero and updates it otherwise.
func (r *LimitRepository) Save(ctx context.Context, l *limitDatamodel.CategoryLimit) error {
	return r.db.WithContext(ctx).Save(l).Error
}
