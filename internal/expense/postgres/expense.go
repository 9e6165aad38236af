package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/field-expense/internal"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/field-expense/internal/expense"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

// CreateBatch inserts every row or none.
func (r *ExpenseRepository) CreateBatch(ctx context.Context, rows []*expenseDatamodel.Expense) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error) {
	var row expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *ExpenseRepository) Find(ctx context.Context, f expense.Filter) ([]*expenseDatamodel.Expense, error) {
	q := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{})
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.MissionID != "" {
		q = q.Where("mission_id = ?", f.MissionID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	if f.Category != "" {
		q = q.Where("category = ?", string(f.Category))
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var rows []*expenseDatamodel.Expense
	err := q.Order("date DESC").Order("created_at DESC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// UpdateStatus is a compare-and-swap on status. A miss is reported as
// ErrExpenseNotFound when the row is gone and ErrStatusConflict otherwise.
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, row *expenseDatamodel.Expense, from string) error {
	res := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("id = ? AND status = ?", row.ID, from).
		Updates(map[string]interface{}{
			"status":           row.Status,
			"rejection_reason": row.RejectionReason,
			"approver_id":      row.ApproverID,
			"approved_at":      row.ApprovedAt,
			"settled_at":       row.SettledAt,
			"updated_at":       row.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.ErrExpenseNotFound
	}
	return internal.ErrStatusConflict
}
