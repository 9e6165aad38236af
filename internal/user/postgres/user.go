package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/field-expense/internal"
	userDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/user"
	"github.com/frahmantamala/field-expense/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).First(&row, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	perms, err := r.permissionsByUser(ctx, []int64{userID})
	if err != nil {
		return nil, err
	}
	return user.FromDataModelWithPermissions(&row, perms[userID]), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	perms, err := r.permissionsByUser(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = user.FromDataModelWithPermissions(&rows[i], perms[rows[i].ID])
	}
	return users, nil
}

func (r *UserRepository) SetApproved(ctx context.Context, userID int64, approved bool) error {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("is_approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// GrantPermission is idempotent on (user, permission).
func (r *UserRepository) GrantPermission(ctx context.Context, userID int64, permission string, grantedBy int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var perm userDatamodel.Permission
		if err := tx.Where("name = ?", permission).First(&perm).Error; err != nil {
			return fmt.Errorf("find permission %q: %w", permission, err)
		}

		grant := userDatamodel.UserPermission{
			UserID:       userID,
			PermissionID: perm.ID,
			GrantedBy:    &grantedBy,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error
	})
}

func (r *UserRepository) permissionsByUser(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		UserID int64
		Name   string
	}
	err := r.db.WithContext(ctx).
		Table("user_permissions AS up").
		Select("up.user_id AS user_id, p.name AS name").
		Joins("JOIN permissions p ON p.id = up.permission_id").
		Where("up.user_id IN ?", userIDs).
		Order("p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get user permissions: %w", err)
	}

	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Name)
	}
	return out, nil
}
