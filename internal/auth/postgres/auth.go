package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/auth"
	userDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash", "is_active").
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	return &auth.Credentials{
		UserID:       u.ID,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

func (r *Repository) GetUserWithPermissions(ctx context.Context, userID int64) (*internal.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", userID, true).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	permQuery := `SELECT p.name
	             FROM permissions p
	             JOIN user_permissions up ON p.id = up.permission_id
	             WHERE up.user_id = ?
	             ORDER BY p.name`

	rows, err := r.db.WithContext(ctx).Raw(permQuery, userID).Rows()
	if err != nil {
		return nil, fmt.Errorf("get user permissions: %w", err)
	}
	defer rows.Close()

	permissions := []string{}
	for rows.Next() {
		var permName string
		if err := rows.Scan(&permName); err != nil {
			return nil, err
		}
		permissions = append(permissions, permName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &internal.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsApproved:  u.IsApproved,
		Permissions: permissions,
	}, nil
}
