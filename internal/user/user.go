package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/user"
)

type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	IsApproved  bool      `json:"is_approved"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsApproved:  u.IsApproved,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Permissions: []string{},
	}
}

func FromDataModelWithPermissions(u *userDatamodel.User, permissions []string) *User {
	domainUser := FromDataModel(u)
	if permissions != nil {
		domainUser.Permissions = permissions
	}
	return domainUser
}
