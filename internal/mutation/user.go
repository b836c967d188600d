package mutation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/model"
)

// UserInput carries the fields for a new account. Password arrives in
// plaintext from the request and is hashed before anything is stored; the
// hash never enters audit snapshots because the model excludes it from JSON.
type UserInput struct {
	Username   string
	Password   string
	FullName   string
	Role       model.Role
	Department string
	IsActive   bool
}

// UserPatch holds optional account updates; nil fields are left alone.
// Accounts are deactivated via IsActive, never deleted.
type UserPatch struct {
	Password   *string
	FullName   *string
	Role       *model.Role
	Department *string
	IsActive   *bool
}

// CreateUser stores a new account. Admin only.
func (i *Interceptor) CreateUser(ctx context.Context, actor auth.ActingUser, in UserInput) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, &apperr.AuthorizationError{Required: []model.Role{model.RoleAdmin}}
	}
	if in.Username == "" {
		return nil, apperr.Validation("username", "must not be empty")
	}
	if in.Password == "" {
		return nil, apperr.Validation("password", "must not be empty")
	}
	if !model.ValidRole(in.Role) {
		return nil, apperr.Validation("role", "unknown role")
	}

	hash, err := auth.HashPassword(in.Password, i.bcryptCost)
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "hash password", Err: err}
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		Department:   in.Department,
		IsActive:     in.IsActive,
		CreatedAt:    i.now().UTC(),
	}

	err = i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return &apperr.PersistenceError{Op: "create user", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditCreate, "User", user.ID, nil, user, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a patch to an account. Admin only. A supplied password
// is re-hashed.
func (i *Interceptor) UpdateUser(ctx context.Context, actor auth.ActingUser, id string, patch UserPatch) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, &apperr.AuthorizationError{Required: []model.Role{model.RoleAdmin}}
	}
	if patch.Role != nil && !model.ValidRole(*patch.Role) {
		return nil, apperr.Validation("role", "unknown role")
	}

	var updated model.User
	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.User
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &apperr.NotFoundError{Entity: "User", ID: id}
			}
			return &apperr.PersistenceError{Op: "load User", Err: err}
		}

		updated = old
		if patch.Password != nil {
			hash, err := auth.HashPassword(*patch.Password, i.bcryptCost)
			if err != nil {
				return &apperr.PersistenceError{Op: "hash password", Err: err}
			}
			updated.PasswordHash = hash
		}
		if patch.FullName != nil {
			updated.FullName = *patch.FullName
		}
		if patch.Role != nil {
			updated.Role = *patch.Role
		}
		if patch.Department != nil {
			updated.Department = *patch.Department
		}
		if patch.IsActive != nil {
			updated.IsActive = *patch.IsActive
		}

		if err := tx.Save(&updated).Error; err != nil {
			return &apperr.PersistenceError{Op: "update user", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditUpdate, "User", id, &old, &updated, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
