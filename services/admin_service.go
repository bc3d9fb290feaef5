package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 10
	// bcrypt only hashes the first 72 bytes
	maxPasswordBytes = 72
)

// AdminInput creates a dashboard account
type AdminInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Name     string      `json:"name" binding:"required,max=100"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

// AdminUpdate edits a dashboard account; nil fields are unchanged
type AdminUpdate struct {
	Name     *string      `json:"name" binding:"omitempty,max=100"`
	Role     *models.Role `json:"role"`
	Active   *bool        `json:"active"`
	Password *string      `json:"password"`
}

// AdminService manages dashboard accounts and password login
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// HashPassword bcrypts a password after checking its length
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// dummyHash keeps unknown-email logins as slow as wrong-password ones
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shahzaib-autos-timing"), bcrypt.DefaultCost)

// Authenticate checks email and password and stamps last_login_at
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !admin.Active {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&admin).UpdateColumn("last_login_at", now).Error; err != nil {
		zap.L().Warn("failed to stamp last login", zap.Uint("admin_id", admin.ID), zap.Error(err))
	}
	admin.LastLoginAt = &now

	RecordAudit(ctx, &admin, AuditLogin, "admin", admin.ID, nil)
	return &admin, nil
}

// List returns every dashboard account
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins := []models.Admin{}
	if err := s.db.WithContext(ctx).Order("name").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// Create adds a dashboard account. actor is nil when seeding from the CLI.
func (s *AdminService) Create(ctx context.Context, actor *models.Admin, in AdminInput) (*models.Admin, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	admin := models.Admin{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&models.Admin{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		return nil, err
	}

	RecordAudit(ctx, actor, AuditCreate, "admin", admin.ID, map[string]interface{}{"email": admin.Email, "role": admin.Role})
	return &admin, nil
}

// activeOwnersExcept counts active owners other than id
func activeOwnersExcept(tx *gorm.DB, id uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Admin{}).
		Where("role = ? AND active = ? AND id <> ?", models.RoleOwner, true, id).
		Count(&count).Error
	return count, err
}

// Update edits an account. Owners cannot demote or deactivate themselves, and the
// last active owner cannot lose the role.
func (s *AdminService) Update(ctx context.Context, actor *models.Admin, id uint, in AdminUpdate) (*models.Admin, error) {
	var admin models.Admin
	var changed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&admin, id).Error; err != nil {
			return notFound(err, "admin")
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
			changed = append(changed, "name")
		}
		if in.Password != nil {
			hash, err := HashPassword(*in.Password)
			if err != nil {
				return err
			}
			updates["password_hash"] = hash
			updates["session_version"] = gorm.Expr("session_version + 1")
			changed = append(changed, "password")
		}

		losesOwner := false
		if in.Role != nil && *in.Role != admin.Role {
			if !in.Role.Valid() {
				return ErrInvalidRole
			}
			losesOwner = admin.Role == models.RoleOwner
			updates["role"] = *in.Role
			changed = append(changed, "role")
		}
		if in.Active != nil && *in.Active != admin.Active {
			losesOwner = losesOwner || (!*in.Active && admin.Role == models.RoleOwner)
			updates["active"] = *in.Active
			changed = append(changed, "active")
		}

		if actor != nil && actor.ID == admin.ID && (updates["role"] != nil || (in.Active != nil && !*in.Active)) {
			return ErrSelfModification
		}
		if losesOwner && admin.Active {
			owners, err := activeOwnersExcept(tx, admin.ID)
			if err != nil {
				return fmt.Errorf("failed to count owners: %w", err)
			}
			if owners == 0 {
				return ErrLastOwner
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&admin).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update admin: %w", err)
		}
		return tx.First(&admin, id).Error
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		RecordAudit(ctx, actor, AuditUpdate, "admin", id, map[string]interface{}{"fields": changed})
	}
	return &admin, nil
}

// Delete removes an account. Nobody can delete themselves or the last active owner.
func (s *AdminService) Delete(ctx context.Context, actor *models.Admin, id uint) error {
	if actor != nil && actor.ID == id {
		return ErrSelfModification
	}

	var admin models.Admin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&admin, id).Error; err != nil {
			return notFound(err, "admin")
		}
		if admin.Role == models.RoleOwner && admin.Active {
			owners, err := activeOwnersExcept(tx, admin.ID)
			if err != nil {
				return fmt.Errorf("failed to count owners: %w", err)
			}
			if owners == 0 {
				return ErrLastOwner
			}
		}
		return tx.Delete(&admin).Error
	})
	if err != nil {
		return err
	}

	RecordAudit(ctx, actor, AuditDelete, "admin", id, map[string]interface{}{"email": admin.Email})
	return nil
}
