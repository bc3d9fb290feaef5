package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"gorm.io/gorm"
)

// BadgeInput carries editable badge fields
type BadgeInput struct {
	Name  string `json:"name" binding:"required,max=40"`
	Slug  string `json:"slug"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// ServiceInput carries editable workshop service fields. Nil pointers are left unchanged on update.
type ServiceInput struct {
	Name            *string `json:"name"`
	Slug            *string `json:"slug"`
	Description     *string `json:"description"`
	Price           *int64  `json:"price" binding:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=15,max=480"`
	SlotCapacity    *int    `json:"slot_capacity" binding:"omitempty,min=1,max=20"`
	Active          *bool   `json:"active"`
}

// CatalogService manages badges and bookable workshop services
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func slugTaken(tx *gorm.DB, model interface{}, slug string, exceptID uint) error {
	var count int64
	q := tx.Unscoped().Model(model).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return detail(ErrSlugTaken, "%q", slug)
	}
	return nil
}

// ListBadges returns every badge by name
func (s *CatalogService) ListBadges(ctx context.Context) ([]models.Badge, error) {
	badges := []models.Badge{}
	if err := s.db.WithContext(ctx).Order("name").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

func (s *CatalogService) CreateBadge(ctx context.Context, admin *models.Admin, in BadgeInput) (*models.Badge, error) {
	badge := models.Badge{Name: strings.TrimSpace(in.Name), Slug: utils.Slugify(in.Slug), Color: in.Color}
	if badge.Slug == "" {
		badge.Slug = utils.Slugify(badge.Name)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := slugTaken(tx, &models.Badge{}, badge.Slug, 0); err != nil {
			return err
		}
		return tx.Create(&badge).Error
	})
	if err != nil {
		return nil, err
	}

	NewProductService(s.db).InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditCreate, "badge", badge.ID, map[string]interface{}{"slug": badge.Slug})
	return &badge, nil
}

func (s *CatalogService) UpdateBadge(ctx context.Context, admin *models.Admin, id uint, in BadgeInput) (*models.Badge, error) {
	var badge models.Badge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&badge, id).Error; err != nil {
			return notFound(err, "badge")
		}
		badge.Name = strings.TrimSpace(in.Name)
		if slug := utils.Slugify(in.Slug); slug != "" && slug != badge.Slug {
			if err := slugTaken(tx, &models.Badge{}, slug, id); err != nil {
				return err
			}
			badge.Slug = slug
		}
		if in.Color != "" {
			badge.Color = in.Color
		}
		return tx.Model(&badge).Updates(map[string]interface{}{
			"name":  badge.Name,
			"slug":  badge.Slug,
			"color": badge.Color,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	NewProductService(s.db).InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditUpdate, "badge", id, nil)
	return &badge, nil
}

// DeleteBadge removes the badge and detaches it from every product
func (s *CatalogService) DeleteBadge(ctx context.Context, admin *models.Admin, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var badge models.Badge
		if err := tx.First(&badge, id).Error; err != nil {
			return notFound(err, "badge")
		}
		if err := tx.Exec("DELETE FROM product_badges WHERE badge_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach badge: %w", err)
		}
		return tx.Delete(&badge).Error
	})
	if err != nil {
		return err
	}

	NewProductService(s.db).InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditDelete, "badge", id, nil)
	return nil
}

// ListServices returns workshop services; activeOnly hides disabled ones
func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	services := []models.Service{}
	q := s.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// GetServiceBySlug returns an active service
func (s *CatalogService) GetServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).Where("slug = ? AND active = ?", slug, true).First(&svc).Error; err != nil {
		return nil, notFound(err, "service")
	}
	return &svc, nil
}

func applyServiceInput(svc *models.Service, in ServiceInput) {
	if in.Name != nil {
		svc.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		svc.Slug = utils.Slugify(*in.Slug)
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.Price != nil {
		svc.Price = *in.Price
	}
	if in.DurationMinutes != nil {
		svc.DurationMinutes = *in.DurationMinutes
	}
	if in.SlotCapacity != nil {
		svc.SlotCapacity = *in.SlotCapacity
	}
	if in.Active != nil {
		svc.Active = *in.Active
	}
}

func (s *CatalogService) CreateService(ctx context.Context, admin *models.Admin, in ServiceInput) (*models.Service, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "name is required"}
	}

	svc := models.Service{DurationMinutes: 60, SlotCapacity: 1, Active: true}
	applyServiceInput(&svc, in)
	if svc.Slug == "" {
		svc.Slug = utils.Slugify(svc.Name)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := slugTaken(tx, &models.Service{}, svc.Slug, 0); err != nil {
			return err
		}
		if err := tx.Create(&svc).Error; err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		// Active has a true default, so an explicit false needs its own update
		if !svc.Active {
			return tx.Model(&svc).Update("active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordAudit(ctx, admin, AuditCreate, "service", svc.ID, map[string]interface{}{"slug": svc.Slug})
	return &svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, admin *models.Admin, id uint, in ServiceInput) (*models.Service, error) {
	var svc models.Service
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&svc, id).Error; err != nil {
			return notFound(err, "service")
		}
		applyServiceInput(&svc, in)
		if svc.Name == "" || svc.Slug == "" {
			return &DomainError{Code: "VALIDATION_ERROR", Message: "name and slug cannot be empty"}
		}
		if in.Slug != nil {
			if err := slugTaken(tx, &models.Service{}, svc.Slug, id); err != nil {
				return err
			}
		}
		return tx.Model(&svc).Updates(map[string]interface{}{
			"name":             svc.Name,
			"slug":             svc.Slug,
			"description":      svc.Description,
			"price":            svc.Price,
			"duration_minutes": svc.DurationMinutes,
			"slot_capacity":    svc.SlotCapacity,
			"active":           svc.Active,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	RecordAudit(ctx, admin, AuditUpdate, "service", id, nil)
	return &svc, nil
}

// DeleteService soft-deletes a service; existing bookings keep their reference
func (s *CatalogService) DeleteService(ctx context.Context, admin *models.Admin, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Service{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	RecordAudit(ctx, admin, AuditDelete, "service", id, nil)
	return nil
}
