package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogGenerationKey = "catalog:generation"
	catalogCacheTTL      = 5 * time.Minute
	productImagePrefix   = "products"
)

// ProductFilter narrows catalog listings
type ProductFilter struct {
	Category string
	Query    string
	Badge    string // badge slug
	// LowStock lists products at or below the threshold (admin only)
	LowStock  *int
	Published *bool
	Page      utils.Page
}

// ProductPage is one page of products with the total match count
type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

// ProductInput carries the editable product fields. Nil pointers leave a field unchanged on update.
type ProductInput struct {
	Name           *string `json:"name"`
	Slug           *string `json:"slug"`
	SKU            *string `json:"sku"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	Brand          *string `json:"brand"`
	Price          *int64  `json:"price" binding:"omitempty,min=0"`
	CompareAtPrice *int64  `json:"compare_at_price" binding:"omitempty,min=0"`
	Stock          *int    `json:"stock" binding:"omitempty,min=0"`
	Published      *bool   `json:"published"`
	BadgeIDs       []uint  `json:"badge_ids"`
}

// ProductService is the catalog: storefront reads (cached) and dashboard writes
type ProductService struct {
	db     *gorm.DB
	cache  CacheService
	images ImageService
}

// NewProductService uses the global cache and image services
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db, cache: GetCacheService(), images: GetImageService()}
}

func (s *ProductService) catalogGeneration(ctx context.Context) int64 {
	var gen int64
	if err := s.cache.GetJSON(ctx, catalogGenerationKey, &gen); err != nil && err != ErrCacheMiss {
		zap.L().Warn("catalog cache unavailable", zap.Error(err))
	}
	return gen
}

// InvalidateCatalog bumps the cache generation so every cached listing is ignored
func (s *ProductService) InvalidateCatalog(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, catalogGenerationKey); err != nil {
		zap.L().Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *ProductService) filtered(ctx context.Context, f ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if f.Published != nil {
		q = q.Where("products.published = ?", *f.Published)
	}
	if f.Category != "" {
		q = q.Where("products.category = ?", f.Category)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ? OR LOWER(products.brand) LIKE ?", like, like, like)
	}
	if f.Badge != "" {
		q = q.Where("products.id IN (?)",
			s.db.Table("product_badges").
				Select("product_badges.product_id").
				Joins("JOIN badges ON badges.id = product_badges.badge_id").
				Where("badges.slug = ? AND badges.deleted_at IS NULL", f.Badge))
	}
	if f.LowStock != nil {
		q = q.Where("products.stock <= ?", *f.LowStock)
	}
	return q
}

func (s *ProductService) list(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	if f.Page.Size == 0 {
		f.Page = utils.Page{Number: 1, Size: utils.DefaultPageSize}
	}

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	items := []models.Product{}
	err := s.filtered(ctx, f).
		Preload("Badges").
		Order("products.created_at DESC, products.id DESC").
		Offset(f.Page.Offset()).
		Limit(f.Page.Size).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.AttachImageURLs(ctx, items)
	return &ProductPage{Items: items, Total: total}, nil
}

// ListPublished serves the storefront catalog through the cache
func (s *ProductService) ListPublished(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	published := true
	f.Published = &published
	f.LowStock = nil

	key := fmt.Sprintf("catalog:v%d:%s|%s|%s|%d|%d",
		s.catalogGeneration(ctx), f.Category, strings.ToLower(strings.TrimSpace(f.Query)), f.Badge, f.Page.Number, f.Page.Size)

	var cached ProductPage
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	page, err := s.list(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, page, catalogCacheTTL); err != nil {
		zap.L().Warn("failed to cache catalog page", zap.Error(err))
	}
	return page, nil
}

// List serves the dashboard product table, published or not
func (s *ProductService) List(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	return s.list(ctx, f)
}

// GetPublishedBySlug returns one storefront product
func (s *ProductService) GetPublishedBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Preload("Badges").
		Where("slug = ? AND published = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, notFound(err, "product")
	}
	s.AttachImageURL(ctx, &product)
	return &product, nil
}

// Get returns any product by id
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Badges").First(&product, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	s.AttachImageURL(ctx, &product)
	return &product, nil
}

// AttachImageURL fills the computed ImageURL from the stored key
func (s *ProductService) AttachImageURL(ctx context.Context, p *models.Product) {
	if p.ImageS3Key == nil || *p.ImageS3Key == "" || s.images == nil {
		return
	}
	url, err := s.images.GetImageURL(ctx, *p.ImageS3Key)
	if err != nil {
		zap.L().Warn("failed to build product image URL", zap.Uint("product_id", p.ID), zap.Error(err))
		return
	}
	p.ImageURL = &url
}

// AttachImageURLs fills ImageURL for every product in place
func (s *ProductService) AttachImageURLs(ctx context.Context, products []models.Product) {
	for i := range products {
		s.AttachImageURL(ctx, &products[i])
	}
}

func (s *ProductService) ensureSlugFree(tx *gorm.DB, slug string, exceptID uint) error {
	var count int64
	q := tx.Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
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

func (s *ProductService) loadBadges(tx *gorm.DB, ids []uint) ([]models.Badge, error) {
	badges := []models.Badge{}
	if len(ids) == 0 {
		return badges, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}
	if len(badges) != len(uniqueIDs(ids)) {
		return nil, detail(ErrNotFound, "one or more badges do not exist")
	}
	return badges, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Create adds a product. Name and Price are required; the slug defaults to the slugified name.
func (s *ProductService) Create(ctx context.Context, admin *models.Admin, in ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Price == nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "name and price are required"}
	}

	product := models.Product{Name: strings.TrimSpace(*in.Name), Price: *in.Price}
	applyProductInput(&product, in)
	if product.Slug == "" {
		product.Slug = utils.Slugify(product.Name)
	}
	if product.Slug == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "name must contain letters or digits"}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureSlugFree(tx, product.Slug, 0); err != nil {
			return err
		}
		badges, err := s.loadBadges(tx, in.BadgeIDs)
		if err != nil {
			return err
		}
		product.Badges = badges
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditCreate, "product", product.ID, map[string]interface{}{"name": product.Name, "slug": product.Slug})
	return s.Get(ctx, product.ID)
}

func applyProductInput(p *models.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		p.Slug = utils.Slugify(*in.Slug)
	}
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CompareAtPrice != nil {
		if *in.CompareAtPrice == 0 {
			p.CompareAtPrice = nil
		} else {
			v := *in.CompareAtPrice
			p.CompareAtPrice = &v
		}
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
}

// Update applies the non-nil fields of in. A non-nil BadgeIDs replaces the badge set.
func (s *ProductService) Update(ctx context.Context, admin *models.Admin, id uint, in ProductInput) (*models.Product, error) {
	var changed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err, "product")
		}

		applyProductInput(&product, in)
		if product.Name == "" || product.Slug == "" {
			return &DomainError{Code: "VALIDATION_ERROR", Message: "name and slug cannot be empty"}
		}
		if in.Slug != nil {
			if err := s.ensureSlugFree(tx, product.Slug, product.ID); err != nil {
				return err
			}
		}

		// write only requested columns; stock read above may already be stale
		updates := productUpdates(&product, in)
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}

		if in.BadgeIDs != nil {
			badges, err := s.loadBadges(tx, in.BadgeIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&product).Association("Badges").Replace(badges); err != nil {
				return fmt.Errorf("failed to update badges: %w", err)
			}
			changed = append(changed, "badges")
		}
		changed = append(changed, changedProductFields(in)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditUpdate, "product", id, map[string]interface{}{"fields": changed})
	return s.Get(ctx, id)
}

// productUpdates maps the fields set in in to their column values on p
func productUpdates(p *models.Product, in ProductInput) map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(ok bool, column string, value interface{}) {
		if ok {
			updates[column] = value
		}
	}
	set(in.Name != nil, "name", p.Name)
	set(in.Slug != nil, "slug", p.Slug)
	set(in.SKU != nil, "sku", p.SKU)
	set(in.Description != nil, "description", p.Description)
	set(in.Category != nil, "category", p.Category)
	set(in.Brand != nil, "brand", p.Brand)
	set(in.Price != nil, "price", p.Price)
	set(in.CompareAtPrice != nil, "compare_at_price", p.CompareAtPrice)
	set(in.Stock != nil, "stock", p.Stock)
	set(in.Published != nil, "published", p.Published)
	return updates
}

func changedProductFields(in ProductInput) []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(in.Name != nil, "name")
	add(in.Slug != nil, "slug")
	add(in.SKU != nil, "sku")
	add(in.Description != nil, "description")
	add(in.Category != nil, "category")
	add(in.Brand != nil, "brand")
	add(in.Price != nil, "price")
	add(in.CompareAtPrice != nil, "compare_at_price")
	add(in.Stock != nil, "stock")
	add(in.Published != nil, "published")
	return fields
}

// Delete soft-deletes a product and removes its image
func (s *ProductService) Delete(ctx context.Context, admin *models.Admin, id uint) error {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return notFound(err, "product")
	}
	if err := s.db.WithContext(ctx).Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if product.ImageS3Key != nil && s.images != nil {
		if err := s.images.DeleteImage(ctx, *product.ImageS3Key); err != nil {
			zap.L().Warn("failed to delete product image", zap.Uint("product_id", id), zap.Error(err))
		}
	}

	s.InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditDelete, "product", id, map[string]interface{}{"slug": product.Slug})
	return nil
}

// SetImage uploads a new product image and replaces the previous one
func (s *ProductService) SetImage(ctx context.Context, admin *models.Admin, id uint, fileHeader *multipart.FileHeader) (*models.Product, error) {
	if s.images == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, notFound(err, "product")
	}

	key, err := s.images.UploadImage(ctx, fileHeader, productImagePrefix)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&product).Update("image_s3_key", key).Error; err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			zap.L().Warn("failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save image key: %w", err)
	}

	if product.ImageS3Key != nil && *product.ImageS3Key != key {
		if err := s.images.DeleteImage(ctx, *product.ImageS3Key); err != nil {
			zap.L().Warn("failed to delete previous image", zap.String("key", *product.ImageS3Key), zap.Error(err))
		}
	}

	s.InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditUpdate, "product", id, map[string]interface{}{"fields": []string{"image"}})
	return s.Get(ctx, id)
}

// AdjustStock adds delta (which may be negative) to the stock level. Stock never goes below zero.
func (s *ProductService) AdjustStock(ctx context.Context, admin *models.Admin, id uint, delta int) (*models.Product, error) {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, detail(ErrInsufficientStock, "stock cannot go below zero")
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalog(ctx)
	RecordAudit(ctx, admin, AuditUpdate, "product", id, map[string]interface{}{"stock_delta": delta, "stock": product.Stock})
	publishEvent(ctx, EventProductStockChanged, fmt.Sprint(id), map[string]interface{}{"product_id": id, "stock": product.Stock, "delta": delta})
	return product, nil
}
