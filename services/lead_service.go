package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"gorm.io/gorm"
)

// LeadInput is a storefront contact-form submission. Email or phone is required.
type LeadInput struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=20"`
	Subject string `json:"subject" binding:"max=150"`
	Message string `json:"message" binding:"required,max=5000"`
	Source  string `json:"source" binding:"omitempty,oneof=contact_form quote whatsapp"`
}

// LeadService captures enquiries and tracks follow-up
type LeadService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewLeadService(db *gorm.DB, cfg *config.Config) *LeadService {
	return &LeadService{db: db, cfg: cfg}
}

// Create stores a lead and forwards it to the shop inbox
func (s *LeadService) Create(ctx context.Context, in LeadInput) (*models.Lead, error) {
	if strings.TrimSpace(in.Email) == "" && strings.TrimSpace(in.Phone) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "email or phone is required"}
	}
	source := in.Source
	if source == "" {
		source = "contact_form"
	}

	lead := models.Lead{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Source:  source,
		Status:  models.LeadNew,
	}
	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	_ = NewNotificationService(s.cfg).LeadReceived(ctx, &lead)
	publishEvent(ctx, EventLeadCreated, fmt.Sprint(lead.ID), map[string]interface{}{"lead_id": lead.ID, "source": lead.Source})
	return &lead, nil
}

// List serves the dashboard lead table
func (s *LeadService) List(ctx context.Context, status models.LeadStatus, page utils.Page) ([]models.Lead, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Lead{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	leads := []models.Lead{}
	if err := q.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Size).Find(&leads).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, total, nil
}

// UpdateStatus moves a lead along NEW -> CONTACTED -> CLOSED
func (s *LeadService) UpdateStatus(ctx context.Context, admin *models.Admin, id uint, to models.LeadStatus) (*models.Lead, error) {
	if !to.Valid() {
		return nil, detail(ErrInvalidTransition, "unknown status %q", to)
	}

	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		return nil, notFound(err, "lead")
	}
	from := lead.Status
	if !models.CanTransitionLead(from, to) {
		return nil, detail(ErrInvalidTransition, "%s -> %s", from, to)
	}

	res := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ? AND status = ?", id, from).Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update lead: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, detail(ErrInvalidTransition, "lead changed concurrently")
	}
	lead.Status = to

	RecordAudit(ctx, admin, AuditStatusChange, "lead", id, map[string]interface{}{"from": from, "to": to})
	return &lead, nil
}

// Delete soft-deletes a lead
func (s *LeadService) Delete(ctx context.Context, admin *models.Admin, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	RecordAudit(ctx, admin, AuditDelete, "lead", id, nil)
	return nil
}
