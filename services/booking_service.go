package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// ShopLocation is Pakistan Standard Time; Pakistan does not observe DST
var ShopLocation = time.FixedZone("PKT", 5*60*60)

// SlotAvailability is one bookable start time for a service on a day
type SlotAvailability struct {
	Slot      string `json:"slot"`
	Remaining int    `json:"remaining"`
	Available bool   `json:"available"`
}

// BookingInput is a customer's booking request
type BookingInput struct {
	ServiceID           uint   `json:"service_id" binding:"required"`
	Date                string `json:"date" binding:"required"`
	Slot                string `json:"slot" binding:"required"`
	VehicleMake         string `json:"vehicle_make" binding:"max=60"`
	VehicleModel        string `json:"vehicle_model" binding:"max=60"`
	VehicleRegistration string `json:"vehicle_registration" binding:"max=20"`
	Notes               string `json:"notes" binding:"max=1000"`
}

// BookingFilter narrows the dashboard booking list
type BookingFilter struct {
	Status models.BookingStatus
	Date   string
	Page   utils.Page
}

// BookingService handles slot availability and the booking lifecycle
type BookingService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

func NewBookingService(db *gorm.DB, cfg *config.Config) *BookingService {
	return &BookingService{db: db, cfg: cfg, now: time.Now}
}

// WithClock replaces the clock (primarily for testing)
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Slots lists the start times for a service: every DurationMinutes from opening,
// as long as the job finishes by closing time.
func (s *BookingService) Slots(svc *models.Service) []string {
	step := svc.DurationMinutes
	if step <= 0 {
		step = 60
	}
	open := s.cfg.BookingOpenHour * 60
	closing := s.cfg.BookingCloseHour * 60

	var slots []string
	for m := open; m+step <= closing; m += step {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// parseDay validates a YYYY-MM-DD booking date in shop time
func (s *BookingService) parseDay(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, ShopLocation)
	if err != nil {
		return time.Time{}, detail(ErrInvalidDate, "date must be YYYY-MM-DD")
	}

	today := s.today()
	if day.Before(today) {
		return time.Time{}, detail(ErrInvalidDate, "date is in the past")
	}
	if strings.EqualFold(day.Weekday().String(), s.cfg.BookingClosedWeekday) {
		return time.Time{}, detail(ErrInvalidDate, "the workshop is closed on %s", day.Weekday())
	}
	return day, nil
}

func (s *BookingService) today() time.Time {
	now := s.now().In(ShopLocation)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, ShopLocation)
}

// slotStarted reports whether slot on day is already in the past
func (s *BookingService) slotStarted(day time.Time, slot string) bool {
	t, err := time.ParseInLocation("15:04", slot, ShopLocation)
	if err != nil {
		return true
	}
	start := day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	return !start.After(s.now())
}

func (s *BookingService) heldCounts(tx *gorm.DB, serviceID uint, date string) (map[string]int, error) {
	var rows []struct {
		Slot  string
		Count int
	}
	err := tx.Model(&models.Booking{}).
		Select("slot, COUNT(*) AS count").
		Where("service_id = ? AND date = ? AND status IN ?", serviceID, date,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}).
		Group("slot").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Slot] = r.Count
	}
	return counts, nil
}

// Availability lists every slot of the day with its remaining capacity
func (s *BookingService) Availability(ctx context.Context, serviceSlug, date string) ([]SlotAvailability, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).Where("slug = ? AND active = ?", serviceSlug, true).First(&svc).Error; err != nil {
		return nil, notFound(err, "service")
	}

	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	counts, err := s.heldCounts(s.db.WithContext(ctx), svc.ID, date)
	if err != nil {
		return nil, err
	}

	slots := s.Slots(&svc)
	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		remaining := svc.SlotCapacity - counts[slot]
		if remaining < 0 || s.slotStarted(day, slot) {
			remaining = 0
		}
		out = append(out, SlotAvailability{Slot: slot, Remaining: remaining, Available: remaining > 0})
	}
	return out, nil
}

func newBookingReference() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Create books one slot. The capacity count and insert run in one transaction; on
// Postgres and MySQL the service row is locked first so concurrent bookings for the
// same service serialize.
func (s *BookingService) Create(ctx context.Context, customer *models.Customer, in BookingInput) (*models.Booking, error) {
	day, err := s.parseDay(in.Date)
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var svc models.Service
		q := tx
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&svc, in.ServiceID).Error; err != nil {
			return notFound(err, "service")
		}
		if !svc.Active {
			return ErrServiceInactive
		}

		if !containsSlot(s.Slots(&svc), in.Slot) {
			return detail(ErrInvalidSlot, "%s is not a %s slot", in.Slot, svc.Name)
		}
		if s.slotStarted(day, in.Slot) {
			return detail(ErrInvalidSlot, "%s on %s has already started", in.Slot, in.Date)
		}

		counts, err := s.heldCounts(tx, svc.ID, in.Date)
		if err != nil {
			return err
		}
		if counts[in.Slot] >= svc.SlotCapacity {
			return ErrSlotUnavailable
		}

		booking = models.Booking{
			Reference:           newBookingReference(),
			CustomerID:          customer.ID,
			ServiceID:           svc.ID,
			Date:                in.Date,
			Slot:                in.Slot,
			VehicleMake:         strings.TrimSpace(in.VehicleMake),
			VehicleModel:        strings.TrimSpace(in.VehicleModel),
			VehicleRegistration: strings.ToUpper(strings.TrimSpace(in.VehicleRegistration)),
			Notes:               strings.TrimSpace(in.Notes),
			Status:              models.BookingPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		booking.Service = svc
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Customer = *customer
	notifier := NewNotificationService(s.cfg)
	booking.WhatsAppLink = notifier.ShopWhatsAppLink(BookingWhatsAppMessage(&booking))
	_ = notifier.BookingPlaced(ctx, &booking)
	publishEvent(ctx, EventBookingCreated, booking.Reference, map[string]interface{}{
		"booking_id": booking.ID,
		"service_id": booking.ServiceID,
		"date":       booking.Date,
		"slot":       booking.Slot,
	})

	zap.L().Info("booking created",
		zap.String("reference", booking.Reference),
		zap.Uint("service_id", booking.ServiceID),
		zap.String("date", booking.Date),
		zap.String("slot", booking.Slot),
	)
	return &booking, nil
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

// ListForCustomer returns the customer's bookings, newest first
func (s *BookingService) ListForCustomer(ctx context.Context, customerID uint) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.db.WithContext(ctx).Preload("Service").
		Where("customer_id = ?", customerID).
		Order("date DESC, slot DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// CancelForCustomer cancels one of the customer's own pending or confirmed bookings
func (s *BookingService) CancelForCustomer(ctx context.Context, customer *models.Customer, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Where("id = ? AND customer_id = ?", id, customer.ID).First(&booking).Error; err != nil {
		return nil, notFound(err, "booking")
	}
	return s.transition(ctx, nil, &booking, models.BookingCancelled)
}

// List serves the dashboard booking table
func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings := []models.Booking{}
	err := q.Preload("Service").Preload("Customer").
		Order("date DESC, slot ASC").
		Offset(f.Page.Offset()).Limit(f.Page.Size).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	for i := range bookings {
		bookings[i].WhatsAppLink = utils.WhatsAppLink(bookings[i].Customer.Phone, "")
	}
	return bookings, total, nil
}

// UpdateStatus moves a booking along its lifecycle on behalf of an admin
func (s *BookingService) UpdateStatus(ctx context.Context, admin *models.Admin, id uint, to models.BookingStatus) (*models.Booking, error) {
	if !to.Valid() {
		return nil, detail(ErrInvalidTransition, "unknown status %q", to)
	}
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, notFound(err, "booking")
	}
	return s.transition(ctx, admin, &booking, to)
}

// transition applies from->to with a compare-and-set on the current status
func (s *BookingService) transition(ctx context.Context, admin *models.Admin, booking *models.Booking, to models.BookingStatus) (*models.Booking, error) {
	from := booking.Status
	if !models.CanTransitionBooking(from, to) {
		return nil, detail(ErrInvalidTransition, "%s -> %s", from, to)
	}

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, from).
		Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, detail(ErrInvalidTransition, "booking changed concurrently")
	}

	var updated models.Booking
	if err := s.db.WithContext(ctx).Preload("Service").Preload("Customer").First(&updated, booking.ID).Error; err != nil {
		return nil, notFound(err, "booking")
	}

	if admin != nil {
		RecordAudit(ctx, admin, AuditStatusChange, "booking", updated.ID, map[string]interface{}{"from": from, "to": to})
	}
	_ = NewNotificationService(s.cfg).BookingStatusChanged(ctx, &updated)
	publishEvent(ctx, EventBookingStatusChanged, updated.Reference, map[string]interface{}{
		"booking_id": updated.ID, "from": from, "to": to,
	})
	return &updated, nil
}

// Delete soft-deletes a booking
func (s *BookingService) Delete(ctx context.Context, admin *models.Admin, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	RecordAudit(ctx, admin, AuditDelete, "booking", id, nil)
	return nil
}
