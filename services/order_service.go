package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutItem is one cart line
type CheckoutItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=100"`
}

// CheckoutInput is the storefront checkout request
type CheckoutInput struct {
	Items           []CheckoutItem       `json:"items" binding:"required,min=1,max=50,dive"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	ShippingName    string               `json:"shipping_name" binding:"required,max=100"`
	ShippingPhone   string               `json:"shipping_phone" binding:"required,max=20"`
	ShippingAddress string               `json:"shipping_address" binding:"required,max=300"`
	ShippingCity    string               `json:"shipping_city" binding:"required,max=60"`
	Notes           string               `json:"notes" binding:"max=1000"`
}

// OrderFilter narrows the dashboard order list. From and To are inclusive shop-local dates.
type OrderFilter struct {
	Status models.OrderStatus
	From   string
	To     string
	Query  string // order number or customer name
	Page   utils.Page
}

// OrderService handles checkout and the order lifecycle
type OrderService struct {
	db    *gorm.DB
	cfg   *config.Config
	cache CacheService
	now   func() time.Time
}

func NewOrderService(db *gorm.DB, cfg *config.Config) *OrderService {
	return &OrderService{db: db, cfg: cfg, cache: GetCacheService(), now: time.Now}
}

// WithClock replaces the clock (primarily for testing)
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SA-%s-%s", now.In(ShopLocation).Format("060102"), suffix)
}

// ShippingFor returns the shipping fee for a subtotal
func (s *OrderService) ShippingFor(subtotal int64) int64 {
	if s.cfg.FreeShippingThreshold > 0 && subtotal >= s.cfg.FreeShippingThreshold {
		return 0
	}
	return s.cfg.ShippingFee
}

// mergeItems folds duplicate product lines and orders them by product id so
// concurrent checkouts decrement rows in the same order
func mergeItems(items []CheckoutItem) []CheckoutItem {
	qty := make(map[uint]int, len(items))
	for _, it := range items {
		qty[it.ProductID] += it.Quantity
	}
	merged := make([]CheckoutItem, 0, len(qty))
	for id, q := range qty {
		merged = append(merged, CheckoutItem{ProductID: id, Quantity: q})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged
}

// Checkout places an order. Stock for every line is decremented with a conditional
// UPDATE in the same transaction as the order insert; any short line rolls back everything.
func (s *OrderService) Checkout(ctx context.Context, customer *models.Customer, in CheckoutInput) (*models.Order, error) {
	items := mergeItems(in.Items)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCOD
	}
	if !in.PaymentMethod.Valid() {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("unsupported payment method %q", in.PaymentMethod)}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, len(items))
		for i, it := range items {
			ids[i] = it.ProductID
		}

		var products []models.Product
		if err := tx.Where("id IN ? AND published = ?", ids, true).Find(&products).Error; err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		var subtotal int64
		lines := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			product, ok := byID[it.ProductID]
			if !ok {
				return detail(ErrProductUnavailable, "product %d", it.ProductID)
			}

			if !product.InStock(it.Quantity) {
				return detail(ErrInsufficientStock, "only %d of %q left", product.Stock, product.Name)
			}
			// the read above may be stale; the conditional decrement is authoritative
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return detail(ErrInsufficientStock, "only %d of %q left", product.Stock, product.Name)
			}

			lineTotal := product.Price * int64(it.Quantity)
			subtotal += lineTotal
			lines = append(lines, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    it.Quantity,
				LineTotal:   lineTotal,
			})
		}

		shipping := s.ShippingFor(subtotal)
		order = models.Order{
			OrderNumber:     newOrderNumber(s.now()),
			CustomerID:      customer.ID,
			Status:          models.OrderNew,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   models.PaymentUnpaid,
			Subtotal:        subtotal,
			ShippingFee:     shipping,
			Total:           subtotal + shipping,
			ShippingName:    strings.TrimSpace(in.ShippingName),
			ShippingPhone:   strings.TrimSpace(in.ShippingPhone),
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			ShippingCity:    strings.TrimSpace(in.ShippingCity),
			Notes:           strings.TrimSpace(in.Notes),
			Items:           lines,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Customer = *customer
	NewProductService(s.db).InvalidateCatalog(ctx)

	notifier := NewNotificationService(s.cfg)
	order.WhatsAppLink = notifier.ShopWhatsAppLink(OrderWhatsAppMessage(&order))
	_ = notifier.OrderPlaced(ctx, &order)
	publishEvent(ctx, EventOrderCreated, order.OrderNumber, map[string]interface{}{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total":       order.Total,
		"items":       len(order.Items),
	})

	zap.L().Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", customer.ID),
		zap.Int64("total", order.Total),
	)
	return &order, nil
}

// ListForCustomer returns the customer's orders, newest first
func (s *OrderService) ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetForCustomer returns one of the customer's orders
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&order).Error
	if err != nil {
		return nil, notFound(err, "order")
	}
	order.WhatsAppLink = NewNotificationService(s.cfg).ShopWhatsAppLink(OrderWhatsAppMessage(&order))
	return &order, nil
}

// CancelForCustomer lets a customer cancel an order nobody has confirmed yet
func (s *OrderService) CancelForCustomer(ctx context.Context, customer *models.Customer, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("id = ? AND customer_id = ?", id, customer.ID).First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	if order.Status != models.OrderNew && order.Status != models.OrderStale {
		return nil, detail(ErrInvalidTransition, "order is already %s; contact the shop to cancel", strings.ToLower(string(order.Status)))
	}
	return s.transition(ctx, nil, &order, models.OrderCancelled)
}

// dayRange turns inclusive YYYY-MM-DD bounds into a half-open time range in shop time
func dayRange(from, to string) (start, end *time.Time, err error) {
	if from != "" {
		t, perr := time.ParseInLocation(dateLayout, from, ShopLocation)
		if perr != nil {
			return nil, nil, &DomainError{Code: "VALIDATION_ERROR", Message: "from must be YYYY-MM-DD"}
		}
		start = &t
	}
	if to != "" {
		t, perr := time.ParseInLocation(dateLayout, to, ShopLocation)
		if perr != nil {
			return nil, nil, &DomainError{Code: "VALIDATION_ERROR", Message: "to must be YYYY-MM-DD"}
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, &DomainError{Code: "VALIDATION_ERROR", Message: "from must not be after to"}
	}
	return start, end, nil
}

func (s *OrderService) filtered(ctx context.Context, f OrderFilter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	start, end, err := dayRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	if start != nil {
		q = q.Where("orders.created_at >= ?", start.Local())
	}
	if end != nil {
		q = q.Where("orders.created_at < ?", end.Local())
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(orders.order_number) LIKE ? OR LOWER(orders.shipping_name) LIKE ? OR orders.shipping_phone LIKE ?", like, like, like)
	}
	return q, nil
}

// List serves the dashboard order table
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := []models.Order{}
	err = q.Preload("Customer").Preload("Items").
		Order("orders.created_at DESC, orders.id DESC").
		Offset(f.Page.Offset()).Limit(f.Page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	for i := range orders {
		orders[i].WhatsAppLink = utils.WhatsAppLink(orders[i].ShippingPhone, "")
	}
	return orders, total, nil
}

// Get returns any order with its items and customer
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Customer").Preload("Items").First(&order, id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	order.WhatsAppLink = utils.WhatsAppLink(order.ShippingPhone,
		fmt.Sprintf("Assalam o Alaikum %s, this is Shahzaib Autos about your order %s.", order.ShippingName, order.OrderNumber))
	return &order, nil
}

// UpdateStatus moves an order along its lifecycle on behalf of an admin
func (s *OrderService) UpdateStatus(ctx context.Context, admin *models.Admin, id uint, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, detail(ErrInvalidTransition, "unknown status %q", to)
	}
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return s.transition(ctx, admin, &order, to)
}

// holdsStock reports whether an order in status still has its stock reserved
func holdsStock(status models.OrderStatus) bool {
	return status == models.OrderNew || status == models.OrderConfirmed || status == models.OrderStale
}

func restoreStock(tx *gorm.DB, orderID uint) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	for _, it := range items {
		err := tx.Model(&models.Product{}).Unscoped().
			Where("id = ?", it.ProductID).
			Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}

// transition applies from->to with a compare-and-set on the current status.
// Cancelling puts the reserved stock back in the same transaction.
func (s *OrderService) transition(ctx context.Context, admin *models.Admin, order *models.Order, to models.OrderStatus) (*models.Order, error) {
	from := order.Status
	if !models.CanTransitionOrder(from, to) {
		return nil, detail(ErrInvalidTransition, "%s -> %s", from, to)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("failed to update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return detail(ErrInvalidTransition, "order changed concurrently")
		}
		if to == models.OrderCancelled && holdsStock(from) {
			return restoreStock(tx, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if to == models.OrderCancelled {
		NewProductService(s.db).InvalidateCatalog(ctx)
	}

	updated, err := s.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if admin != nil {
		RecordAudit(ctx, admin, AuditStatusChange, "order", updated.ID, map[string]interface{}{"from": from, "to": to})
	}
	_ = NewNotificationService(s.cfg).OrderStatusChanged(ctx, updated)
	publishEvent(ctx, EventOrderStatusChanged, updated.OrderNumber, map[string]interface{}{
		"order_id": updated.ID, "from": from, "to": to,
	})
	return updated, nil
}

// SetPaymentStatus records whether an order has been paid
func (s *OrderService) SetPaymentStatus(ctx context.Context, admin *models.Admin, id uint, status models.PaymentStatus) (*models.Order, error) {
	if status != models.PaymentPaid && status != models.PaymentUnpaid {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("unknown payment status %q", status)}
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	RecordAudit(ctx, admin, AuditUpdate, "order", id, map[string]interface{}{"payment_status": status})
	return s.Get(ctx, id)
}

// Delete soft-deletes an order, returning reserved stock first
func (s *OrderService) Delete(ctx context.Context, admin *models.Admin, id uint) error {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err, "order")
		}
		if holdsStock(order.Status) {
			if err := restoreStock(tx, order.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return err
	}

	if holdsStock(order.Status) {
		NewProductService(s.db).InvalidateCatalog(ctx)
	}
	RecordAudit(ctx, admin, AuditDelete, "order", id, map[string]interface{}{"order_number": order.OrderNumber, "status": order.Status})
	return nil
}

// ListNotes returns the internal notes on an order, oldest first
func (s *OrderService) ListNotes(ctx context.Context, orderID uint) ([]models.OrderNote, error) {
	if err := s.db.WithContext(ctx).Select("id").First(&models.Order{}, orderID).Error; err != nil {
		return nil, notFound(err, "order")
	}
	notes := []models.OrderNote{}
	err := s.db.WithContext(ctx).Preload("Admin").
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// AddNote attaches an internal note to an order
func (s *OrderService) AddNote(ctx context.Context, admin *models.Admin, orderID uint, text string) (*models.OrderNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "note text is required"}
	}
	if err := s.db.WithContext(ctx).Select("id").First(&models.Order{}, orderID).Error; err != nil {
		return nil, notFound(err, "order")
	}

	note := models.OrderNote{OrderID: orderID, AdminID: admin.ID, Text: text}
	if err := s.db.WithContext(ctx).Omit("Order", "Admin").Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	note.Admin = *admin
	return &note, nil
}
