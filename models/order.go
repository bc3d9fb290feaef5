package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of a storefront order
type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderStale     OrderStatus = "STALE"
)

// NEW -> STALE is deliberately absent: only the stale sweep performs it.
var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderNew:       {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:   {OrderDelivered: true},
	OrderDelivered: {},
	OrderCancelled: {},
	OrderStale:     {OrderConfirmed: true, OrderCancelled: true},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	_, ok := orderNext[s]
	return ok
}

// CanTransitionOrder reports whether an admin may move an order between statuses
func CanTransitionOrder(from, to OrderStatus) bool {
	return orderNext[from][to]
}

// CountsAsRevenue reports whether orders in this status contribute to sales figures
func (s OrderStatus) CountsAsRevenue() bool {
	return s == OrderConfirmed || s == OrderShipped || s == OrderDelivered
}

// RevenueStatuses lists the statuses for which CountsAsRevenue is true
func RevenueStatuses() []OrderStatus {
	return []OrderStatus{OrderConfirmed, OrderShipped, OrderDelivered}
}

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentBankTransfer
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// Order represents a storefront checkout
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OrderNumber     string         `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID      uint           `gorm:"not null;index" json:"customer_id"`
	Customer        Customer       `gorm:"foreignKey:CustomerID" json:"customer"`
	Status          OrderStatus    `gorm:"not null;default:'NEW';index:idx_order_status_created" json:"status"`
	PaymentMethod   PaymentMethod  `gorm:"not null;default:'COD'" json:"payment_method"`
	PaymentStatus   PaymentStatus  `gorm:"not null;default:'UNPAID'" json:"payment_status"`
	Subtotal        int64          `gorm:"not null" json:"subtotal"`
	ShippingFee     int64          `gorm:"not null;default:0" json:"shipping_fee"`
	Total           int64          `gorm:"not null" json:"total"`
	ShippingName    string         `gorm:"not null" json:"shipping_name"`
	ShippingPhone   string         `gorm:"not null" json:"shipping_phone"`
	ShippingAddress string         `gorm:"not null" json:"shipping_address"`
	ShippingCity    string         `gorm:"not null" json:"shipping_city"`
	Notes           string         `gorm:"type:text" json:"notes"`
	StaleAt         *time.Time     `json:"stale_at"` // set by the stale sweep
	Items           []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	WhatsAppLink    string         `gorm:"-" json:"whatsapp_link,omitempty"`
	CreatedAt       time.Time      `gorm:"index:idx_order_status_created" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product line of an order, priced at checkout time
type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"not null;index" json:"order_id"`
	ProductID   uint   `gorm:"not null;index" json:"product_id"`
	ProductName string `gorm:"not null" json:"product_name"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	Quantity    int    `gorm:"not null;check:quantity > 0" json:"quantity"`
	LineTotal   int64  `gorm:"not null" json:"line_total"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderNote is an internal dashboard note attached to an order
type OrderNote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`
	AdminID   uint           `gorm:"not null;index" json:"admin_id"`
	Admin     Admin          `gorm:"foreignKey:AdminID" json:"admin"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderNote model
func (OrderNote) TableName() string {
	return "order_notes"
}
