package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name  string
		model interface{ TableName() string }
		want  string
	}{
		{"customer", Customer{}, "customers"},
		{"admin", Admin{}, "admins"},
		{"badge", Badge{}, "badges"},
		{"product", Product{}, "products"},
		{"service", Service{}, "services"},
		{"booking", Booking{}, "bookings"},
		{"order", Order{}, "orders"},
		{"order item", OrderItem{}, "order_items"},
		{"order note", OrderNote{}, "order_notes"},
		{"lead", Lead{}, "leads"},
		{"audit log", AuditLog{}, "audit_logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.model.TableName())
		})
	}
}

func TestAllModels(t *testing.T) {
	assert.Len(t, All(), 11)
}

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderNew, OrderConfirmed, true},
		{OrderNew, OrderCancelled, true},
		{OrderNew, OrderStale, false},
		{OrderNew, OrderShipped, false},
		{OrderConfirmed, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderStale, OrderConfirmed, true},
		{OrderStale, OrderCancelled, true},
		{OrderCancelled, OrderNew, false},
		{OrderStatus("BOGUS"), OrderConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionOrder(tt.from, tt.to))
		})
	}
}

func TestOrderStatusHelpers(t *testing.T) {
	assert.True(t, OrderStale.Valid())
	assert.False(t, OrderStatus("new").Valid(), "statuses are upper-case")

	for _, s := range RevenueStatuses() {
		assert.True(t, s.CountsAsRevenue())
	}
	assert.False(t, OrderNew.CountsAsRevenue())
	assert.False(t, OrderStale.CountsAsRevenue())
	assert.False(t, OrderCancelled.CountsAsRevenue())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentCOD.Valid())
	assert.True(t, PaymentBankTransfer.Valid())
	assert.False(t, PaymentMethod("CARD").Valid())
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, CanTransitionBooking(BookingPending, BookingConfirmed))
	assert.True(t, CanTransitionBooking(BookingConfirmed, BookingNoShow))
	assert.False(t, CanTransitionBooking(BookingPending, BookingCompleted))
	assert.False(t, CanTransitionBooking(BookingCancelled, BookingPending))

	assert.True(t, BookingPending.HoldsSlot())
	assert.True(t, BookingConfirmed.HoldsSlot())
	assert.False(t, BookingCancelled.HoldsSlot())
	assert.False(t, BookingNoShow.HoldsSlot())
}

func TestLeadStatus(t *testing.T) {
	assert.True(t, CanTransitionLead(LeadNew, LeadContacted))
	assert.True(t, CanTransitionLead(LeadNew, LeadClosed))
	assert.False(t, CanTransitionLead(LeadClosed, LeadNew))
	assert.False(t, LeadStatus("SPAM").Valid())
}

func TestProductInStock(t *testing.T) {
	p := Product{Stock: 3}
	assert.True(t, p.InStock(3))
	assert.False(t, p.InStock(4))
	assert.False(t, p.InStock(0))
}

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role    Role
		allowed []Permission
		denied  []Permission
	}{
		{
			role:    RoleStaff,
			allowed: []Permission{PermDashboardRead, PermOrdersManage, PermBookingsManage, PermLeadsManage},
			denied:  []Permission{PermProductsManage, PermCatalogManage, PermExportsRead, PermAdminsManage},
		},
		{
			role:    RoleManager,
			allowed: []Permission{PermDashboardRead, PermOrdersManage, PermProductsManage, PermCatalogManage, PermExportsRead},
			denied:  []Permission{PermAdminsManage},
		},
		{
			role:    RoleOwner,
			allowed: []Permission{PermDashboardRead, PermProductsManage, PermExportsRead, PermAdminsManage},
		},
		{
			role:   Role("GUEST"),
			denied: []Permission{PermDashboardRead},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			for _, p := range tt.allowed {
				assert.True(t, tt.role.Can(p), "%s should have %s", tt.role, p)
			}
			for _, p := range tt.denied {
				assert.False(t, tt.role.Can(p), "%s should not have %s", tt.role, p)
			}
		})
	}

	assert.Len(t, RoleStaff.Permissions(), 4)
	assert.Len(t, RoleManager.Permissions(), 7)
	assert.Len(t, RoleOwner.Permissions(), 8)
	assert.Nil(t, Role("GUEST").Permissions())
}

func TestAdminCan(t *testing.T) {
	admin := Admin{Role: RoleOwner, Active: true}
	assert.True(t, admin.Can(PermAdminsManage))

	admin.Active = false
	assert.False(t, admin.Can(PermDashboardRead), "inactive admins have no permissions")
}
