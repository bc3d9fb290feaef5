package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
)

// NotificationService formats shop notifications and hands them to email and WhatsApp links
type NotificationService struct {
	cfg   *config.Config
	email EmailService
}

// NewNotificationService uses the global email service
func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{cfg: cfg, email: GetEmailService()}
}

// ShopWhatsAppLink is the link a customer taps to message the shop about message
func (n *NotificationService) ShopWhatsAppLink(message string) string {
	return utils.WhatsAppLink(n.cfg.ShopWhatsAppNumber, message)
}

// OrderWhatsAppMessage is the prefilled text for an order confirmation chat
func OrderWhatsAppMessage(order *models.Order) string {
	return fmt.Sprintf("Assalam o Alaikum, I placed order %s (%s, %s). Please confirm.",
		order.OrderNumber, utils.FormatRupees(order.Total), order.PaymentMethod)
}

// BookingWhatsAppMessage is the prefilled text for a booking confirmation chat
func BookingWhatsAppMessage(booking *models.Booking) string {
	return fmt.Sprintf("Assalam o Alaikum, I booked %s on %s at %s (ref %s).",
		booking.Service.Name, booking.Date, booking.Slot, booking.Reference)
}

// send drops empty recipients and reports whether a message went out.
// A message with no recipients left is skipped without error.
func (n *NotificationService) send(ctx context.Context, msg EmailMessage) (bool, error) {
	var to []string
	for _, addr := range msg.To {
		if addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return false, nil
	}
	msg.To = to

	if err := n.email.Send(ctx, msg); err != nil {
		zap.L().Warn("failed to send notification", zap.String("subject", msg.Subject), zap.Error(err))
		return false, err
	}
	return true, nil
}

func orderLines(order *models.Order) string {
	var b strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s  %s\n", item.Quantity, item.ProductName, utils.FormatRupees(item.LineTotal))
	}
	fmt.Fprintf(&b, "  Subtotal  %s\n", utils.FormatRupees(order.Subtotal))
	fmt.Fprintf(&b, "  Shipping  %s\n", utils.FormatRupees(order.ShippingFee))
	fmt.Fprintf(&b, "  Total     %s\n", utils.FormatRupees(order.Total))
	return b.String()
}

// OrderPlaced emails the shop and the customer. order must have Items and Customer loaded.
func (n *NotificationService) OrderPlaced(ctx context.Context, order *models.Order) error {
	body := fmt.Sprintf("Order %s\n\n%s\nShip to: %s, %s, %s (%s)\nPayment: %s\n",
		order.OrderNumber, orderLines(order),
		order.ShippingName, order.ShippingAddress, order.ShippingCity, order.ShippingPhone,
		order.PaymentMethod)

	_, adminErr := n.send(ctx, EmailMessage{
		To:      []string{n.cfg.AdminNotifyEmail},
		Subject: fmt.Sprintf("New order %s (%s)", order.OrderNumber, utils.FormatRupees(order.Total)),
		Body:    body + fmt.Sprintf("\nDashboard: %s/admin/orders/%d\n", n.cfg.SiteURL, order.ID),
	})
	_, customerErr := n.send(ctx, EmailMessage{
		To:      []string{order.Customer.Email},
		Subject: fmt.Sprintf("Shahzaib Autos order %s received", order.OrderNumber),
		Body:    "Thank you for your order.\n\n" + body,
	})
	if adminErr != nil {
		return adminErr
	}
	return customerErr
}

// OrderStatusChanged tells the customer their order moved to a new status
func (n *NotificationService) OrderStatusChanged(ctx context.Context, order *models.Order) error {
	_, err := n.send(ctx, EmailMessage{
		To:      []string{order.Customer.Email},
		Subject: fmt.Sprintf("Order %s is now %s", order.OrderNumber, strings.ToLower(string(order.Status))),
		Body:    fmt.Sprintf("Your order %s is now %s.\n\nTrack it at %s/account/orders\n", order.OrderNumber, order.Status, n.cfg.SiteURL),
	})
	return err
}

// BookingPlaced emails the shop and the customer. booking must have Service and Customer loaded.
func (n *NotificationService) BookingPlaced(ctx context.Context, booking *models.Booking) error {
	body := fmt.Sprintf("Booking %s\n\nService: %s\nDate: %s %s\nVehicle: %s %s %s\nNotes: %s\n",
		booking.Reference, booking.Service.Name, booking.Date, booking.Slot,
		booking.VehicleMake, booking.VehicleModel, booking.VehicleRegistration, booking.Notes)

	_, adminErr := n.send(ctx, EmailMessage{
		To:      []string{n.cfg.AdminNotifyEmail},
		Subject: fmt.Sprintf("New booking %s: %s on %s %s", booking.Reference, booking.Service.Name, booking.Date, booking.Slot),
		Body:    body + fmt.Sprintf("Customer: %s (%s)\n", booking.Customer.Name, booking.Customer.Phone),
	})
	_, customerErr := n.send(ctx, EmailMessage{
		To:      []string{booking.Customer.Email},
		Subject: fmt.Sprintf("Shahzaib Autos booking %s received", booking.Reference),
		Body:    "We have received your booking and will confirm it shortly.\n\n" + body,
	})
	if adminErr != nil {
		return adminErr
	}
	return customerErr
}

// BookingStatusChanged tells the customer their booking moved to a new status
func (n *NotificationService) BookingStatusChanged(ctx context.Context, booking *models.Booking) error {
	_, err := n.send(ctx, EmailMessage{
		To:      []string{booking.Customer.Email},
		Subject: fmt.Sprintf("Booking %s is now %s", booking.Reference, strings.ToLower(string(booking.Status))),
		Body:    fmt.Sprintf("Your %s booking on %s at %s is now %s.\n", booking.Service.Name, booking.Date, booking.Slot, booking.Status),
	})
	return err
}

// LeadReceived forwards a contact form submission to the shop
func (n *NotificationService) LeadReceived(ctx context.Context, lead *models.Lead) error {
	subject := lead.Subject
	if subject == "" {
		subject = "Website enquiry"
	}
	_, err := n.send(ctx, EmailMessage{
		To:      []string{n.cfg.AdminNotifyEmail},
		Subject: fmt.Sprintf("Lead from %s: %s", lead.Name, subject),
		Body: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nSource: %s\n\n%s\n\nReply on WhatsApp: %s\n",
			lead.Name, lead.Email, lead.Phone, lead.Source, lead.Message,
			utils.WhatsAppLink(lead.Phone, "")),
	})
	return err
}

// StaleOrdersSummary sends the single summary for one sweep run and reports whether it went out
func (n *NotificationService) StaleOrdersSummary(ctx context.Context, orders []models.Order) (bool, error) {
	if len(orders) == 0 {
		return false, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d order(s) have been NEW for more than %s and were marked STALE:\n\n", len(orders), n.cfg.StaleOrderAge)
	for _, o := range orders {
		fmt.Fprintf(&b, "  %s  %s  %s  placed %s\n",
			o.OrderNumber, o.ShippingName, utils.FormatRupees(o.Total), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "\nReview them at %s/admin/orders?status=STALE\n", n.cfg.SiteURL)

	return n.send(ctx, EmailMessage{
		To:      []string{n.cfg.AdminNotifyEmail},
		Subject: fmt.Sprintf("%d stale order(s) need attention", len(orders)),
		Body:    b.String(),
	})
}
