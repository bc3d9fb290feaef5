package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"gorm.io/gorm"
)

// DashboardStats is the admin landing page summary
type DashboardStats struct {
	OrdersByStatus   map[models.OrderStatus]int64 `json:"orders_by_status"`
	OrdersToday      int64                        `json:"orders_today"`
	Revenue          int64                        `json:"revenue"`
	RevenueLast30    int64                        `json:"revenue_last_30_days"`
	BookingsToday    int64                        `json:"bookings_today"`
	UpcomingBookings int64                        `json:"upcoming_bookings"`
	NewLeads         int64                        `json:"new_leads"`
	LowStock         []models.Product             `json:"low_stock"`
	RecentOrders     []models.Order               `json:"recent_orders"`
}

// DashboardService computes dashboard aggregates
type DashboardService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

func NewDashboardService(db *gorm.DB, cfg *config.Config) *DashboardService {
	return &DashboardService{db: db, cfg: cfg, now: time.Now}
}

// WithClock replaces the clock (primarily for testing)
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Stats runs the dashboard queries. Revenue counts confirmed, shipped and delivered orders.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := s.now().In(ShopLocation)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, ShopLocation)
	today := startOfDay.Format(dateLayout)

	stats := &DashboardStats{
		OrdersByStatus: map[models.OrderStatus]int64{},
		LowStock:       []models.Product{},
		RecentOrders:   []models.Order{},
	}

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	if err := db.Model(&models.Order{}).Where("created_at >= ?", startOfDay.Local()).Count(&stats.OrdersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}

	revenue := db.Model(&models.Order{}).Select("COALESCE(SUM(total), 0)").Where("status IN ?", models.RevenueStatuses())
	if err := revenue.Scan(&stats.Revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	err := db.Model(&models.Order{}).Select("COALESCE(SUM(total), 0)").
		Where("status IN ? AND created_at >= ?", models.RevenueStatuses(), startOfDay.AddDate(0, 0, -29).Local()).
		Scan(&stats.RevenueLast30).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum recent revenue: %w", err)
	}

	held := []models.BookingStatus{models.BookingPending, models.BookingConfirmed}
	if err := db.Model(&models.Booking{}).Where("date = ? AND status IN ?", today, held).Count(&stats.BookingsToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's bookings: %w", err)
	}
	if err := db.Model(&models.Booking{}).Where("date >= ? AND status IN ?", today, held).Count(&stats.UpcomingBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count upcoming bookings: %w", err)
	}

	if err := db.Model(&models.Lead{}).Where("status = ?", models.LeadNew).Count(&stats.NewLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	err = db.Where("stock <= ?", s.cfg.LowStockThreshold).
		Order("stock ASC, name ASC").Limit(10).
		Find(&stats.LowStock).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}

	if err := db.Order("created_at DESC, id DESC").Limit(5).Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	return stats, nil
}
