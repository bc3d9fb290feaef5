package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"go.uber.org/zap"
)

const staleSweepLockKey = "lock:stale-order-sweep"

// SweepResult reports one run of the stale-order sweep
type SweepResult struct {
	Marked       int      `json:"marked"`
	OrderNumbers []string `json:"order_numbers"`
	Notified     bool     `json:"notified"`
	// Skipped is true when another replica holds the sweep lock
	Skipped bool `json:"skipped"`
}

// SweepStale marks every NEW order older than StaleOrderAge as STALE with one
// set-based UPDATE and sends a single summary. The UPDATE stamps stale_at with this
// run's timestamp, so each run reports exactly the rows it changed and a second
// run changes nothing. With useLock, replicas share a cache lock and only one
// sweeps per interval.
func (s *OrderService) SweepStale(ctx context.Context, admin *models.Admin, useLock bool) (*SweepResult, error) {
	if useLock {
		ttl := s.cfg.SweepInterval / 2
		if ttl < 30*time.Second {
			ttl = 30 * time.Second
		}
		acquired, err := s.cache.AcquireLock(ctx, staleSweepLockKey, ttl)
		if err != nil {
			zap.L().Warn("sweep lock unavailable, sweeping anyway", zap.Error(err))
		} else if !acquired {
			return &SweepResult{Skipped: true, OrderNumbers: []string{}}, nil
		}
	}

	now := s.now().Truncate(time.Millisecond)
	cutoff := now.Add(-s.cfg.StaleOrderAge)

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderNew, cutoff).
		Updates(map[string]interface{}{"status": models.OrderStale, "stale_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark stale orders: %w", res.Error)
	}

	result := &SweepResult{OrderNumbers: []string{}}
	if res.RowsAffected == 0 {
		return result, nil
	}

	var marked []models.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND stale_at = ?", models.OrderStale, now).
		Order("created_at ASC").
		Find(&marked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stale orders: %w", err)
	}

	result.Marked = len(marked)
	for _, o := range marked {
		result.OrderNumbers = append(result.OrderNumbers, o.OrderNumber)
	}

	if sent, err := NewNotificationService(s.cfg).StaleOrdersSummary(ctx, marked); err == nil {
		result.Notified = sent
	}

	var adminID *uint
	if admin != nil {
		adminID = &admin.ID
	}
	recordAudit(ctx, adminID, AuditSweep, "order", "", map[string]interface{}{
		"marked":        result.Marked,
		"order_numbers": result.OrderNumbers,
	})
	publishEvent(ctx, EventOrdersMarkedStale, now.Format(time.RFC3339), map[string]interface{}{
		"order_numbers": result.OrderNumbers,
	})

	zap.L().Info("stale order sweep", zap.Int("marked", result.Marked), zap.Bool("notified", result.Notified))
	return result, nil
}

// Scheduler runs the stale-order sweep on a ticker until its context ends
type Scheduler struct {
	// Orders builds the service for each run so config and db swaps are picked up
	Orders   func() *OrderService
	Interval time.Duration

	mu sync.Mutex
}

// Run sweeps immediately and then every Interval
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.Interval)
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// a slow sweep must not overlap the next tick
	if !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()

	if _, err := s.Orders().SweepStale(ctx, nil, true); err != nil {
		zap.L().Error("stale order sweep failed", zap.Error(err))
	}
}
