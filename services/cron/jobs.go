package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sahilchouksey/course-market-api/model"
)

// CleanupExpiredTokens purges blacklist rows whose tokens have expired.
// Expired tokens fail validation on their own, so keeping the rows only
// bloats the lookup index.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup tokens: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", removed))
}

// AuditStaleOrders counts orders that have sat in created status for more
// than 24 hours. Stale orders are normal (abandoned checkouts) and are
// never mutated here; the count feeds the job log for operators watching
// for provider delivery problems.
func (m *CronManager) AuditStaleOrders() {
	jobName := "audit_stale_orders"
	cutoff := time.Now().Add(-24 * time.Hour)

	var stale int64
	err := m.db.Model(&model.PaymentOrder{}).
		Where("status = ? AND created_at < ?", model.OrderStatusCreated, cutoff).
		Count(&stale).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to count stale orders: %w", err))
		return
	}

	if stale > 0 {
		log.Printf("[CRON] %d orders older than 24h still in created status", stale)
	}
	m.logJobComplete(jobName, fmt.Sprintf("%d stale created orders", stale))
}

// CleanupOldJobLogs trims cron job logs older than 30 days.
func (m *CronManager) CleanupOldJobLogs() {
	jobName := "cleanup_old_job_logs"
	cutoff := time.Now().AddDate(0, 0, -30)

	res := m.db.Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old logs: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old job logs", res.RowsAffected))
}
