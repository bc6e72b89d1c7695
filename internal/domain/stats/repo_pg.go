package stats

import (
	"context"
	"time"

	"github.com/medidesk/medidesk/internal/platform/db"
)

type RepoPG struct {
	store *db.Store
}

func NewRepoPG(store *db.Store) *RepoPG {
	return &RepoPG{store: store}
}

// Summary runs one aggregate query; "today" spans the server-local calendar
// day containing now, and low stock matches the inventory low-stock route.
func (r *RepoPG) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	expiryCutoff := now.Add(30 * 24 * time.Hour)

	var s Summary
	err := r.store.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments WHERE scheduled_at >= $1 AND scheduled_at < $2),
			(SELECT COUNT(*) FROM lab_tests WHERE status = 'pending'),
			(SELECT COUNT(*) FROM inventory_items
				WHERE quantity <= alert_threshold
				OR (expiry_date IS NOT NULL AND expiry_date <= $3)),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE created_at >= $1 AND created_at < $2)`,
		dayStart, dayEnd, expiryCutoff).
		Scan(&s.Patients, &s.AppointmentsToday, &s.PendingLabTests, &s.LowStockItems, &s.RevenueToday)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
