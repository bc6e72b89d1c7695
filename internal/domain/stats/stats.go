// Package stats serves the aggregate dashboard counters.
package stats

import (
	"context"
	"time"
)

type Summary struct {
	Patients          int64   `json:"patients"`
	AppointmentsToday int64   `json:"appointments_today"`
	PendingLabTests   int64   `json:"pending_lab_tests"`
	LowStockItems     int64   `json:"low_stock_items"`
	RevenueToday      float64 `json:"revenue_today"`
}

type Repository interface {
	Summary(ctx context.Context, now time.Time) (*Summary, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx, s.now())
}
