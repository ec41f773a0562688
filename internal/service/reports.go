package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/report"
	"meezypos/backend/internal/store"
)

func (s *Service) cachedReport(ctx context.Context, key string, out any) bool {
	payload, hit, err := s.reports.Get(ctx, key)
	if err != nil {
		log.Printf("[service] WARN: report cache get %s: %v", key, err)
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Printf("[service] WARN: report cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (s *Service) storeReport(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("[service] WARN: report cache encode %s: %v", key, err)
		return
	}
	if err := s.reports.Set(ctx, key, payload, ttl); err != nil {
		log.Printf("[service] WARN: report cache set %s: %v", key, err)
	}
}

// TodayStats builds the live dashboard snapshot. The fetch window is padded a
// day on both sides so timezone skew between the till and the remote API
// cannot drop boundary orders; the date filter trims the padding again.
func (s *Service) TodayStats(ctx context.Context) (domain.TodayStats, error) {
	now := time.Now()
	today := now.Format("2006-01-02")

	key := "reports:today:" + today
	var cached domain.TodayStats
	if s.cachedReport(ctx, key, &cached) {
		return cached, nil
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	min := dayStart.AddDate(0, 0, -1).Format(time.RFC3339)
	max := dayStart.AddDate(0, 0, 2).Format(time.RFC3339)

	orders, err := s.remote.ListOrdersCreatedBetween(ctx, min, max, "any")
	if err != nil {
		return domain.TodayStats{}, fmt.Errorf("list remote orders: %w", err)
	}

	stats := report.BuildTodayStats(today, orders)
	s.storeReport(ctx, key, stats, s.todayTTL)
	return stats, nil
}

func (s *Service) windowReport(ctx context.Context, period string, start, end time.Time) (domain.SalesReport, error) {
	startDate := start.Format("2006-01-02")
	endDate := end.Format("2006-01-02")

	key := fmt.Sprintf("reports:%s:%s:%s", period, startDate, endDate)
	var cached domain.SalesReport
	if s.cachedReport(ctx, key, &cached) {
		return cached, nil
	}

	orders, err := s.remote.ListOrdersCreatedBetween(ctx, start.Format(time.RFC3339), end.Format(time.RFC3339), "any")
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("list remote orders: %w", err)
	}

	rep := report.BuildSalesReport(period, startDate, endDate, orders)
	s.storeReport(ctx, key, rep, s.reportTTL)
	return rep, nil
}

// WeeklyReport covers the trailing 7 days up to now.
func (s *Service) WeeklyReport(ctx context.Context) (domain.SalesReport, error) {
	end := time.Now()
	return s.windowReport(ctx, "weekly", end.AddDate(0, 0, -7), end)
}

// MonthlyReport covers the trailing 30 days up to now.
func (s *Service) MonthlyReport(ctx context.Context) (domain.SalesReport, error) {
	end := time.Now()
	return s.windowReport(ctx, "monthly", end.AddDate(0, 0, -30), end)
}

// CustomReport covers an explicit inclusive [startDate, endDate] range given
// as YYYY-MM-DD strings.
func (s *Service) CustomReport(ctx context.Context, startDate, endDate string) (domain.SalesReport, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("%w: invalid start_date %q", store.ErrInvalidInput, startDate)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("%w: invalid end_date %q", store.ErrInvalidInput, endDate)
	}
	if end.Before(start) {
		return domain.SalesReport{}, fmt.Errorf("%w: end_date is before start_date", store.ErrInvalidInput)
	}

	end = end.Add(24*time.Hour - time.Second)
	return s.windowReport(ctx, "custom", start, end)
}
