package services

import (
	"context"
	"fmt"

	"zenfin/internal/core"
	"zenfin/internal/report"
	"zenfin/internal/store"
)

// LimitService manages per-category spending ceilings and their month view.
type LimitService struct {
	limits       store.LimitStore
	transactions *TransactionService
}

func NewLimitService(limits store.LimitStore, transactions *TransactionService) *LimitService {
	return &LimitService{limits: limits, transactions: transactions}
}

// Save validates and upserts a limit. A zero or negative ceiling is rejected.
func (s *LimitService) Save(ctx context.Context, l core.SpendingLimit) (core.SpendingLimit, error) {
	if err := l.Validate(); err != nil {
		return core.SpendingLimit{}, err
	}
	return s.limits.SaveLimit(ctx, l)
}

// Delete removes a limit by id.
func (s *LimitService) Delete(ctx context.Context, id string) error {
	return s.limits.DeleteLimit(ctx, id)
}

// MonthView returns every limit with its month-to-date spend filled in.
func (s *LimitService) MonthView(ctx context.Context, month report.Month) ([]report.LimitStatus, error) {
	limits, err := s.limits.ListLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("load limits: %w", err)
	}
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return report.TrackLimits(report.FilterMonth(txs, month), limits), nil
}
