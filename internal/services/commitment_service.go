package services

import (
	"context"
	"fmt"

	"zenfin/internal/core"
	"zenfin/internal/report"
	"zenfin/internal/store"
)

// CommitmentService reconciles recurring obligations against the monthly
// snapshot and manages the template set behind them.
type CommitmentService struct {
	templates    store.TemplateStore
	transactions *TransactionService
}

func NewCommitmentService(templates store.TemplateStore, transactions *TransactionService) *CommitmentService {
	return &CommitmentService{templates: templates, transactions: transactions}
}

// MonthReport runs the reconciliation for one month.
func (s *CommitmentService) MonthReport(ctx context.Context, month report.Month) (report.Reconciliation, error) {
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return report.Reconciliation{}, fmt.Errorf("load snapshot: %w", err)
	}
	tpls, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return report.Reconciliation{}, fmt.Errorf("load templates: %w", err)
	}
	return report.Reconcile(report.FilterMonth(txs, month), tpls), nil
}

// ConfirmTemplate materializes a missing commitment into a pending recurring
// expense dated at the first day of the month. Confirming a commitment that
// already has a transaction is a no-op returning the existing one.
func (s *CommitmentService) ConfirmTemplate(ctx context.Context, category core.Category, month report.Month) (core.Transaction, error) {
	rec, err := s.MonthReport(ctx, month)
	if err != nil {
		return core.Transaction{}, err
	}

	for _, c := range rec.Commitments {
		if c.Category != category {
			continue
		}
		if c.Transaction != nil {
			return *c.Transaction, nil
		}
		tpl, err := s.findTemplate(ctx, category)
		if err != nil {
			return core.Transaction{}, err
		}
		return s.transactions.Create(ctx, core.DraftFromTemplate(tpl, month.Year, month.Month))
	}
	return core.Transaction{}, core.ErrNotFound
}

// ToggleTemplate flips a template's active flag.
func (s *CommitmentService) ToggleTemplate(ctx context.Context, category core.Category) (core.RecurringTemplate, error) {
	tpl, err := s.findTemplate(ctx, category)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	tpl.IsActive = !tpl.IsActive
	if err := s.templates.SaveTemplate(ctx, tpl); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("save template: %w", err)
	}
	return tpl, nil
}

// SetTemplateAmount updates the default amount shown for missing commitments.
func (s *CommitmentService) SetTemplateAmount(ctx context.Context, category core.Category, amount core.Money) (core.RecurringTemplate, error) {
	if amount.Cents < 0 {
		return core.RecurringTemplate{}, core.ErrInvalidAmount
	}
	tpl, err := s.findTemplate(ctx, category)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	tpl.DefaultAmount = amount
	if err := s.templates.SaveTemplate(ctx, tpl); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("save template: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns the template set in checklist order.
func (s *CommitmentService) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	return s.templates.ListTemplates(ctx)
}

func (s *CommitmentService) findTemplate(ctx context.Context, category core.Category) (core.RecurringTemplate, error) {
	tpls, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("load templates: %w", err)
	}
	for _, tpl := range tpls {
		if tpl.Category == category {
			return tpl, nil
		}
	}
	return core.RecurringTemplate{}, core.ErrNotFound
}
