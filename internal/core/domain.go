package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"

	Unique      Recurrence = "UNIQUE"
	Recurring   Recurrence = "RECURRING"
	Installment Recurrence = "INSTALLMENT"
)

type (
	// Kind distinguishes money coming in from money going out.
	Kind string

	// Recurrence tells how a transaction repeats, if at all.
	Recurrence string

	// Transaction is a single money movement as stored by the transaction store.
	// IsPaid is the only field that may change after creation.
	Transaction struct {
		ID            string
		Description   string
		Amount        Money
		Date          time.Time
		Kind          Kind
		Category      Category
		PaymentMethod string // empty when no concrete payment exists yet
		Recurrence    Recurrence
		IsPaid        bool
	}

	// TransactionDraft is a Transaction before the store assigns identity.
	TransactionDraft struct {
		Description   string
		Amount        Money
		Date          time.Time
		Kind          Kind
		Category      Category
		PaymentMethod string
		Recurrence    Recurrence
	}

	// RecurringTemplate is a standing expectation that a bill category recurs
	// every month. Templates are never deleted, only deactivated.
	RecurringTemplate struct {
		Category      Category
		IsActive      bool
		DefaultAmount Money
	}

	// SpendingLimit is a per-category ceiling. Spent is recomputed for each
	// period view and never persisted incrementally.
	SpendingLimit struct {
		ID       string
		Category Category
		Limit    Money
		Spent    Money
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNotFound        = errors.New("transaction not found")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (r Recurrence) Validate() error {
	switch r {
	case Unique, Recurring, Installment:
		return nil
	default:
		return errors.New("invalid recurrence type")
	}
}

// Validate rejects malformed drafts before they reach the store.
// A zero amount is allowed: transactions materialized from a template whose
// default amount is unknown carry zero until the user fills it in.
func (d TransactionDraft) Validate() error {
	if d.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := d.Category.Validate(); err != nil {
		return err
	}
	if err := d.Kind.Validate(); err != nil {
		return err
	}
	if err := d.Recurrence.Validate(); err != nil {
		return err
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// PaidAtCreation applies the paid-status rule for new transactions:
// income is always effectively paid; an expense born from a recurring
// obligation starts pending; everything else is paid on the spot.
func (d TransactionDraft) PaidAtCreation() bool {
	if d.Kind == Income {
		return true
	}
	return d.Recurrence != Recurring
}

func (t RecurringTemplate) Validate() error {
	if err := t.Category.Validate(); err != nil {
		return err
	}
	if t.DefaultAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (l SpendingLimit) Validate() error {
	if err := l.Category.Validate(); err != nil {
		return err
	}
	if l.Limit.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// SeedTemplates builds the initial template set: one active template with an
// unknown default amount for each default recurring category.
func SeedTemplates() []RecurringTemplate {
	cats := DefaultRecurringCategories()
	out := make([]RecurringTemplate, 0, len(cats))
	for _, c := range cats {
		out = append(out, RecurringTemplate{Category: c, IsActive: true})
	}
	return out
}

// DraftFromTemplate materializes a pending expense for the template's category
// dated at the first day of the given month.
func DraftFromTemplate(t RecurringTemplate, year int, month time.Month) TransactionDraft {
	return TransactionDraft{
		Description: strings.TrimSpace(string(t.Category)),
		Amount:      t.DefaultAmount,
		Date:        time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		Kind:        Expense,
		Category:    t.Category,
		Recurrence:  Recurring,
	}
}
