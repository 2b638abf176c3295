package report

import "zenfin/internal/core"

const (
	// StatusMissing: no transaction for the template's category this month.
	StatusMissing CommitmentStatus = "MISSING"
	// StatusPending: a matching transaction exists but is not paid yet.
	StatusPending CommitmentStatus = "PENDING"
	// StatusPaid: the matching transaction is paid.
	StatusPaid CommitmentStatus = "PAID"
)

type (
	// CommitmentStatus classifies a recurring obligation for one month.
	CommitmentStatus string

	// Commitment is one active template reconciled against the month.
	// Transaction is nil when Status is StatusMissing; DisplayAmount then
	// falls back to the template's default amount.
	Commitment struct {
		Category      core.Category
		Status        CommitmentStatus
		Transaction   *core.Transaction
		DisplayAmount core.Money
	}

	// Reconciliation is the month's paid/pending/missing checklist plus the
	// residual variable spending.
	Reconciliation struct {
		Commitments []Commitment
		Others      []core.Transaction
	}
)

// Reconcile cross-references the month's transactions against the active
// recurring templates. For each active template the first subset transaction
// with the template's category is taken as the recurring instance, in the
// order the store returned them.
//
// The residual set excludes by category membership in the active template
// set: once a category has an active template, every transaction of that
// category belongs to the commitment view for the month, including unmatched
// duplicates. Together the templated-category transactions and Others
// partition the subset exactly.
func Reconcile(subset []core.Transaction, templates []core.RecurringTemplate) Reconciliation {
	templated := make(map[core.Category]bool)
	var rec Reconciliation

	for _, tpl := range templates {
		if !tpl.IsActive {
			continue
		}
		templated[tpl.Category] = true

		c := Commitment{Category: tpl.Category, Status: StatusMissing, DisplayAmount: tpl.DefaultAmount}
		for i := range subset {
			if subset[i].Category != tpl.Category {
				continue
			}
			match := subset[i]
			c.Transaction = &match
			c.DisplayAmount = match.Amount
			if match.IsPaid {
				c.Status = StatusPaid
			} else {
				c.Status = StatusPending
			}
			break
		}
		rec.Commitments = append(rec.Commitments, c)
	}

	for _, t := range subset {
		if !templated[t.Category] {
			rec.Others = append(rec.Others, t)
		}
	}
	return rec
}
