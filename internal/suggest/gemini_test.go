package suggest

import (
	"testing"

	"zenfin/internal/core"
)

func TestParseSuggestion(t *testing.T) {
	raw := `{"description": "Padaria do Zé", "amount": "23,50", "kind": "EXPENSE", "category": "Mercado", "payment_method": "pix"}`
	d := parseSuggestion(raw)
	if d == nil {
		t.Fatal("expected a draft")
	}
	if d.Description != "Padaria do Zé" || d.Amount.Cents != 2350 {
		t.Fatalf("draft wrong: %+v", d)
	}
	if d.Kind != core.Expense || d.Category != core.CategoryMercado || d.PaymentMethod != "pix" {
		t.Fatalf("draft wrong: %+v", d)
	}
	if d.Recurrence != core.Unique {
		t.Fatalf("recurrence must default to unique, got %s", d.Recurrence)
	}
	if d.Date.IsZero() {
		t.Fatal("draft must carry a usable date")
	}
}

func TestParseSuggestionStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"description\": \"Luz\", \"amount\": \"120.00\", \"kind\": \"EXPENSE\", \"category\": \"Luz\"}\n```"
	d := parseSuggestion(raw)
	if d == nil || d.Amount.Cents != 12000 || d.Category != core.CategoryLuz {
		t.Fatalf("fenced response must still parse: %+v", d)
	}
}

func TestParseSuggestionUnknownCategoryFallsBack(t *testing.T) {
	raw := `{"description": "x", "amount": "10.00", "kind": "EXPENSE", "category": "Groceries"}`
	d := parseSuggestion(raw)
	if d == nil || d.Category != core.CategoryOutros {
		t.Fatalf("unknown category must fall back to Outros: %+v", d)
	}
}

func TestParseSuggestionVoiceRecurrence(t *testing.T) {
	raw := `{"description": "aluguel", "amount": "1200.00", "kind": "EXPENSE", "category": "Aluguel", "recurrence": "RECURRING"}`
	d := parseSuggestion(raw)
	if d == nil || d.Recurrence != core.Recurring {
		t.Fatalf("recurrence must come through: %+v", d)
	}
}

func TestParseSuggestionUnusable(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "sorry, I could not read the receipt"},
		{"bad amount", `{"description": "x", "amount": "-5", "kind": "EXPENSE", "category": "Outros"}`},
		{"bad kind", `{"description": "x", "amount": "5.00", "kind": "TRANSFER", "category": "Outros"}`},
		{"missing amount", `{"description": "x", "kind": "EXPENSE", "category": "Outros"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if d := parseSuggestion(tc.raw); d != nil {
				t.Fatalf("expected nil draft, got %+v", d)
			}
		})
	}
}
