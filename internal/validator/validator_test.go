package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Kind     string `validate:"omitempty,transaction_type"`
	Category string `validate:"omitempty,category_type"`
	Date     string `validate:"omitempty,ledger_date"`
}

func TestRegisterOn(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"income_transaction", sample{Kind: "income"}, true},
		{"transfer_is_not_a_ledger_type", sample{Kind: "transfer"}, false},
		{"expense_category", sample{Category: "expense"}, true},
		{"uppercase_category", sample{Category: "EXPENSE"}, false},
		{"calendar_date", sample{Date: "2024-02-29"}, true},
		{"impossible_date", sample{Date: "2023-02-29"}, false},
		{"unpadded_date", sample{Date: "2024-3-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
