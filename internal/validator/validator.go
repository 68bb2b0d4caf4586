// Package validator registers the ledger's binding tags with Gin.
package validator

import (
	"budgetledger/internal/models"
	"budgetledger/internal/period"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the ledger tags to a standalone validator instance.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_type", validateCategoryType)
	_ = v.RegisterValidation("ledger_date", validateLedgerDate)
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.CategoryType(fl.Field().String()).Valid()
}

// validateLedgerDate accepts only strict YYYY-MM-DD calendar dates.
func validateLedgerDate(fl validator.FieldLevel) bool {
	_, err := period.ParseDate(fl.Field().String())
	return err == nil
}
