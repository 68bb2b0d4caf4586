package models

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Matches reports whether t agrees with the category type c.
func (t TransactionType) Matches(c CategoryType) bool {
	return string(t) == string(c)
}

// Transaction is a single ledger entry. Amount is a magnitude; the
// direction comes from Type. Date is stored as YYYY-MM-DD text.
type Transaction struct {
	Base
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Type        TransactionType `gorm:"column:type;not null" json:"type"`
	Description string          `gorm:"not null;default:''" json:"description"`
	Date        string          `gorm:"type:varchar(10);not null;index" json:"date"`
	Notes       *string         `gorm:"index" json:"notes,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }

func (Transaction) DeletionPolicy() DeletionPolicy { return DeletionHard }
