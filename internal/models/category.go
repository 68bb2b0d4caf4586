package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category groups transactions. Categories are never removed; deleting
// one clears IsActive and leaves its transactions readable.
type Category struct {
	Base
	Name     string       `gorm:"not null" json:"name"`
	Type     CategoryType `gorm:"column:type;not null" json:"type"`
	Color    string       `gorm:"not null;default:''" json:"color"`
	Icon     *string      `json:"icon,omitempty"`
	ParentID *int64       `gorm:"index" json:"parent_id,omitempty"`
	IsActive bool         `gorm:"not null;default:true;index" json:"is_active"`

	Parent *Category `gorm:"foreignKey:ParentID" json:"-"`
}

func (Category) TableName() string { return "categories" }

func (Category) DeletionPolicy() DeletionPolicy { return DeletionSoft }
