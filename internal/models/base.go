package models

import "time"

// Base contains the identity and audit columns shared by ledger tables.
// Timestamps are stamped by the services in UTC and serialize as RFC 3339.
type Base struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// DeletionPolicy says how an entity leaves the ledger.
type DeletionPolicy int

const (
	// DeletionSoft flips the is_active flag and keeps the row.
	DeletionSoft DeletionPolicy = iota + 1
	// DeletionHard physically removes the row.
	DeletionHard
)

func (p DeletionPolicy) String() string {
	switch p {
	case DeletionSoft:
		return "soft"
	case DeletionHard:
		return "hard"
	}
	return "unknown"
}

// Deletable is implemented by every model the services can remove.
type Deletable interface {
	TableName() string
	DeletionPolicy() DeletionPolicy
}
