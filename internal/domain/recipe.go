package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Recipe struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Name        string                      `json:"name" gorm:"not null"`
	Ingredients datatypes.JSONSlice[string] `json:"ingredients" gorm:"not null"`
	UserID      uint                        `json:"user_id" gorm:"index;not null"`
	User        *User                       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time                   `json:"-"`
}

// Recommendation is a recipe suggestion returned by the AI provider. It is never persisted.
type Recommendation struct {
	Name string `json:"name"`
	Link string `json:"link"`
}
