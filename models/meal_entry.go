package models

import "time"

// MealEntry is one logged food item in a user's daily ledger.
//
// DateKey partitions a user's entries by UTC calendar day and is fixed
// at creation. CreatedAt is assigned by the store on insert and orders
// entries within a day; neither is ever updated.
type MealEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_entries_user_day,priority:1" json:"-"`
	FoodName  string    `gorm:"not null" json:"foodName"`
	Calories  float64   `gorm:"not null" json:"calories"`
	MealType  string    `gorm:"type:varchar(16);not null" json:"mealType"`
	DateKey   string    `gorm:"type:varchar(10);not null;index:idx_entries_user_day,priority:2" json:"dateKey"`
	CreatedAt time.Time `json:"createdAt"`
}
