package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MealTypes is the allowed set for MealEntry.MealType, enforced on
// every write.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

// EntryInput is the raw field set as submitted by a client. Calories
// arrives as a JSON number or numeric text (numeric keyboard input)
// and is converted here.
type EntryInput struct {
	FoodName string      `json:"foodName"`
	Calories json.Number `json:"calories"`
	MealType string      `json:"mealType"`
}

// NormalizedEntry is a validated EntryInput, ready for persistence.
type NormalizedEntry struct {
	FoodName string
	Calories float64
	MealType string
}

// ValidateEntry enforces the entry invariants: non-empty trimmed name,
// finite non-negative calories, meal type within MealTypes. Pure; no
// store interaction.
func ValidateEntry(in EntryInput) (NormalizedEntry, error) {
	name := strings.TrimSpace(in.FoodName)
	if name == "" {
		return NormalizedEntry{}, ErrEmptyFoodName
	}

	cal, err := strconv.ParseFloat(strings.TrimSpace(in.Calories.String()), 64)
	if err != nil || math.IsNaN(cal) || math.IsInf(cal, 0) || cal < 0 {
		return NormalizedEntry{}, ErrInvalidCalories
	}

	if !validMealType(in.MealType) {
		return NormalizedEntry{}, ErrInvalidMealType
	}

	return NormalizedEntry{FoodName: name, Calories: cal, MealType: in.MealType}, nil
}

func validMealType(t string) bool {
	for _, m := range MealTypes {
		if t == m {
			return true
		}
	}
	return false
}
