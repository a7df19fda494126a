package services

import (
	"errors"
	"testing"
)

func TestValidateEntry_Normalizes(t *testing.T) {
	t.Parallel()

	got, err := ValidateEntry(EntryInput{FoodName: "  Chicken wrap  ", Calories: "450", MealType: "lunch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FoodName != "Chicken wrap" {
		t.Fatalf("food name not trimmed: %q", got.FoodName)
	}
	if got.Calories != 450 {
		t.Fatalf("calories want 450, got %v", got.Calories)
	}
	if got.MealType != "lunch" {
		t.Fatalf("meal type want lunch, got %q", got.MealType)
	}
}

func TestValidateEntry_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   EntryInput
		want error
	}{
		{"empty name", EntryInput{FoodName: "", Calories: "300", MealType: "lunch"}, ErrEmptyFoodName},
		{"whitespace name", EntryInput{FoodName: "   ", Calories: "300", MealType: "lunch"}, ErrEmptyFoodName},
		{"non-numeric calories", EntryInput{FoodName: "Oatmeal", Calories: "abc", MealType: "breakfast"}, ErrInvalidCalories},
		{"empty calories", EntryInput{FoodName: "Oatmeal", Calories: "", MealType: "breakfast"}, ErrInvalidCalories},
		{"nan calories", EntryInput{FoodName: "Oatmeal", Calories: "NaN", MealType: "breakfast"}, ErrInvalidCalories},
		{"infinite calories", EntryInput{FoodName: "Oatmeal", Calories: "+Inf", MealType: "breakfast"}, ErrInvalidCalories},
		{"negative calories", EntryInput{FoodName: "Oatmeal", Calories: "-5", MealType: "breakfast"}, ErrInvalidCalories},
		{"unknown meal type", EntryInput{FoodName: "Oatmeal", Calories: "300", MealType: "brunch"}, ErrInvalidMealType},
		{"empty meal type", EntryInput{FoodName: "Oatmeal", Calories: "300", MealType: ""}, ErrInvalidMealType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateEntry(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateEntry_AcceptsAllMealTypes(t *testing.T) {
	t.Parallel()

	for _, mt := range MealTypes {
		if _, err := ValidateEntry(EntryInput{FoodName: "x", Calories: "1", MealType: mt}); err != nil {
			t.Fatalf("meal type %q rejected: %v", mt, err)
		}
	}
}
