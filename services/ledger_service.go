package services

import (
	"context"
	"math"
	"time"

	"mealtracker/models"
)

// LedgerService owns the write operations and the "today" query of the
// per-user meal ledger. Every operation is addressed under the calling
// user's partition, so cross-user writes are structurally impossible.
// Store errors propagate unchanged; there is no retry.
type LedgerService struct {
	store EntryStore
	now   func() time.Time
}

func NewLedgerService(store EntryStore) *LedgerService {
	return &LedgerService{store: store, now: time.Now}
}

// DateKey returns the UTC calendar day of t in YYYY-MM-DD form, the
// ledger's daily partition key.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// AddMeal validates the input and inserts a new entry for today under
// the user's partition. The store assigns ID and CreatedAt.
func (s *LedgerService) AddMeal(ctx context.Context, userID uint, in EntryInput) (*models.MealEntry, error) {
	if userID == 0 {
		return nil, ErrNotLoggedIn
	}
	norm, err := ValidateEntry(in)
	if err != nil {
		return nil, err
	}

	entry := &models.MealEntry{
		UserID:   userID,
		FoodName: norm.FoodName,
		Calories: norm.Calories,
		MealType: norm.MealType,
		DateKey:  DateKey(s.now()),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateMeal re-validates the input and applies a partial update to
// the mutable fields of the entry addressed by (userID, id). DateKey
// and CreatedAt are never touched.
func (s *LedgerService) UpdateMeal(ctx context.Context, userID, id uint, in EntryInput) error {
	if userID == 0 {
		return ErrNotLoggedIn
	}
	if id == 0 {
		return ErrMissingID
	}
	norm, err := ValidateEntry(in)
	if err != nil {
		return err
	}

	return s.store.Update(ctx, userID, id, EntryUpdate{
		FoodName: norm.FoodName,
		Calories: norm.Calories,
		MealType: norm.MealType,
	})
}

// DeleteMeal removes the entry addressed by (userID, id)
// unconditionally. Deleting an id that no longer exists is not an
// error at this layer.
func (s *LedgerService) DeleteMeal(ctx context.Context, userID, id uint) error {
	if userID == 0 {
		return ErrNotLoggedIn
	}
	return s.store.Delete(ctx, userID, id)
}

// TodayQueryFor builds the live query for the user's current UTC day.
func (s *LedgerService) TodayQueryFor(userID uint) TodayQuery {
	return TodayQuery{UserID: userID, DateKey: DateKey(s.now())}
}

// ListToday returns the current snapshot of today's ledger and its
// calorie total.
func (s *LedgerService) ListToday(ctx context.Context, userID uint) ([]models.MealEntry, float64, error) {
	if userID == 0 {
		return nil, 0, ErrNotLoggedIn
	}
	entries, err := s.store.Snapshot(ctx, s.TodayQueryFor(userID))
	if err != nil {
		return nil, 0, err
	}
	return entries, TotalCalories(entries), nil
}

// TotalCalories sums calories over a snapshot. A non-finite stored
// value counts as zero so one bad row cannot break the total.
func TotalCalories(entries []models.MealEntry) float64 {
	var sum float64
	for _, e := range entries {
		if math.IsNaN(e.Calories) || math.IsInf(e.Calories, 0) {
			continue
		}
		sum += e.Calories
	}
	return sum
}
