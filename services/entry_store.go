package services

import (
	"context"
	"sync"

	"mealtracker/models"

	"gorm.io/gorm"
)

// TodayQuery selects one user's entries for a single calendar day,
// newest first.
type TodayQuery struct {
	UserID  uint
	DateKey string
}

// EntryUpdate carries the mutable field set of an entry. DateKey and
// CreatedAt are not part of it and never change after insert.
type EntryUpdate struct {
	FoodName string
	Calories float64
	MealType string
}

// EntryStore is the ledger's storage boundary: single-row writes
// addressed under one user's partition, plus a filtered live query.
// Subscribe delivers the current snapshot immediately and again after
// every write that may affect the query, until cancel is called; a
// released subscription never emits again, and cancel does not return
// while a delivery is in flight. Subscription failures go to fail and
// the subscription stays open; reporting them is the subscriber's job.
type EntryStore interface {
	Insert(ctx context.Context, entry *models.MealEntry) error
	Update(ctx context.Context, userID, id uint, upd EntryUpdate) error
	Delete(ctx context.Context, userID, id uint) error
	Snapshot(ctx context.Context, q TodayQuery) ([]models.MealEntry, error)
	Subscribe(q TodayQuery, push func([]models.MealEntry), fail func(error)) (cancel func())
}

// GormEntryStore persists entries in Postgres and drives live
// subscriptions from an in-process change bus: every successful write
// re-runs the matching subscribed queries and pushes fresh snapshots.
type GormEntryStore struct {
	db  *gorm.DB
	bus *entryBus
}

func NewGormEntryStore(db *gorm.DB) *GormEntryStore {
	s := &GormEntryStore{db: db}
	s.bus = newEntryBus(func(q TodayQuery) ([]models.MealEntry, error) {
		return s.Snapshot(context.Background(), q)
	})
	return s
}

// Insert creates the entry; the database assigns ID and CreatedAt.
func (s *GormEntryStore) Insert(ctx context.Context, entry *models.MealEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	s.bus.notify(entry.UserID)
	return nil
}

// Update applies the mutable fields to the entry addressed by
// (userID, id). The column map keeps DateKey and CreatedAt out of the
// statement entirely.
func (s *GormEntryStore) Update(ctx context.Context, userID, id uint, upd EntryUpdate) error {
	err := s.db.WithContext(ctx).
		Model(&models.MealEntry{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"food_name": upd.FoodName,
			"calories":  upd.Calories,
			"meal_type": upd.MealType,
		}).Error
	if err != nil {
		return err
	}
	s.bus.notify(userID)
	return nil
}

// Delete removes the entry addressed by (userID, id). Deleting a row
// that does not exist is not an error.
func (s *GormEntryStore) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.MealEntry{}).Error
	if err != nil {
		return err
	}
	s.bus.notify(userID)
	return nil
}

// Snapshot returns the full ordered result of q: newest first, id as
// tiebreaker for entries created in the same instant.
func (s *GormEntryStore) Snapshot(ctx context.Context, q TodayQuery) ([]models.MealEntry, error) {
	var entries []models.MealEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date_key = ?", q.UserID, q.DateKey).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func (s *GormEntryStore) Subscribe(q TodayQuery, push func([]models.MealEntry), fail func(error)) func() {
	return s.bus.subscribe(q, push, fail)
}

// entryBus fans successful writes out to live query subscribers. Each
// subscription serializes its deliveries behind its own lock: the
// snapshot read and the push happen as one step, so pushes for a
// subscription are ordered by their reads, and a released subscription
// can never emit again.
type entryBus struct {
	load func(TodayQuery) ([]models.MealEntry, error)

	mu   sync.Mutex
	next int
	subs map[int]*entrySub
}

type entrySub struct {
	q    TodayQuery
	push func([]models.MealEntry)
	fail func(error)

	mu     sync.Mutex
	closed bool
}

func newEntryBus(load func(TodayQuery) ([]models.MealEntry, error)) *entryBus {
	return &entryBus{load: load, subs: make(map[int]*entrySub)}
}

// subscribe registers a live query. The initial snapshot is delivered
// synchronously before subscribe returns; a failure on the initial
// read goes to fail and the subscription remains registered.
func (b *entryBus) subscribe(q TodayQuery, push func([]models.MealEntry), fail func(error)) func() {
	sub := &entrySub{q: q, push: push, fail: fail}

	b.mu.Lock()
	b.next++
	id := b.next
	b.subs[id] = sub
	b.mu.Unlock()

	b.deliver(sub)

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()

		// Taking the sub lock waits out a delivery already in
		// flight; the flag bars any that were collected but have not
		// started yet.
		sub.mu.Lock()
		sub.closed = true
		sub.mu.Unlock()
	}
}

// notify re-runs every subscribed query for userID. Matching by user
// rather than by day means an update or delete of an older entry still
// refreshes any view that could have shown it.
func (b *entryBus) notify(userID uint) {
	b.mu.Lock()
	matched := make([]*entrySub, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.q.UserID == userID {
			matched = append(matched, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range matched {
		b.deliver(sub)
	}
}

func (b *entryBus) deliver(sub *entrySub) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	entries, err := b.load(sub.q)
	if err != nil {
		sub.fail(err)
		return
	}
	sub.push(entries)
}
