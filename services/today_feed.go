package services

import (
	"sync"
	"time"

	"mealtracker/models"

	"go.uber.org/zap"
)

// TodayFeed maintains a live, ordered view of one user's entries for
// the current calendar day. It owns two nested watches: an outer
// auth-state watch on a session and, while a user is signed in, an
// inner live query against that user's partition. A sign-out releases
// the inner watch and clears the view; Stop releases both.
//
// The day key is computed once when the inner watch opens. A session
// left open across midnight keeps showing the old day's ledger until
// it resubscribes.
type TodayFeed struct {
	auth  AuthWatcher
	store EntryStore
	log   *zap.Logger
	now   func() time.Time

	mu        sync.Mutex
	entries   []models.MealEntry
	total     float64
	onChange  func(entries []models.MealEntry, total float64)
	cancelQry func()
	stopAuth  func()
	stopped   bool
}

func NewTodayFeed(auth AuthWatcher, store EntryStore, log *zap.Logger) *TodayFeed {
	return &TodayFeed{auth: auth, store: store, log: log, now: time.Now}
}

// Start opens the auth watch for the session. onChange fires with the
// new snapshot and calorie total every time the view changes,
// including the clear on sign-out.
func (f *TodayFeed) Start(sessionID string, onChange func(entries []models.MealEntry, total float64)) {
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()

	stopAuth := f.auth.Watch(sessionID, f.onAuthChange)

	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		stopAuth()
		return
	}
	f.stopAuth = stopAuth
	f.mu.Unlock()
}

// Stop releases the auth watch and, transitively, any live query it
// currently holds. Safe to call more than once.
func (f *TodayFeed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	cancel := f.cancelQry
	f.cancelQry = nil
	stopAuth := f.stopAuth
	f.stopAuth = nil
	f.mu.Unlock()

	if stopAuth != nil {
		stopAuth()
	}
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the entries of the last push, newest first.
func (f *TodayFeed) Snapshot() []models.MealEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries
}

// Total returns the calorie sum over the current snapshot.
func (f *TodayFeed) Total() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// onAuthChange tears down the current live query, then opens a new one
// if a user is present or clears the view if not. A push racing the
// teardown is dropped by the store because its subscription is gone,
// not by any identity check here.
func (f *TodayFeed) onAuthChange(userID uint) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	cancel := f.cancelQry
	f.cancelQry = nil
	f.mu.Unlock()

	// cancel blocks until an in-flight delivery has drained through
	// onPush, so the feed lock must not be held here.
	if cancel != nil {
		cancel()
	}

	if userID == 0 {
		f.mu.Lock()
		if f.stopped {
			f.mu.Unlock()
			return
		}
		f.entries = nil
		f.total = 0
		cb := f.onChange
		f.mu.Unlock()
		if cb != nil {
			cb(nil, 0)
		}
		return
	}

	q := TodayQuery{UserID: userID, DateKey: DateKey(f.now())}

	// Subscribe delivers the initial snapshot synchronously through
	// onPush, so the feed lock must not be held here either.
	cancelNew := f.store.Subscribe(q, f.onPush, f.onError)

	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		cancelNew()
		return
	}
	f.cancelQry = cancelNew
	f.mu.Unlock()
}

// onPush replaces the whole snapshot; no incremental diffing.
func (f *TodayFeed) onPush(entries []models.MealEntry) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.entries = entries
	f.total = TotalCalories(entries)
	cb := f.onChange
	total := f.total
	f.mu.Unlock()

	if cb != nil {
		cb(entries, total)
	}
}

// onError reports the failure and keeps the previous snapshot: the
// feed presents last-known-good data on a transient query failure.
func (f *TodayFeed) onError(err error) {
	f.log.Warn("today feed query error", zap.Error(err))
}
