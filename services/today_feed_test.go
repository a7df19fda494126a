package services

import (
	"errors"
	"testing"
	"time"

	"mealtracker/models"

	"go.uber.org/zap"
)

type fakeAuthWatcher struct {
	current  uint
	fn       func(uint)
	released int
}

var _ AuthWatcher = (*fakeAuthWatcher)(nil)

func (w *fakeAuthWatcher) Watch(_ string, fn func(uint)) func() {
	w.fn = fn
	fn(w.current)
	return func() { w.released++ }
}

func (w *fakeAuthWatcher) signIn(uid uint) {
	w.current = uid
	w.fn(uid)
}

func (w *fakeAuthWatcher) signOut() {
	w.current = 0
	w.fn(0)
}

func newTestFeed(auth AuthWatcher, store EntryStore) *TodayFeed {
	f := NewTodayFeed(auth, store, zap.NewNop())
	f.now = func() time.Time { return testTime }
	return f
}

func orderedEntries() []models.MealEntry {
	base := time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC)
	// newest first, as the store query orders them
	return []models.MealEntry{
		{ID: 3, FoodName: "Salad", Calories: 150, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, FoodName: "Toast", Calories: 200, CreatedAt: base.Add(time.Hour)},
		{ID: 1, FoodName: "Oatmeal", Calories: 300, CreatedAt: base},
	}
}

func TestTodayFeed_SignedInStartDeliversSnapshot(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)

	var gotEntries []models.MealEntry
	var gotTotal float64
	feed.Start("sess-1", func(entries []models.MealEntry, total float64) {
		gotEntries, gotTotal = entries, total
	})
	defer feed.Stop()

	if store.subCount != 1 {
		t.Fatalf("want one live query, got %d", store.subCount)
	}
	if store.subQ.UserID != 7 || store.subQ.DateKey != "2025-03-14" {
		t.Fatalf("query scoped to %+v", store.subQ)
	}
	if len(gotEntries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(gotEntries))
	}
	for i, wantID := range []uint{3, 2, 1} {
		if gotEntries[i].ID != wantID {
			t.Fatalf("snapshot order at %d: got id %d, want %d", i, gotEntries[i].ID, wantID)
		}
	}
	if gotTotal != 650 {
		t.Fatalf("total want 650, got %v", gotTotal)
	}
}

func TestTodayFeed_UnauthenticatedStart(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{}
	feed := newTestFeed(auth, store)

	called := false
	feed.Start("sess-1", func(entries []models.MealEntry, total float64) {
		called = true
		if len(entries) != 0 || total != 0 {
			t.Fatalf("view must be empty without a user: %d entries, total %v", len(entries), total)
		}
	})
	defer feed.Stop()

	if !called {
		t.Fatalf("onChange must report the cleared view")
	}
	if store.subCount != 0 {
		t.Fatalf("no live query may be opened without a user")
	}
}

func TestTodayFeed_PushReplacesSnapshot(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)
	feed.Start("sess-1", nil)
	defer feed.Stop()

	replacement := []models.MealEntry{{ID: 9, FoodName: "Dinner", Calories: 700}}
	store.pushLive(replacement)

	snap := feed.Snapshot()
	if len(snap) != 1 || snap[0].ID != 9 {
		t.Fatalf("push must replace the whole snapshot: %+v", snap)
	}
	if feed.Total() != 700 {
		t.Fatalf("total want 700, got %v", feed.Total())
	}
}

func TestTodayFeed_ErrorRetainsSnapshot(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)
	feed.Start("sess-1", nil)
	defer feed.Stop()

	store.failLive(errors.New("backend unavailable"))

	if len(feed.Snapshot()) != 3 {
		t.Fatalf("last-known-good snapshot must be retained on error")
	}
	if feed.Total() != 650 {
		t.Fatalf("total must be retained on error, got %v", feed.Total())
	}
}

func TestTodayFeed_SignOutClearsAndReleasesQuery(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)

	var lastEntries []models.MealEntry
	var lastTotal float64
	feed.Start("sess-1", func(entries []models.MealEntry, total float64) {
		lastEntries, lastTotal = entries, total
	})
	defer feed.Stop()

	auth.signOut()

	if store.cancelled != 1 {
		t.Fatalf("inner query must be released on sign-out, cancels=%d", store.cancelled)
	}
	if len(lastEntries) != 0 || lastTotal != 0 {
		t.Fatalf("view must clear on sign-out: %d entries, total %v", len(lastEntries), lastTotal)
	}
	if feed.Snapshot() != nil {
		t.Fatalf("snapshot must be nil after sign-out")
	}
}

func TestTodayFeed_LatePushAfterSignOutDropped(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)
	feed.Start("sess-1", nil)
	defer feed.Stop()

	auth.signOut()

	// a write delivery racing the sign-out: the released watch drops
	// it, so the cleared view must not repopulate
	store.pushLive(orderedEntries())

	if len(feed.Snapshot()) != 0 || feed.Total() != 0 {
		t.Fatalf("view repopulated after sign-out: %d entries, total %v",
			len(feed.Snapshot()), feed.Total())
	}
}

func TestTodayFeed_StopBeforeStartReleasesAuthWatch(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)

	feed.Stop()
	feed.Start("sess-1", nil)

	if auth.released != 1 {
		t.Fatalf("auth watch opened by a late Start must be released, got %d", auth.released)
	}
	if store.subCount != 0 {
		t.Fatalf("stopped feed must not open a live query, got %d", store.subCount)
	}
}

func TestTodayFeed_UserChangeResubscribes(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)
	feed.Start("sess-1", nil)
	defer feed.Stop()

	auth.signIn(8)

	if store.cancelled != 1 {
		t.Fatalf("previous query must be released on user change")
	}
	if store.subCount != 2 || store.subQ.UserID != 8 {
		t.Fatalf("new query must target the new user: count=%d q=%+v", store.subCount, store.subQ)
	}
}

func TestTodayFeed_StopReleasesBothWatches(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)
	feed.Start("sess-1", nil)

	feed.Stop()

	if auth.released != 1 {
		t.Fatalf("auth watch must be released, got %d", auth.released)
	}
	if store.cancelled != 1 {
		t.Fatalf("stop must cascade to the live query, cancels=%d", store.cancelled)
	}

	// second Stop is a no-op
	feed.Stop()
	if auth.released != 1 || store.cancelled != 1 {
		t.Fatalf("stop must be idempotent")
	}
}

func TestTodayFeed_PushAfterStopDropped(t *testing.T) {
	t.Parallel()
	store := &fakeEntryStore{snapshot: orderedEntries()}
	auth := &fakeAuthWatcher{current: 7}
	feed := newTestFeed(auth, store)
	feed.Start("sess-1", nil)
	feed.Stop()

	store.pushLive([]models.MealEntry{{ID: 42, Calories: 999}})

	snap := feed.Snapshot()
	if len(snap) != 3 || feed.Total() != 650 {
		t.Fatalf("pushes after stop must be dropped: %d entries, total %v", len(snap), feed.Total())
	}
}
