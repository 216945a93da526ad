package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "data", "spark.db"))

	if _, err := store.Load(ctx, "telegram:1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() before save error = %v, want ErrStateNotFound", err)
	}

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	st := NewSessionState("telegram:1", "1", "telegram", now)
	for i, msg := range []string{"pancakes?", "for four people", "thanks"} {
		turn := Interaction{Member: "recipes", UserMessage: msg, Reply: "ok", At: now.Add(time.Duration(i) * time.Minute)}
		if err := st.Record(turn, DefaultHistorySize); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	st.Summary = "cooking pancakes"
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "telegram:1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.UserID != "1" || got.ChannelType != "telegram" || got.ActiveMember != "recipes" || got.Summary != "cooking pancakes" {
		t.Fatalf("Load() = %+v", got)
	}
	if len(got.Interactions) != 3 || got.Interactions[2].UserMessage != "thanks" {
		t.Fatalf("unexpected interactions: %+v", got.Interactions)
	}
	if !got.UpdatedAt.Equal(st.UpdatedAt) || got.UpdatedAt.Location() != time.UTC {
		t.Fatalf("UpdatedAt = %v, want %v in UTC", got.UpdatedAt, st.UpdatedAt)
	}

	st.Summary = "switched to movies"
	st.ActiveMember = "movies"
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	got, err = store.Load(ctx, "telegram:1")
	if err != nil {
		t.Fatalf("Load() after overwrite error = %v", err)
	}
	if got.Summary != "switched to movies" || got.ActiveMember != "movies" {
		t.Fatalf("overwrite not applied: %+v", got)
	}

	if err := store.Delete(ctx, "telegram:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "telegram:1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after delete error = %v", err)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spark.db")

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	st := NewSessionState("telegram:7", "7", "telegram", time.Now())
	if err := first.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second := newTestSQLiteStore(t, path)
	got, err := second.Load(ctx, "telegram:7")
	if err != nil {
		t.Fatalf("Load() after reopen error = %v", err)
	}
	if got.UserID != "7" || len(got.Interactions) != 0 {
		t.Fatalf("Load() after reopen = %+v", got)
	}
}

func TestSQLiteStoreRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "spark.db"))

	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("Save(nil) error = %v", err)
	}
	if err := store.Save(ctx, &SessionState{UserID: "1"}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Save(no id) error = %v", err)
	}
	if _, err := store.Load(ctx, " "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Load(blank) error = %v", err)
	}
	if err := store.Delete(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Delete(blank) error = %v", err)
	}
}

func TestSQLiteStorePrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "spark.db"))

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	stale := NewSessionState("telegram:old", "old", "telegram", cutoff.Add(-time.Hour))
	fresh := NewSessionState("telegram:new", "new", "telegram", cutoff.Add(time.Hour))
	for _, st := range []*SessionState{stale, fresh} {
		if err := store.Save(ctx, st); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	n, err := store.Prune(ctx, cutoff)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("Prune() removed %d, want 1", n)
	}
	if _, err := store.Load(ctx, "telegram:old"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("stale session still present: %v", err)
	}
	if _, err := store.Load(ctx, "telegram:new"); err != nil {
		t.Fatalf("fresh session removed: %v", err)
	}
}
