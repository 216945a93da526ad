package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionStateRecordKeepsNewestInteractions(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	st := NewSessionState("telegram:7", "7", "telegram", base)

	messages := []string{"one", "two", "three", "four"}
	for i, msg := range messages {
		turn := Interaction{
			Member:      "recipes",
			UserMessage: msg,
			Reply:       "reply " + msg,
			At:          base.Add(time.Duration(i) * time.Minute),
		}
		if err := st.Record(turn, DefaultHistorySize); err != nil {
			t.Fatalf("Record(%q) error = %v", msg, err)
		}
	}

	if len(st.Interactions) != DefaultHistorySize {
		t.Fatalf("len(Interactions) = %d, want %d", len(st.Interactions), DefaultHistorySize)
	}
	if st.Interactions[0].UserMessage != "two" || st.Interactions[2].UserMessage != "four" {
		t.Fatalf("unexpected history order: %+v", st.Interactions)
	}
	if st.ActiveMember != "recipes" {
		t.Fatalf("ActiveMember = %q, want recipes", st.ActiveMember)
	}
	if !st.UpdatedAt.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("UpdatedAt = %v, want last interaction time", st.UpdatedAt)
	}
}

func TestSessionStateRecordRejectsIncompleteTurn(t *testing.T) {
	t.Parallel()

	st := NewSessionState("telegram:7", "7", "telegram", time.Now())
	err := st.Record(Interaction{Member: "movies"}, 3)
	if !errors.Is(err, ErrInvalidTurn) {
		t.Fatalf("Record() error = %v, want ErrInvalidTurn", err)
	}
	if len(st.Interactions) != 0 {
		t.Fatalf("history should stay empty, got %+v", st.Interactions)
	}
}

func TestSessionStateRecent(t *testing.T) {
	t.Parallel()

	st := NewSessionState("telegram:7", "7", "telegram", time.Now())
	for _, msg := range []string{"a", "b"} {
		if err := st.Record(Interaction{Member: "movies", UserMessage: msg}, 5); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got := st.Recent(5)
	if len(got) != 2 || got[0].UserMessage != "a" {
		t.Fatalf("Recent(5) = %+v", got)
	}
	got = st.Recent(1)
	if len(got) != 1 || got[0].UserMessage != "b" {
		t.Fatalf("Recent(1) = %+v", got)
	}
	if st.Recent(0) != nil {
		t.Fatal("Recent(0) should be nil")
	}

	got[0].UserMessage = "mutated"
	if st.Interactions[1].UserMessage != "b" {
		t.Fatal("Recent must return a copy")
	}
}

func TestSessionStateValidate(t *testing.T) {
	t.Parallel()

	var nilState *SessionState
	if err := nilState.Validate(); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("nil Validate() = %v", err)
	}
	if err := NewSessionState(" ", "1", "telegram", time.Now()).Validate(); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("empty session Validate() = %v", err)
	}
	if err := NewSessionState("telegram:1", "", "telegram", time.Now()).Validate(); !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("empty owner Validate() = %v", err)
	}
	if err := NewSessionState("telegram:1", "1", "telegram", time.Now()).Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestSessionIDFor(t *testing.T) {
	t.Parallel()

	if got := SessionIDFor("telegram", " 42 "); got != "telegram:42" {
		t.Fatalf("SessionIDFor() = %q", got)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Load(ctx, "telegram:1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() before save error = %v, want ErrStateNotFound", err)
	}

	st := NewSessionState("telegram:1", "1", "telegram", time.Now())
	st.Summary = "likes pasta"
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	st.Summary = "changed after save"

	got, err := store.Load(ctx, "telegram:1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Summary != "likes pasta" {
		t.Fatalf("Load().Summary = %q, want stored copy", got.Summary)
	}

	if err := store.Delete(ctx, "telegram:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "telegram:1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after delete error = %v", err)
	}
	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("Save(nil) error = %v", err)
	}
}
