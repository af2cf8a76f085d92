package analytics

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "analytics-data.json"))
}

func TestFileStore_SituationCountUsesMaxIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, _, err := store.Record(ctx, savedEvent("s1", 0, 100))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if session.Situations.Count != 1 {
		t.Errorf("expected count 1, got %d", session.Situations.Count)
	}

	session, _, err = store.Record(ctx, savedEvent("s1", 1, 120))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if session.Situations.Count != 2 {
		t.Errorf("expected count 2, got %d", session.Situations.Count)
	}

	// A re-save at index 0 must not decrease or duplicate the count.
	session, _, err = store.Record(ctx, savedEvent("s1", 0, 140))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if session.Situations.Count != 2 {
		t.Errorf("expected count to stay 2 after duplicate index, got %d", session.Situations.Count)
	}
	if len(session.Situations.Lengths) != 3 {
		t.Errorf("expected 3 recorded lengths, got %d", len(session.Situations.Lengths))
	}
}

func TestFileStore_CompletedAnalysisLatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	completed := Event{EventType: EventAnalysisCompleted, Timestamp: 2, SessionID: "s1"}

	session, completedNow, err := store.Record(ctx, completed)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !completedNow || !session.CompletedAnalysis {
		t.Errorf("expected first completion to latch, got now=%v flag=%v", completedNow, session.CompletedAnalysis)
	}

	_, completedNow, err = store.Record(ctx, completed)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if completedNow {
		t.Error("second completion event must not report completedNow")
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics-data.json")
	ctx := context.Background()

	first := NewFileStore(path)
	if _, _, err := first.Record(ctx, savedEvent("s1", 0, 150)); err != nil {
		t.Fatalf("record: %v", err)
	}

	second := NewFileStore(path)
	doc, err := second.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	session, ok := doc.Sessions["s1"]
	if !ok {
		t.Fatal("expected session s1 to survive reload")
	}
	if len(session.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(session.Events))
	}
}

func TestFileStore_LoadMissingFileYieldsEmptyDocument(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Sessions) != 0 {
		t.Errorf("expected empty document, got %d sessions", len(doc.Sessions))
	}
}

// Two writers for different sessions must not lose each other's events.
func TestFileStore_ConcurrentWriters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const perSession = 20
	var wg sync.WaitGroup
	for _, id := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			for i := 0; i < perSession; i++ {
				if _, _, err := store.Record(ctx, Event{EventType: EventPageView, Timestamp: int64(i), SessionID: sessionID}); err != nil {
					t.Errorf("record %s: %v", sessionID, err)
				}
			}
		}(id)
	}
	wg.Wait()

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, id := range []string{"s1", "s2"} {
		if got := len(doc.Sessions[id].Events); got != perSession {
			t.Errorf("session %s: expected %d events, got %d", id, perSession, got)
		}
	}
}

func TestFileStore_SessionMedianLength(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Record(ctx, savedEvent("s1", 0, 100))
	session, _, err := store.Record(ctx, savedEvent("s1", 1, 200))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if session.Situations.MedianLength == nil || *session.Situations.MedianLength != 150 {
		t.Errorf("expected per-session median 150, got %v", session.Situations.MedianLength)
	}
}
