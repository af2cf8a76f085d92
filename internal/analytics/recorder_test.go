package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) NotifyNewAnalysis(_ context.Context, _ int, _ string, _ int64) error {
	f.calls++
	return f.err
}

type fakePublisher struct {
	subjects []string
	err      error
}

func (f *fakePublisher) Publish(subject string, _ any) error {
	f.subjects = append(f.subjects, subject)
	return f.err
}

func newTestRecorder(t *testing.T, notifier Notifier, publisher Publisher) *Recorder {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "analytics.json"))
	return NewRecorder(store, notifier, publisher, discardLogger())
}

func TestRecorder_NotifiesOnFirstCompletionOnly(t *testing.T) {
	notifier := &fakeNotifier{}
	rec := newTestRecorder(t, notifier, nil)
	ctx := context.Background()

	completed := Event{EventType: EventAnalysisCompleted, Timestamp: 5, SessionID: "s1"}
	if err := rec.Record(ctx, completed); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.Record(ctx, completed); err != nil {
		t.Fatalf("record: %v", err)
	}

	if notifier.calls != 1 {
		t.Errorf("expected exactly 1 notification, got %d", notifier.calls)
	}
}

func TestRecorder_NotificationFailureDoesNotFailRequest(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	rec := newTestRecorder(t, notifier, nil)

	err := rec.Record(context.Background(), Event{EventType: EventAnalysisCompleted, Timestamp: 5, SessionID: "s1"})
	if err != nil {
		t.Errorf("notification failure must not fail the record: %v", err)
	}
}

func TestRecorder_PublishesMilestones(t *testing.T) {
	publisher := &fakePublisher{}
	rec := newTestRecorder(t, nil, publisher)

	rec.Record(context.Background(), Event{EventType: EventAnalysisCompleted, Timestamp: 5, SessionID: "s1"})

	var sawEvent, sawCompleted bool
	for _, subject := range publisher.subjects {
		switch subject {
		case SubjectEvent:
			sawEvent = true
		case SubjectAnalysisCompleted:
			sawCompleted = true
		}
	}
	if !sawEvent || !sawCompleted {
		t.Errorf("expected both subjects published, got %v", publisher.subjects)
	}
}

func TestRecorder_PublishFailureDoesNotFailRequest(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("nats down")}
	rec := newTestRecorder(t, nil, publisher)

	err := rec.Record(context.Background(), Event{EventType: EventPageView, Timestamp: 1, SessionID: "s1"})
	if err != nil {
		t.Errorf("publish failure must not fail the record: %v", err)
	}
}

func TestRecorder_RejectsBadEvents(t *testing.T) {
	rec := newTestRecorder(t, nil, nil)
	ctx := context.Background()

	if err := rec.Record(ctx, Event{EventType: EventPageView}); err == nil {
		t.Error("expected error for missing session id")
	}
	if err := rec.Record(ctx, Event{EventType: "made_up", SessionID: "s1"}); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestRecorder_FillsMissingTimestamp(t *testing.T) {
	rec := newTestRecorder(t, nil, nil)
	ctx := context.Background()

	if err := rec.Record(ctx, Event{EventType: EventPageView, SessionID: "s1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	doc, err := rec.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Sessions["s1"].Events[0].Timestamp == 0 {
		t.Error("expected timestamp to be filled in")
	}
}
