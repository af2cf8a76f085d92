package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Notifier delivers the operator "new analysis" message.
type Notifier interface {
	NotifyNewAnalysis(ctx context.Context, situationsCount int, sessionID string, timestamp int64) error
}

// Publisher fans events out to a message bus for other consumers.
type Publisher interface {
	Publish(subject string, data any) error
}

const (
	SubjectEvent             = "inversion.analytics.event"
	SubjectAnalysisCompleted = "inversion.analysis.completed"
)

// Recorder is the write path: it validates and stores events, and triggers the
// side effects for analysis completion. Notification or publish failures are
// logged and never fail the triggering request.
type Recorder struct {
	store     Store
	notifier  Notifier
	publisher Publisher
	logger    *slog.Logger
}

func NewRecorder(store Store, notifier Notifier, publisher Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, notifier: notifier, publisher: publisher, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, event Event) error {
	if event.SessionID == "" {
		return fmt.Errorf("event has no session id")
	}
	if !event.EventType.Valid() {
		return fmt.Errorf("unknown event type %q", event.EventType)
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	session, completedNow, err := r.store.Record(ctx, event)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(SubjectEvent, event); err != nil {
			r.logger.Warn("failed to publish analytics event", "type", event.EventType, "error", err)
		}
	}

	if completedNow {
		r.notifyCompleted(ctx, session, event)
	}
	return nil
}

func (r *Recorder) Load(ctx context.Context) (*Document, error) {
	return r.store.Load(ctx)
}

func (r *Recorder) notifyCompleted(ctx context.Context, session *SessionAnalytics, event Event) {
	if r.publisher != nil {
		if err := r.publisher.Publish(SubjectAnalysisCompleted, map[string]any{
			"sessionId":       session.SessionID,
			"situationsCount": session.Situations.Count,
			"timestamp":       event.Timestamp,
		}); err != nil {
			r.logger.Warn("failed to publish completion", "session", session.SessionID, "error", err)
		}
	}

	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyNewAnalysis(ctx, session.Situations.Count, session.SessionID, event.Timestamp); err != nil {
		r.logger.Warn("operator notification failed", "session", session.SessionID, "error", err)
	}
}
