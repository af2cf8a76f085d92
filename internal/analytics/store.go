package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store persists the append-only event log. Record returns the session after
// the event was applied, plus whether this event completed the analysis for
// the first time (the notification trigger).
type Store interface {
	Record(ctx context.Context, event Event) (*SessionAnalytics, bool, error)
	Load(ctx context.Context) (*Document, error)
	Close()
}

// applyEvent appends event to its session (creating it on first sight) and
// updates the derived fields. Returns whether completedAnalysis flipped.
func applyEvent(doc *Document, event Event) (*SessionAnalytics, bool) {
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]*SessionAnalytics)
	}

	session, ok := doc.Sessions[event.SessionID]
	if !ok {
		session = &SessionAnalytics{
			SessionID:  event.SessionID,
			StartTime:  event.Timestamp,
			Events:     []Event{},
			Situations: SituationStats{Lengths: []int{}},
		}
		doc.Sessions[event.SessionID] = session
	}

	session.Events = append(session.Events, event)

	completedNow := false
	switch event.EventType {
	case EventSituationSaved:
		if event.Data != nil && event.Data.SituationLength != nil {
			session.Situations.Lengths = append(session.Situations.Lengths, *event.Data.SituationLength)
			m := Median(session.Situations.Lengths)
			session.Situations.MedianLength = &m
		}
		index := 0
		if event.Data != nil && event.Data.SituationIndex != nil {
			index = *event.Data.SituationIndex
		}
		if index+1 > session.Situations.Count {
			session.Situations.Count = index + 1
		}
	case EventAnalysisCompleted:
		completedNow = !session.CompletedAnalysis
		session.CompletedAnalysis = true
	}

	doc.LastUpdated = time.Now().UnixMilli()
	return session, completedNow
}

// FileStore keeps the whole document in one JSON file. Every Record is a
// whole-document read-modify-write serialized under a single mutex, so
// concurrent writers cannot lose each other's events.
type FileStore struct {
	path string

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Record(_ context.Context, event Event) (*SessionAnalytics, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, false, err
	}

	session, completedNow := applyEvent(doc, event)

	if err := s.write(doc); err != nil {
		return nil, false, err
	}
	return session, completedNow, nil
}

func (s *FileStore) Load(_ context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Close() {}

func (s *FileStore) read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Sessions: map[string]*SessionAnalytics{}, LastUpdated: time.Now().UnixMilli()}, nil
		}
		return nil, fmt.Errorf("read analytics: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse analytics: %w", err)
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]*SessionAnalytics{}
	}
	return &doc, nil
}

func (s *FileStore) write(doc *Document) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analytics: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}
