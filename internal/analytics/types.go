package analytics

// EventType names a UI milestone.
type EventType string

const (
	EventPageView          EventType = "page_view"
	EventSituationStarted  EventType = "situation_started"
	EventSituationSaved    EventType = "situation_saved"
	EventAnalysisStarted   EventType = "analysis_started"
	EventAnalysisCompleted EventType = "analysis_completed"
	EventFeathersClicked   EventType = "feathers_clicked"
	EventActivitiesClicked EventType = "activities_clicked"
	EventCopyClicked       EventType = "copy_clicked"
	EventTelegramClicked   EventType = "telegram_clicked"
)

func (e EventType) Valid() bool {
	switch e {
	case EventPageView, EventSituationStarted, EventSituationSaved,
		EventAnalysisStarted, EventAnalysisCompleted, EventFeathersClicked,
		EventActivitiesClicked, EventCopyClicked, EventTelegramClicked:
		return true
	}
	return false
}

// EventData is the optional small payload attached to an event.
type EventData struct {
	SituationIndex  *int `json:"situationIndex,omitempty"`
	SituationLength *int `json:"situationLength,omitempty"`
	SituationsCount *int `json:"situationsCount,omitempty"`
}

// Event is one append-only analytics record.
type Event struct {
	EventType EventType  `json:"eventType"`
	Timestamp int64      `json:"timestamp"`
	SessionID string     `json:"sessionId"`
	Data      *EventData `json:"data,omitempty"`
}

// SituationStats tracks saved situations within a session. Count is
// "max seen situationIndex+1", so a re-save at the same index does not
// double-count.
type SituationStats struct {
	Count        int      `json:"count"`
	Lengths      []int    `json:"lengths"`
	MedianLength *float64 `json:"medianLength,omitempty"`
}

// SessionAnalytics is the per-session event log plus derived fields.
type SessionAnalytics struct {
	SessionID         string         `json:"sessionId"`
	StartTime         int64          `json:"startTime"`
	Events            []Event        `json:"events"`
	Situations        SituationStats `json:"situations"`
	CompletedAnalysis bool           `json:"completedAnalysis"`
}

// Document is the whole persisted analytics state.
type Document struct {
	Sessions    map[string]*SessionAnalytics `json:"sessions"`
	LastUpdated int64                        `json:"lastUpdated"`
}

// Funnel counts occurrences of each milestone across all sessions' events.
type Funnel struct {
	PageViews         int `json:"pageViews"`
	StartedSituation  int `json:"startedSituation"`
	SavedSituation    int `json:"savedSituation"`
	CompletedAnalysis int `json:"completedAnalysis"`
	ClickedFeathers   int `json:"clickedFeathers"`
	ClickedActivities int `json:"clickedActivities"`
	ClickedCopy       int `json:"clickedCopy"`
	ClickedTelegram   int `json:"clickedTelegram"`
}

// Aggregated is the rollup the operator surfaces read.
type Aggregated struct {
	TotalSessions           int     `json:"totalSessions"`
	UniqueVisitors          int     `json:"uniqueVisitors"`
	ConversionFunnel        Funnel  `json:"conversionFunnel"`
	MedianSituationsPerUser float64 `json:"medianSituationsPerUser"`
	MedianSituationLength   float64 `json:"medianSituationLength"`
}
