package analytics

import "sort"

// Median returns the middle value of xs, or the mean of the two middle values
// for even lengths, or 0 for an empty slice.
func Median(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return float64(sorted[mid])
}

// Aggregate folds the whole document into funnel counts and medians.
// It recomputes from scratch on every call; the document is small.
func Aggregate(doc *Document) Aggregated {
	agg := Aggregated{}
	if doc == nil {
		return agg
	}

	unique := make(map[string]struct{}, len(doc.Sessions))
	var situationCounts []int
	var situationLengths []int

	for _, session := range doc.Sessions {
		unique[session.SessionID] = struct{}{}

		for _, event := range session.Events {
			switch event.EventType {
			case EventPageView:
				agg.ConversionFunnel.PageViews++
			case EventSituationStarted:
				agg.ConversionFunnel.StartedSituation++
			case EventSituationSaved:
				agg.ConversionFunnel.SavedSituation++
				if event.Data != nil && event.Data.SituationLength != nil {
					situationLengths = append(situationLengths, *event.Data.SituationLength)
				}
			case EventAnalysisCompleted:
				agg.ConversionFunnel.CompletedAnalysis++
			case EventFeathersClicked:
				agg.ConversionFunnel.ClickedFeathers++
			case EventActivitiesClicked:
				agg.ConversionFunnel.ClickedActivities++
			case EventCopyClicked:
				agg.ConversionFunnel.ClickedCopy++
			case EventTelegramClicked:
				agg.ConversionFunnel.ClickedTelegram++
			}
		}

		if session.Situations.Count > 0 {
			situationCounts = append(situationCounts, session.Situations.Count)
		}
	}

	agg.TotalSessions = len(doc.Sessions)
	agg.UniqueVisitors = len(unique)
	agg.MedianSituationsPerUser = Median(situationCounts)
	agg.MedianSituationLength = Median(situationLengths)
	return agg
}
