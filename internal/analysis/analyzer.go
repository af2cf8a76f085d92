package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inversion-lab/inversion/internal/anthropic"
	"github.com/inversion-lab/inversion/internal/jsonext"
)

const (
	maxTokensAnalysis   = 4096
	maxTokensFeathers   = 2048
	maxTokensActivities = 3072
)

// Analyzer orchestrates the three LLM analysis actions.
type Analyzer struct {
	llm    *anthropic.Client
	logger *slog.Logger
}

func New(llm *anthropic.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: llm, logger: logger}
}

// Analyze runs the primary per-situation analysis. The returned Analyses are
// correlated to the input by echoed id, falling back to position when the
// model dropped or mangled the ids.
func (a *Analyzer) Analyze(ctx context.Context, situations []Situation) (*AnalysisResult, error) {
	nonEmpty := 0
	for _, s := range situations {
		if strings.TrimSpace(s.Text) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, &ValidationError{Msg: "no situations provided"}
	}

	a.logger.Info("analyzing situations", "count", len(situations))

	raw, err := a.complete(ctx, BuildAnalysisPrompt(situations), maxTokensAnalysis)
	if err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &jsonext.ExtractionError{Reason: fmt.Sprintf("decode analysis: %v", err), Snippet: head(raw)}
	}
	if len(result.Analyses) != len(situations) {
		return nil, &jsonext.ExtractionError{
			Reason:  fmt.Sprintf("expected %d analyses, got %d", len(situations), len(result.Analyses)),
			Snippet: head(raw),
		}
	}
	for _, an := range result.Analyses {
		for _, q := range an.Qualities {
			if !q.Category.Valid() {
				return nil, &jsonext.ExtractionError{
					Reason:  fmt.Sprintf("unknown quality category %q", q.Category),
					Snippet: head(raw),
				}
			}
		}
	}

	result.Analyses = correlate(situations, result.Analyses)

	a.logger.Info("analysis complete",
		"analyses", len(result.Analyses),
		"ratings", len(result.QualityRatings),
	)
	return &result, nil
}

// Feathers generates counter-habit suggestions. Situations without prior
// analyses contribute empty summaries rather than failing the call.
func (a *Analyzer) Feathers(ctx context.Context, situations []Situation) (*FeatherInsight, error) {
	qualities, duals := collectQualities(situations)

	a.logger.Info("generating feathers", "qualities", len(qualities), "duals", len(duals))

	raw, err := a.complete(ctx, BuildFeathersPrompt(qualities, duals), maxTokensFeathers)
	if err != nil {
		return nil, err
	}

	var insight FeatherInsight
	if err := json.Unmarshal(raw, &insight); err != nil {
		return nil, &jsonext.ExtractionError{Reason: fmt.Sprintf("decode feathers: %v", err), Snippet: head(raw)}
	}

	// Legacy callers read the flat list; newer ones the structured form.
	if len(insight.Feathers) == 0 && insight.FeathersStructured != nil {
		insight.Feathers = append(insight.Feathers, insight.FeathersStructured.Moment...)
		insight.Feathers = append(insight.Feathers, insight.FeathersStructured.Mindset...)
		insight.Feathers = append(insight.Feathers, insight.FeathersStructured.Regular...)
	}
	return &insight, nil
}

// Activities generates role, income, celebrity and hobby suggestions.
func (a *Analyzer) Activities(ctx context.Context, situations []Situation) (*FeatherInsight, error) {
	qualities, duals := collectQualities(situations)
	ratings := frequencyRatings(situations)

	a.logger.Info("generating activities", "qualities", len(qualities))

	raw, err := a.complete(ctx, BuildActivitiesPrompt(qualities, duals, ratings), maxTokensActivities)
	if err != nil {
		return nil, err
	}

	var insight FeatherInsight
	if err := json.Unmarshal(raw, &insight); err != nil {
		return nil, &jsonext.ExtractionError{Reason: fmt.Sprintf("decode activities: %v", err), Snippet: head(raw)}
	}
	if len(insight.Activities) == 0 {
		insight.Activities = append(insight.Activities, insight.Hobbies...)
	}
	return &insight, nil
}

func (a *Analyzer) complete(ctx context.Context, prompt string, maxTokens int) (json.RawMessage, error) {
	text, err := a.llm.Complete(ctx, systemPrompt, []anthropic.Message{{Role: "user", Content: prompt}}, maxTokens)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	raw, err := jsonext.Extract(text)
	if err != nil {
		a.logger.Error("no parseable JSON in model reply", "error", err)
		return nil, err
	}
	return raw, nil
}

// correlate orders analyses to match the situations slice by echoed id.
// When ids are missing or collide the original positions are kept.
func correlate(situations []Situation, analyses []SituationAnalysis) []SituationAnalysis {
	byID := make(map[int]SituationAnalysis, len(analyses))
	usable := true
	for _, an := range analyses {
		if an.ID == 0 {
			usable = false
			break
		}
		if _, dup := byID[an.ID]; dup {
			usable = false
			break
		}
		byID[an.ID] = an
	}
	if !usable {
		return analyses
	}

	ordered := make([]SituationAnalysis, 0, len(situations))
	for _, s := range situations {
		an, ok := byID[s.ID]
		if !ok {
			return analyses
		}
		ordered = append(ordered, an)
	}
	return ordered
}

func collectQualities(situations []Situation) ([]string, []Dual) {
	var qualities []string
	var duals []Dual
	for _, s := range situations {
		if s.Analysis == nil {
			continue
		}
		for _, q := range s.Analysis.Qualities {
			qualities = append(qualities, q.Name)
		}
		duals = append(duals, s.Analysis.Duals...)
	}
	return qualities, duals
}

// frequencyRatings counts quality occurrences across all analyses,
// preserving first-seen order for equal counts.
func frequencyRatings(situations []Situation) []QualityRating {
	index := make(map[string]int)
	var ratings []QualityRating
	for _, s := range situations {
		if s.Analysis == nil {
			continue
		}
		for _, q := range s.Analysis.Qualities {
			if i, ok := index[q.Name]; ok {
				ratings[i].Count++
				continue
			}
			index[q.Name] = len(ratings)
			ratings = append(ratings, QualityRating{Quality: q.Name, Count: 1, Category: string(q.Category)})
		}
	}
	return ratings
}

func head(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 500 {
		return s[:500]
	}
	return s
}
