package analysis

import "encoding/json"

// Category classifies a character quality.
type Category string

const (
	CategoryEmotional  Category = "emotional"
	CategoryBehavioral Category = "behavioral"
	CategoryCognitive  Category = "cognitive"
	CategoryWillpower  Category = "willpower"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEmotional, CategoryBehavioral, CategoryCognitive, CategoryWillpower:
		return true
	}
	return false
}

// Situation is one user-authored narrative of a personal setback. ID is the
// stable user-visible ordinal; it travels through the prompt and back so
// analyses can be correlated without trusting response order.
type Situation struct {
	ID       int                `json:"id"`
	Text     string             `json:"text"`
	Analysis *SituationAnalysis `json:"analysis,omitempty"`
}

// Quality is a named character trait with a category and valence.
type Quality struct {
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	IsNegative bool     `json:"isNegative"`
}

// Dual is the reframed positive counterpart of a negative quality.
type Dual struct {
	Quality     string `json:"quality"`
	Positive    string `json:"positive"`
	Explanation string `json:"explanation"`
}

// SituationAnalysis is produced once per situation by the primary LLM call.
type SituationAnalysis struct {
	ID               int       `json:"id,omitempty"`
	ShortDescription string    `json:"shortDescription"`
	Qualities        []Quality `json:"qualities"`
	Duals            []Dual    `json:"duals"`
}

// QualityRating is the model's own frequency rollup across all situations.
type QualityRating struct {
	Quality  string `json:"quality"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// AnalysisResult is the primary-analysis response.
type AnalysisResult struct {
	Analyses       []SituationAnalysis `json:"analyses"`
	QualityRatings []QualityRating     `json:"qualityRatings"`
}

// FeathersStructured splits counter-habits by cadence.
type FeathersStructured struct {
	Moment  []string `json:"moment"`
	Mindset []string `json:"mindset"`
	Regular []string `json:"regular"`
}

// Role is a suggested occupation with its rationale.
type Role struct {
	Role string `json:"role"`
	Type string `json:"type"`
	Why  string `json:"whyComfortable"`
}

// MoneyIdea is an income opportunity ranked by estimated success probability.
type MoneyIdea struct {
	Idea               string `json:"idea"`
	Explanation        string `json:"explanation"`
	SuccessProbability int    `json:"successProbability"`
}

// Celebrity is a look-alike reference. Older model outputs return a bare name
// string, newer ones an object with a wiki identifier for portrait lookup.
type Celebrity struct {
	Name   string `json:"name"`
	WikiID string `json:"wikiId,omitempty"`
}

func (c *Celebrity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		return nil
	}
	type celebrity Celebrity
	var full celebrity
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*c = Celebrity(full)
	return nil
}

// FeatherInsight accumulates follow-up suggestions across the feathers and
// activities calls. Each call only fills its own sub-fields; Merge keeps the
// bag additive.
type FeatherInsight struct {
	Summary    string   `json:"summary,omitempty"`
	Feathers   []string `json:"feathers,omitempty"`
	Activities []string `json:"activities,omitempty"`

	FeathersStructured *FeathersStructured `json:"feathersStructured,omitempty"`
	UniqueActions      []string            `json:"uniqueActions,omitempty"`

	SortedWeakQualities   []string    `json:"sortedWeakQualities,omitempty"`
	SortedStrongQualities []string    `json:"sortedStrongQualities,omitempty"`
	Roles                 []Role      `json:"roles,omitempty"`
	MoneyIdeas            []MoneyIdea `json:"moneyIdeas,omitempty"`
	Hobbies               []string    `json:"hobbies,omitempty"`
	Celebrities           []Celebrity `json:"celebrities,omitempty"`
}

// Merge copies other's fields into empty fields of f. Already-populated
// fields are never overwritten.
func (f *FeatherInsight) Merge(other *FeatherInsight) {
	if other == nil {
		return
	}
	if f.Summary == "" {
		f.Summary = other.Summary
	}
	if len(f.Feathers) == 0 {
		f.Feathers = other.Feathers
	}
	if len(f.Activities) == 0 {
		f.Activities = other.Activities
	}
	if f.FeathersStructured == nil {
		f.FeathersStructured = other.FeathersStructured
	}
	if len(f.UniqueActions) == 0 {
		f.UniqueActions = other.UniqueActions
	}
	if len(f.SortedWeakQualities) == 0 {
		f.SortedWeakQualities = other.SortedWeakQualities
	}
	if len(f.SortedStrongQualities) == 0 {
		f.SortedStrongQualities = other.SortedStrongQualities
	}
	if len(f.Roles) == 0 {
		f.Roles = other.Roles
	}
	if len(f.MoneyIdeas) == 0 {
		f.MoneyIdeas = other.MoneyIdeas
	}
	if len(f.Hobbies) == 0 {
		f.Hobbies = other.Hobbies
	}
	if len(f.Celebrities) == 0 {
		f.Celebrities = other.Celebrities
	}
}
