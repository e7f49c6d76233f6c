package moderation

import "encoding/json"

const (
	CategoryToxic = "toxic"
	CategoryClean = "clean"

	// FlagThreshold is the score above which a result is flagged.
	FlagThreshold = 0.5
)

// Result is the canonical moderation outcome, whatever strategy produced it.
type Result struct {
	IsFlagged  bool               `json:"is_flagged"`
	MaxValue   float64            `json:"max_value"`
	MaxKey     string             `json:"max_key"`
	Categories map[string]float64 `json:"categories"`
	Method     string             `json:"method"`
	ChartData  json.RawMessage    `json:"chart_data,omitempty"`
	// Extras are provider specific fields that are passed through untouched.
	Extras map[string]any `json:"-"`
	// Fallback is set when the result did not come from the first strategy in the chain.
	Fallback bool `json:"-"`
}

// Analysis renders the result as the "analysis" object returned to the frontend.
func (r *Result) Analysis(textLength int, safer float64) map[string]any {
	analysis := make(map[string]any, len(r.Extras)+8)
	for k, v := range r.Extras {
		analysis[k] = v
	}
	categories := r.Categories
	if categories == nil {
		categories = map[string]float64{}
	}
	analysis["text_analyzed"] = textLength
	analysis["max_value"] = r.MaxValue
	analysis["max_key"] = r.MaxKey
	analysis["is_flagged"] = r.IsFlagged
	analysis["categories"] = categories
	analysis["safer_value"] = safer
	analysis["method"] = r.Method
	if r.Fallback {
		analysis["fallback_method"] = true
	}
	return analysis
}
