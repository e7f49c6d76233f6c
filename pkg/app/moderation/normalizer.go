package moderation

import (
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/infra/classifier"
	"github.com/valyala/fastjson"
)

// Numeric analysis fields that describe the result rather than a category.
var reservedAnalysisKeys = map[string]struct{}{
	"max_value":     {},
	"sum_value":     {},
	"safer_value":   {},
	"safer":         {},
	"text_analyzed": {},
}

// Normalize turns any provider prediction into the canonical result.
func Normalize(prediction *classifier.Prediction, method string) (*domain.Result, error) {
	if prediction == nil {
		return nil, fmt.Errorf("%w: empty prediction", domain.ErrParse)
	}
	switch {
	case prediction.Analysis != nil:
		return NormalizeAnalysis(prediction.Analysis, prediction.ChartData, method)
	case prediction.Labels != nil:
		return NormalizeLabels(prediction.Labels, method), nil
	case prediction.Scores != nil:
		return NormalizeScores(prediction.Scores, method), nil
	default:
		return nil, fmt.Errorf("%w: prediction from %s carries no scores", domain.ErrParse, prediction.Provider)
	}
}

// NormalizeLabels folds a label list into toxic/clean plus any other named labels.
func NormalizeLabels(labels []classifier.Label, method string) *domain.Result {
	categories := make(map[string]float64, len(labels))
	for _, l := range labels {
		name := strings.ToLower(strings.TrimSpace(l.Label))
		switch {
		case strings.Contains(name, "non-toxic"), strings.Contains(name, domain.CategoryClean):
			name = domain.CategoryClean
		case strings.Contains(name, domain.CategoryToxic):
			name = domain.CategoryToxic
		}
		if current, ok := categories[name]; !ok || l.Score > current {
			categories[name] = l.Score
		}
	}
	return scoredResult(categories, method)
}

// NormalizeScores applies the max and flag rule to a category score map.
func NormalizeScores(scores map[string]float64, method string) *domain.Result {
	categories := make(map[string]float64, len(scores))
	for k, v := range scores {
		categories[k] = v
	}
	return scoredResult(categories, method)
}

func scoredResult(categories map[string]float64, method string) *domain.Result {
	maxKey, maxValue := maxCategory(categories)
	return &domain.Result{
		IsFlagged:  maxValue > domain.FlagThreshold,
		MaxValue:   maxValue,
		MaxKey:     maxKey,
		Categories: categories,
		Method:     method,
	}
}

// maxCategory is the highest non-clean category, clean/0 when there is none above zero.
func maxCategory(categories map[string]float64) (string, float64) {
	maxKey, maxValue := domain.CategoryClean, 0.0
	for k, v := range categories {
		if k == domain.CategoryClean {
			continue
		}
		if v > maxValue || (v == maxValue && v > 0 && k < maxKey) {
			maxKey, maxValue = k, v
		}
	}
	return maxKey, maxValue
}

// NormalizeAnalysis reads the primary's analysis object. Its own max and flag fields win
// over computed ones. Every field is passed through to the response.
func NormalizeAnalysis(analysis json.RawMessage, chartData json.RawMessage, method string) (*domain.Result, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(analysis)
	if err != nil {
		return nil, fmt.Errorf("%w: analysis: %w", domain.ErrParse, err)
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: analysis is not an object", domain.ErrParse)
	}

	categories := make(map[string]float64)
	obj.Visit(func(key []byte, field *fastjson.Value) {
		if field.Type() != fastjson.TypeNumber {
			return
		}
		if _, reserved := reservedAnalysisKeys[string(key)]; reserved {
			return
		}
		categories[string(key)] = field.GetFloat64()
	})

	result := scoredResult(categories, method)
	if mv := v.Get("max_value"); mv != nil && mv.Type() == fastjson.TypeNumber {
		result.MaxValue = mv.GetFloat64()
		result.IsFlagged = result.MaxValue > domain.FlagThreshold
	}
	if mk := v.GetStringBytes("max_key"); len(mk) > 0 {
		result.MaxKey = string(mk)
	}
	if flagged := v.Get("is_flagged"); flagged != nil {
		switch flagged.Type() {
		case fastjson.TypeTrue:
			result.IsFlagged = true
		case fastjson.TypeFalse:
			result.IsFlagged = false
		}
	}

	var extras map[string]any
	if err := json.Unmarshal(analysis, &extras); err != nil {
		return nil, fmt.Errorf("%w: analysis: %w", domain.ErrParse, err)
	}
	result.Extras = extras
	if len(chartData) > 0 {
		result.ChartData = chartData
	}
	return result, nil
}
