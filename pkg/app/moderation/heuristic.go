package moderation

import (
	"context"
	"strings"

	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
)

const (
	heuristicWeight   = 0.3
	heuristicCap      = 0.9
	heuristicToxicMin = 0.3
)

var toxicKeywords = []string{
	"hate", "kill", "die", "stupid", "idiot", "dumb",
	"moron", "shut up", "go away", "loser", "pathetic", "worthless",
}

type heuristicStrategy struct{}

// NewHeuristicStrategy is the keyword matcher used when every upstream has failed.
// Every occurrence of a keyword is a hit. It never returns an error.
func NewHeuristicStrategy() Strategy {
	return heuristicStrategy{}
}

func (heuristicStrategy) Name() string {
	return MethodHeuristic
}

func (heuristicStrategy) Classify(_ context.Context, text string, _ float64) (*domain.Result, error) {
	lowered := strings.ToLower(text)
	hits := 0
	for _, word := range toxicKeywords {
		hits += strings.Count(lowered, word)
	}

	score := min(float64(hits)*heuristicWeight, heuristicCap)
	maxKey := domain.CategoryClean
	if score > heuristicToxicMin {
		maxKey = domain.CategoryToxic
	}

	return &domain.Result{
		IsFlagged: score > domain.FlagThreshold,
		MaxValue:  score,
		MaxKey:    maxKey,
		Categories: map[string]float64{
			domain.CategoryToxic: score,
			domain.CategoryClean: 1 - score,
		},
		Method: MethodHeuristic,
		Extras: map[string]any{"toxic_words_found": hits},
	}, nil
}
