package response

import "github.com/NeuralTrust/TextModerator/pkg/app/moderation"

type HealthResponse struct {
	Status            string                      `json:"status"`
	Timestamp         string                      `json:"timestamp"`
	Strategies        []moderation.StrategyStatus `json:"strategies"`
	PrimaryAPIStatus  string                      `json:"primary_api_status"`
	FallbackAvailable bool                        `json:"fallback_available"`
	CheckedAt         string                      `json:"checked_at"`
}

type ConnectionResult struct {
	Available bool    `json:"available"`
	Working   bool    `json:"working"`
	Error     *string `json:"error"`
}

type TestConnectionResponse struct {
	Success       bool                        `json:"success"`
	Results       map[string]ConnectionResult `json:"results"`
	OverallStatus string                      `json:"overall_status"`
	Timestamp     string                      `json:"timestamp"`
}
