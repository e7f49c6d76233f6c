package response

import "encoding/json"

type AnalyzeResponse struct {
	Success     bool           `json:"success"`
	Method      string         `json:"method"`
	Timestamp   string         `json:"timestamp"`
	Results     AnalyzeResults `json:"results"`
	PrivacyNote string         `json:"privacy_note"`
	Notice      string         `json:"notice,omitempty"`
}

type AnalyzeResults struct {
	ChartData json.RawMessage `json:"chart_data"`
	Analysis  map[string]any  `json:"analysis"`
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
	RetryAfter *int   `json:"retry_after,omitempty"`
}
