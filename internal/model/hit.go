package model

// SearchHit is one ranked result from the search provider. Hits are
// ephemeral: consumed by the fetch/extract stages and never persisted.
type SearchHit struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	IsHotspot bool    `json:"is_hotspot,omitempty"`
}

// ValidationResult is the quality gate's verdict for one extracted record.
type ValidationResult struct {
	IsValid      bool               `json:"is_valid"`
	OverallScore float64            `json:"overall_score"`
	ProcessScore float64            `json:"process_score"`
	FieldScores  map[string]float64 `json:"field_scores"`
	Issues       []string           `json:"issues"`
	Suggestions  []string           `json:"suggestions"`
}

// RunSummary is the outward signal of one pipeline run.
type RunSummary struct {
	Processed int `json:"processed"`
	Saved     int `json:"saved"`
	Skipped   int `json:"skipped"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
	Harvested int `json:"harvested"`
}
