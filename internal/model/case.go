package model

import (
	"strings"
	"time"
)

// UnknownSentinel marks a baseline field the extractor could not fill.
// Records are persisted with this value rather than a null column.
const UnknownSentinel = "未知"

// PendingSentinel is the alternate placeholder the extraction prompt allows.
const PendingSentinel = "待补充"

// CaseRecord is one harvested fraud incident. Records are append-only:
// created by a successful Extract→Validate→Dedup pass and never mutated.
type CaseRecord struct {
	ID         string    `json:"id,omitempty"`
	Time       string    `json:"time"`
	Region     string    `json:"region"`
	Characters string    `json:"characters"`
	Event      string    `json:"event"`
	Process    string    `json:"process"`
	Result     string    `json:"result"`
	SourceURL  string    `json:"source_url"`
	CreatedAt  time.Time `json:"created_at"`

	// SIU briefing fields. Populated by the SIU extractor variant and by
	// seed-case imports; empty for records from the standard variant.
	LineOfBusiness     string `json:"line_of_business,omitempty"`
	FraudType          string `json:"fraud_type,omitempty"`
	ModusOperandi      string `json:"modus_operandi,omitempty"`
	RedFlags           string `json:"red_flags,omitempty"`
	InvestigativeTips  string `json:"investigative_tips,omitempty"`
	UnderwritingAdvice string `json:"underwriting_advice,omitempty"`

	IsSeedCase  bool       `json:"is_seed_case,omitempty"`
	LastShownAt *time.Time `json:"last_shown_at,omitempty"`
}

// BaselineFields returns the six mandatory fields keyed by their
// canonical names.
func (c *CaseRecord) BaselineFields() map[string]string {
	return map[string]string{
		"Time":       c.Time,
		"Region":     c.Region,
		"Characters": c.Characters,
		"Event":      c.Event,
		"Process":    c.Process,
		"Result":     c.Result,
	}
}

// IsPlaceholder reports whether a field value is empty or one of the
// sentinel placeholders, i.e. carries no extracted information.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == UnknownSentinel || v == PendingSentinel
}
