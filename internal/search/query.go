// Package search wraps the Tavily API with a fraud-case-focused query
// builder and result filtering.
package search

import "strings"

// maxQueryChars is the search API's hard limit on query length.
const maxQueryChars = 400

// fallbackQuery is substituted when the composed query would exceed the
// character budget.
const fallbackQuery = "life insurance fraud case OR health insurance fraud case OR accident insurance fraud case -property -auto 2025 2026"

// caseKeywords mark concrete case coverage, as opposed to industry
// commentary. Hits must contain at least one to survive filtering.
var caseKeywords = []string{
	"charged with fraud",
	"convicted of fraud",
	"fraud case",
	"fraud scheme",
	"arrested for insurance fraud",
	"sentenced for insurance fraud",
	"court case insurance fraud",
	"prosecution insurance fraud",
}

// insuranceLines are the in-scope lines of business.
var insuranceLines = []string{
	"life insurance fraud",
	"health insurance fraud",
	"accident insurance fraud",
	"medical insurance fraud",
	"disability insurance fraud",
}

// excludeKeywords mark out-of-scope lines (property and motor).
var excludeKeywords = []string{
	"property insurance",
	"auto insurance fraud",
	"car insurance fraud",
	"vehicle insurance",
	"home insurance",
	"house insurance",
}

// genericKeywords mark market commentary rather than case reporting.
var genericKeywords = []string{
	"market report",
	"market size",
	"industry outlook",
	"global market",
	"forecast",
	"trends",
	"analysis report",
	"research report",
}

// hotspotKeywords drive the news-mode sweep for high-attention cases.
var hotspotKeywords = []string{
	"systemic insurance fraud",
	"massive insurance fraud scheme",
	"insurance fraud corruption",
	"widespread insurance fraud",
	"insurance fraud scandal",
}

// BuildQuery composes the boolean search query: an OR clause over the
// leading case keywords, an OR clause over the in-scope insurance lines,
// negative terms for excluded lines, and a recency qualifier. Queries over
// the 400-character budget fall back to a pre-shortened form.
func BuildQuery() string {
	caseClause := strings.Join(caseKeywords[:3], " OR ")
	lineClause := strings.Join(insuranceLines[:3], " OR ")

	q := caseClause + " " + lineClause + " -property insurance -auto insurance 2025 2026"
	if len(q) > maxQueryChars {
		return fallbackQuery
	}
	return q
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
