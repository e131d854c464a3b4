// Package extract turns fetched article text into structured fraud case
// records via an LLM analyzer.
package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gifia/fraud-intel/internal/fetch"
	"github.com/gifia/fraud-intel/internal/model"
)

// ErrMalformedOutput indicates the analyzer returned text that could not be
// parsed into a case record even after cleanup.
var ErrMalformedOutput = eris.New("extract: malformed analyzer output")

// maxContentChars caps the article text embedded in the prompt.
const maxContentChars = 8000

// incompleteNote is appended to narratives that fall short of the minimum
// length so downstream review can spot them.
const incompleteNote = "\n\n【信息不完整】内容待补充"

// Analyzer is the LLM surface the extractor depends on.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Extractor renders prompts, invokes the analyzer and normalizes the result.
type Extractor struct {
	analyzer        Analyzer
	variant         Variant
	minProcessChars int
}

// NewExtractor builds an Extractor. A zero minProcessChars falls back to the
// variant's default.
func NewExtractor(analyzer Analyzer, variant Variant, minProcessChars int) *Extractor {
	if minProcessChars <= 0 {
		minProcessChars = variant.MinProcessChars()
	}
	return &Extractor{
		analyzer:        analyzer,
		variant:         variant,
		minProcessChars: minProcessChars,
	}
}

// rawCase mirrors the JSON shape the prompt asks for.
type rawCase struct {
	Time               string      `json:"Time"`
	Region             string      `json:"Region"`
	Characters         string      `json:"Characters"`
	Event              string      `json:"Event"`
	Process            string      `json:"Process"`
	Result             string      `json:"Result"`
	LineOfBusiness     string      `json:"line_of_business"`
	FraudType          string      `json:"fraud_type"`
	ModusOperandi      string      `json:"modus_operandi"`
	RedFlags           stringOrSli `json:"red_flags"`
	InvestigativeTips  stringOrSli `json:"investigative_tips"`
	UnderwritingAdvice string      `json:"underwriting_advice"`
}

// stringOrSli accepts either a JSON string or an array of strings; analyzers
// are not consistent about which they emit.
type stringOrSli string

func (s *stringOrSli) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = stringOrSli(str)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = stringOrSli(strings.Join(items, "; "))
	return nil
}

// Extract analyzes a fetched page and returns a populated case record.
func (e *Extractor) Extract(ctx context.Context, page *fetch.Result) (*model.CaseRecord, error) {
	content := truncate(page.Text, maxContentChars)

	prompt := renderPrompt(e.variant, page.URL, page.Title, content, e.minProcessChars)

	out, err := e.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, eris.Wrap(err, "extract: analyze content")
	}

	rec, err := e.parse(out)
	if err != nil {
		return nil, err
	}

	rec.SourceURL = page.URL
	rec.CreatedAt = time.Now().UTC()
	e.normalize(rec)
	return rec, nil
}

func (e *Extractor) parse(out string) (*model.CaseRecord, error) {
	cleaned := stripControl(cleanJSON(out))
	if cleaned == "" {
		return nil, eris.Wrap(ErrMalformedOutput, "empty analyzer response")
	}

	var raw rawCase
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Debug("analyzer output failed to parse",
			zap.Error(err),
			zap.Int("length", len(cleaned)))
		return nil, eris.Wrap(ErrMalformedOutput, err.Error())
	}

	return &model.CaseRecord{
		Time:               raw.Time,
		Region:             raw.Region,
		Characters:         raw.Characters,
		Event:              raw.Event,
		Process:            raw.Process,
		Result:             raw.Result,
		LineOfBusiness:     raw.LineOfBusiness,
		FraudType:          raw.FraudType,
		ModusOperandi:      raw.ModusOperandi,
		RedFlags:           string(raw.RedFlags),
		InvestigativeTips:  string(raw.InvestigativeTips),
		UnderwritingAdvice: string(raw.UnderwritingAdvice),
	}, nil
}

// normalize backfills empty baseline fields with the unknown sentinel and
// annotates narratives that fall short of the minimum length.
func (e *Extractor) normalize(rec *model.CaseRecord) {
	fill := func(v *string) {
		if strings.TrimSpace(*v) == "" {
			*v = model.UnknownSentinel
		}
	}
	fill(&rec.Time)
	fill(&rec.Region)
	fill(&rec.Characters)
	fill(&rec.Event)
	fill(&rec.Result)

	rec.Process = strings.TrimSpace(rec.Process)
	if rec.Process == "" {
		rec.Process = model.PendingSentinel
		return
	}
	if len([]rune(rec.Process)) < e.minProcessChars && !strings.Contains(rec.Process, "信息不完整") {
		rec.Process += incompleteNote
	}
}

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripControl removes control characters that break JSON decoding. Literal
// newlines inside string values are the usual offender.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1f || (r >= 0x7f && r <= 0x9f) {
			return -1
		}
		return r
	}, s)
}
