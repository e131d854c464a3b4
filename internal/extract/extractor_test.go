package extract

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gifia/fraud-intel/internal/fetch"
	"github.com/gifia/fraud-intel/internal/model"
)

// mockAnalyzer returns a canned response and records the prompt it saw.
type mockAnalyzer struct {
	response string
	err      error
	prompt   string
}

func (m *mockAnalyzer) Analyze(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func page() *fetch.Result {
	return &fetch.Result{
		URL:   "https://example.gov/case1",
		Title: "Insurance agent sentenced",
		Text:  "An agent was sentenced for staging a death claim.",
	}
}

const validJSON = `{
	"Time": "2025年3月",
	"Region": "美国加州",
	"Characters": "张某, 某人寿保险公司",
	"Event": "寿险欺诈",
	"Process": "【风险画像】投保后三个月出险...",
	"Result": "判刑五年",
	"fraud_type": "staged death",
	"red_flags": ["投保后快速出险", "受益人变更"]
}`

func TestExtract_ParsesAnalyzerOutput(t *testing.T) {
	a := &mockAnalyzer{response: validJSON}
	e := NewExtractor(a, VariantSIU, 5)

	rec, err := e.Extract(context.Background(), page())
	require.NoError(t, err)

	assert.Equal(t, "2025年3月", rec.Time)
	assert.Equal(t, "寿险欺诈", rec.Event)
	assert.Equal(t, "staged death", rec.FraudType)
	assert.Equal(t, "投保后快速出险; 受益人变更", rec.RedFlags)
	assert.Equal(t, "https://example.gov/case1", rec.SourceURL)
	assert.False(t, rec.CreatedAt.IsZero())

	assert.Contains(t, a.prompt, "https://example.gov/case1")
	assert.Contains(t, a.prompt, "Insurance agent sentenced")
}

func TestExtract_StripsCodeFences(t *testing.T) {
	a := &mockAnalyzer{response: "```json\n" + validJSON + "\n```"}
	e := NewExtractor(a, VariantStandard, 5)

	rec, err := e.Extract(context.Background(), page())
	require.NoError(t, err)
	assert.Equal(t, "寿险欺诈", rec.Event)
}

func TestExtract_StripsControlCharacters(t *testing.T) {
	// A literal newline inside a JSON string value is invalid JSON until
	// control characters are removed.
	raw := "{\"Time\": \"2025\x01年\", \"Event\": \"health\nfraud\", \"Process\": \"细节\"}"
	a := &mockAnalyzer{response: raw}
	e := NewExtractor(a, VariantStandard, 2)

	rec, err := e.Extract(context.Background(), page())
	require.NoError(t, err)
	assert.Equal(t, "2025年", rec.Time)
	assert.Equal(t, "healthfraud", rec.Event)
}

func TestExtract_BackfillsMissingFields(t *testing.T) {
	a := &mockAnalyzer{response: `{"Event": "健康险欺诈", "Process": "经过说明文字"}`}
	e := NewExtractor(a, VariantStandard, 3)

	rec, err := e.Extract(context.Background(), page())
	require.NoError(t, err)

	assert.Equal(t, model.UnknownSentinel, rec.Time)
	assert.Equal(t, model.UnknownSentinel, rec.Region)
	assert.Equal(t, model.UnknownSentinel, rec.Characters)
	assert.Equal(t, model.UnknownSentinel, rec.Result)
	assert.Equal(t, "健康险欺诈", rec.Event)
}

func TestExtract_AnnotatesShortProcess(t *testing.T) {
	a := &mockAnalyzer{response: `{"Event": "欺诈", "Process": "太短"}`}
	e := NewExtractor(a, VariantSIU, 500)

	rec, err := e.Extract(context.Background(), page())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rec.Process, incompleteNote))
}

func TestExtract_EmptyProcessBecomesPending(t *testing.T) {
	a := &mockAnalyzer{response: `{"Event": "欺诈"}`}
	e := NewExtractor(a, VariantSIU, 500)

	rec, err := e.Extract(context.Background(), page())
	require.NoError(t, err)
	assert.Equal(t, model.PendingSentinel, rec.Process)
}

func TestExtract_MalformedOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json at all", "I could not find a case in this article."},
		{"truncated object", `{"Event": "fraud", "Process": }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockAnalyzer{response: tt.response}
			e := NewExtractor(a, VariantSIU, 500)

			_, err := e.Extract(context.Background(), page())
			assert.True(t, eris.Is(err, ErrMalformedOutput))
		})
	}
}

func TestExtract_AnalyzerErrorWrapped(t *testing.T) {
	a := &mockAnalyzer{err: eris.New("provider down")}
	e := NewExtractor(a, VariantSIU, 500)

	_, err := e.Extract(context.Background(), page())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze content")
}

func TestExtract_TruncatesLongContentOnRuneBoundary(t *testing.T) {
	a := &mockAnalyzer{response: validJSON}
	e := NewExtractor(a, VariantStandard, 5)

	p := page()
	// 9000 bytes of three-byte runes, so the byte cap falls mid-rune.
	p.Text = strings.Repeat("骗", 3000)

	_, err := e.Extract(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(a.prompt))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 8))
	assert.Equal(t, "骗保案", truncate("骗保案", 9))
	assert.Equal(t, "骗保", truncate("骗保案", 8))
	assert.Equal(t, "骗保", truncate("骗保案", 7))
}

// siuSectionHeaders lists the analysis sections the SIU prompt demands.
var siuSectionHeaders = []string{
	"【风险画像】",
	"【舞弊手法(MO)】",
	"【红旗指标(Red Flags)】",
	"【核查手段建议】",
	"【核保/风控启示】",
}

func TestRenderPrompt_SIUSections(t *testing.T) {
	p := renderPrompt(VariantSIU, "https://x.org", "title", "content", 500)
	for _, header := range siuSectionHeaders {
		assert.Contains(t, p, header)
	}
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON("prefix {\"a\":1} suffix"))
	assert.Equal(t, `{"a":1}`, cleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "", cleanJSON("no braces here"))
}
