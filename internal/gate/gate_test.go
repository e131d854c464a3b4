package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gifia/fraud-intel/internal/model"
)

// goodProcess builds a narrative that clears every check: long enough, all
// three story elements, red-flag detail.
func goodProcess(length int) string {
	base := "嫌疑人作案时伪造医疗记录骗取理赔，通过虚假单据逃避初审，" +
		"但理赔系统发现多份单据笔迹一致，调查人员顺藤摸瓜找到破绽，收集了充分证据。"
	var b strings.Builder
	for len([]rune(b.String())) < length {
		b.WriteString(base)
	}
	return b.String()
}

func completeRecord() *model.CaseRecord {
	return &model.CaseRecord{
		Time:       "2025年3月",
		Region:     "美国加州",
		Characters: "投保人张某, 某人寿保险公司",
		Event:      "寿险欺诈",
		Process:    goodProcess(650),
		Result:     "判处有期徒刑五年，罚金50万美元",
	}
}

func TestCheck_CompleteRecordPasses(t *testing.T) {
	g := New()

	res := g.Check(completeRecord())

	require.True(t, res.IsValid)
	assert.Equal(t, 1.0, res.OverallScore)
	assert.Equal(t, 1.0, res.ProcessScore)
	assert.Empty(t, res.Issues)
}

func TestCheck_ShortProcessWithoutRedFlagFails(t *testing.T) {
	g := New()
	rec := completeRecord()
	// 350 chars, mentions作案 and 逃避 but nothing about how it unraveled.
	rec.Process = strings.Repeat("嫌疑人作案后通过伪造材料逃避审核。", 22)
	require.Less(t, len([]rune(rec.Process)), 400)

	res := g.Check(rec)

	assert.False(t, res.IsValid)
	assert.LessOrEqual(t, res.ProcessScore, 0.3)
	assert.NotEmpty(t, res.Suggestions)
}

func TestCheck_WorthlessNarrativeLowersOverall(t *testing.T) {
	g := New()
	rec := completeRecord()
	// Every field populated, but the narrative is short and explains
	// nothing about how the scheme was detected.
	rec.Process = strings.Repeat("嫌疑人作案后通过伪造材料逃避审核。", 21)
	require.Less(t, len([]rune(rec.Process)), 400)

	res := g.Check(rec)

	assert.Less(t, res.OverallScore, 1.0)
	assert.InDelta(t, 5.0/6.0, res.OverallScore, 0.001)
	assert.Zero(t, res.ProcessScore)
	assert.False(t, res.IsValid)
}

func TestCheck_MediumProcessScoresSixTenths(t *testing.T) {
	g := New()
	rec := completeRecord()
	rec.Process = string([]rune(goodProcess(450))[:450])

	res := g.Check(rec)

	assert.InDelta(t, 0.6, res.ProcessScore, 0.001)
	assert.True(t, res.IsValid)
}

func TestCheck_MissingFieldsLowerOverall(t *testing.T) {
	g := New()
	rec := completeRecord()
	rec.Time = model.UnknownSentinel
	rec.Region = ""
	rec.Result = model.PendingSentinel

	res := g.Check(rec)

	assert.False(t, res.IsValid)
	assert.InDelta(t, 0.5, res.OverallScore, 0.001)
	assert.Len(t, res.Issues, 3)
}

func TestCheck_MissingStoryElementDeducts(t *testing.T) {
	g := New()
	rec := completeRecord()
	// Long narrative with no mention of how the scheme evaded review.
	rec.Process = strings.Repeat("嫌疑人作案时伪造文件，调查人员发现破绽并收集证据。", 30)
	require.GreaterOrEqual(t, len([]rune(rec.Process)), 600)

	res := g.Check(rec)

	// 1.0 minus 0.2 for the missing 逃避 element.
	assert.InDelta(t, 0.8, res.ProcessScore, 0.001)
	assert.True(t, res.IsValid)
}

func TestCheck_IncompleteMarkerDeductsRedFlag(t *testing.T) {
	g := New()
	rec := completeRecord()
	rec.Process = goodProcess(650) + "【红旗指标(Red Flags)】信息缺失"

	res := g.Check(rec)

	assert.InDelta(t, 0.7, res.ProcessScore, 0.001)
}
