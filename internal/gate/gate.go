// Package gate scores extracted case records for completeness and narrative
// quality before they are persisted.
package gate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gifia/fraud-intel/internal/model"
)

// Acceptance thresholds. A record passes only when both hold.
const (
	minOverallScore = 0.7
	minProcessScore = 0.6
)

// requiredParts are the narrative elements every usable case story covers:
// how the fraud was committed, how it evaded review, and how it unraveled.
var requiredParts = []string{"作案", "逃避", "破绽"}

// redFlagKeywords signal that the narrative explains what gave the fraud
// away. Matched against the lowercased process text.
var redFlagKeywords = []string{"破绽", "发现", "调查", "证据", "异常", "red flag"}

// Gate validates case records. The zero value is not usable; construct with
// New.
type Gate struct{}

// New returns a quality gate.
func New() *Gate {
	return &Gate{}
}

// Check scores the record across the six baseline fields and the process
// narrative. The returned result carries per-field scores and human-readable
// issues for rejected records.
func (g *Gate) Check(rec *model.CaseRecord) *model.ValidationResult {
	res := &model.ValidationResult{
		FieldScores: make(map[string]float64, 6),
	}

	for name, value := range rec.BaselineFields() {
		if model.IsPlaceholder(value) {
			res.Issues = append(res.Issues, fmt.Sprintf("字段 %s 缺失或为空", name))
			res.FieldScores[name] = 0
		} else {
			res.FieldScores[name] = 1
		}
	}

	res.ProcessScore = g.scoreProcess(rec.Process, res)

	// The graduated process score replaces the binary presence score in
	// the average, so a populated but worthless narrative drags the
	// overall score down.
	res.FieldScores["Process"] = res.ProcessScore

	var sum float64
	for _, s := range res.FieldScores {
		sum += s
	}
	res.OverallScore = sum / float64(len(res.FieldScores))

	res.IsValid = res.OverallScore >= minOverallScore && res.ProcessScore >= minProcessScore
	if !res.IsValid {
		if res.ProcessScore < minProcessScore {
			res.Suggestions = append(res.Suggestions, "经过描述质量不足，建议换下一个链接重试")
		}
		if res.OverallScore < minOverallScore {
			res.Suggestions = append(res.Suggestions, "整体完整度不足，建议重新提取")
		}
		zap.L().Debug("case rejected by quality gate",
			zap.Float64("overall_score", res.OverallScore),
			zap.Float64("process_score", res.ProcessScore),
			zap.Strings("issues", res.Issues))
	}
	return res
}

// scoreProcess grades the narrative: length first, then deductions for
// missing story elements and missing red-flag detail.
func (g *Gate) scoreProcess(process string, res *model.ValidationResult) float64 {
	length := len([]rune(process))

	var score float64
	switch {
	case length >= 600:
		score = 1.0
	case length >= 400:
		score = 0.6
	default:
		res.Issues = append(res.Issues,
			fmt.Sprintf("经过描述过短 (%d 字，要求至少 400 字)", length))
		score = 0.3
	}

	for _, part := range requiredParts {
		if !strings.Contains(process, part) {
			res.Issues = append(res.Issues, fmt.Sprintf("经过描述缺少 '%s' 部分", part))
			score -= 0.2
			if score < 0 {
				score = 0
			}
		}
	}

	lower := strings.ToLower(process)
	hasRedFlag := false
	for _, kw := range redFlagKeywords {
		if strings.Contains(lower, kw) {
			hasRedFlag = true
			break
		}
	}
	if !hasRedFlag || strings.Contains(process, "信息缺失") {
		res.Issues = append(res.Issues, "经过描述缺少破绽细节")
		score -= 0.3
		if score < 0 {
			score = 0
		}
	}

	return score
}
