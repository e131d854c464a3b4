package extract

import "fmt"

// Variant selects the prompt template and minimum narrative length.
type Variant string

const (
	// VariantStandard asks for the six baseline fields with a free-form
	// process narrative.
	VariantStandard Variant = "standard"
	// VariantSIU asks for the process narrative in the five-section SIU
	// briefing format.
	VariantSIU Variant = "siu"
)

// MinProcessChars returns the variant's default minimum narrative length,
// used when the configured minimum is zero.
func (v Variant) MinProcessChars() int {
	if v == VariantSIU {
		return 500
	}
	return 300
}

const standardPromptFmt = `你是一位全球保险反欺诈分析师。请从以下网页信息中提取保险欺诈案例，输出结构化摘要。

网页标题: %s
网页链接: %s
网页内容:
%s

【输出要求】
- 必须以纯 JSON 格式输出，不要包含任何 Markdown 标记或额外说明
- 字段名使用英文：Time, Region, Characters, Event, Process, Result
- Time: 事件发生或判决的具体时间；Region: 国家及城市；Characters: 涉案人员与机构（逗号分隔）；Event: 欺诈类型概括；Process: 案件经过（作案手法、如何逃避初审、破绽如何被发现），至少 %d 字；Result: 判决结果、罚金或法律制裁
- 所有字段都必须填写，如果信息缺失请填写"未知"或"待补充"

现在请开始分析：`

const siuPromptFmt = `你是一位全球寿险与健康险反欺诈专家（SIU 资深调查员）。请从以下网页信息中深度分析保险欺诈案例，并按照专业简报格式输出结构化摘要。

网页标题: %s
网页链接: %s
网页内容:
%s

【分析任务】
1. Time (时间): 事件发生或判决的具体时间
2. Region (地区): 国家及城市
3. Characters (人物/实体): 涉案人身份、保险公司、中介或医疗机构（用逗号分隔）
4. Event (事件): 欺诈类型概括（例如：寿险欺诈、健康险欺诈、医疗保险欺诈）
5. Process (经过): 严格使用以下5个标题输出结构化内容，文中未提及的条目标注"信息缺失"：
   【风险画像】投保时间、保额、出险间隔、是否在等待期内
   【舞弊手法(MO)】具体欺诈手段、使用的技术与文件、涉及的人员机构
   【红旗指标(Red Flags)】理赔中触发的警报、系统检测到的异常、人工审核发现的疑点
   【核查手段建议】确证方式、技术手段、证据收集方法
   【核保/风控启示】前端核保预警价值、应建立的风控规则、系统化改进建议
6. Result (结果): 判决结果、罚金或法律制裁（包括金额、刑期等）

【输出要求】
- 必须以纯 JSON 格式输出，不要包含任何 Markdown 标记或额外说明
- 所有字段都必须填写，如果信息缺失请填写"未知"或"待补充"
- Process 字段必须严格使用上述5个标题，至少 %d 字
- 字段名使用英文（Time, Region, Characters, Event, Process, Result），可额外输出 line_of_business, fraud_type, modus_operandi, red_flags, investigative_tips, underwriting_advice

现在请开始专业分析：`

// renderPrompt builds the extraction prompt for the variant.
func renderPrompt(v Variant, url, title, content string, minProcess int) string {
	if v == VariantSIU {
		return fmt.Sprintf(siuPromptFmt, title, url, content, minProcess)
	}
	return fmt.Sprintf(standardPromptFmt, title, url, content, minProcess)
}
