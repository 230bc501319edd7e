package gencase

import (
	"strings"

	"autocase/internal/featurepoint"
	"autocase/internal/llm"
)

// BuildRequest 是纯函数：同样的输入总是产出字节相同的 userContent。
// attempt > 0 时在基础内容末尾追加纠正后缀，不替换基础内容。
func BuildRequest(systemPrompt string, fp featurepoint.FeaturePoint, attempt int, retrySuffix string) llm.Request {
	content := buildUserContent(fp)
	if attempt > 0 && strings.TrimSpace(retrySuffix) != "" {
		content = content + "\n\n" + retrySuffix
	}
	return llm.Request{
		SystemPrompt: systemPrompt,
		UserContent:  content,
		RetryAttempt: attempt,
	}
}

func buildUserContent(fp featurepoint.FeaturePoint) string {
	var b strings.Builder
	b.WriteString("请基于以下功能点补充测试用例，要求返回 JSON 数组。\n")
	b.WriteString("仅输出 JSON，不要解释。\n\n")
	b.WriteString("输入：\n")
	b.WriteString("模块: ")
	b.WriteString(fp.Module)
	b.WriteString("\n功能: ")
	b.WriteString(fp.Feature)
	b.WriteString("\n描述: ")
	b.WriteString(fp.Description)
	b.WriteString("\n关键词: ")
	b.WriteString(strings.Join(fp.Keywords, ", "))
	b.WriteString("\n\n输出 JSON 数组元素字段：\n")
	b.WriteString("- type: 用例类型\n")
	b.WriteString("- name: 用例名称\n")
	b.WriteString("- priority: P0/P1/P2/P3\n")
	b.WriteString("- pre: 前置条件\n")
	b.WriteString("- steps: 步骤数组\n")
	b.WriteString("- expected: 预期结果数组，与 steps 一一对应\n")
	b.WriteString("- stage: 适用阶段\n\n")
	b.WriteString("不要包含 id、module、keywords 字段。")
	return b.String()
}
