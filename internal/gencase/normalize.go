package gencase

import (
	"fmt"
	"strings"

	"autocase/internal/featurepoint"
)

// TestCase 是归一化之后的最终记录。module 与 keywords 一律取自功能点，
// 模型自己声称的值不被采信。
type TestCase struct {
	ID       int      `json:"id"`
	Module   string   `json:"module"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Priority string   `json:"priority"`
	Pre      string   `json:"pre"`
	Steps    []string `json:"steps"`
	Expected []string `json:"expected"`
	Keywords []string `json:"keywords"`
	Stage    string   `json:"stage"`
}

// Normalize 按数组顺序从 idCursor 起分配连续编号，返回下一个可用编号。
func Normalize(fp featurepoint.FeaturePoint, records []CaseRecord, idCursor int) ([]TestCase, int) {
	out := make([]TestCase, 0, len(records))
	cursor := idCursor
	for _, rec := range records {
		out = append(out, TestCase{
			ID:       cursor,
			Module:   fp.Module,
			Type:     rec.Type,
			Name:     rec.Name,
			Priority: rec.Priority,
			Pre:      rec.Pre,
			Steps:    append([]string{}, rec.Steps...),
			Expected: append([]string{}, rec.Expected...),
			Keywords: append([]string{}, fp.Keywords...),
			Stage:    rec.Stage,
		})
		cursor++
	}
	return out, cursor
}

// NumberedText 把序列渲染成 "1. xxx\n2. xxx" 的单元格文本，
// 供表格类输出使用；JSON 输出保留原始数组。
func NumberedText(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("%d. %s", i+1, item))
	}
	return b.String()
}
