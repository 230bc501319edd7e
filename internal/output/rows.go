package output

import (
	"strconv"
	"strings"

	"autocase/internal/gencase"
)

// Headers 表格列顺序是固定契约，调整即破坏下游。
var Headers = []string{
	"用例ID",
	"所属模块",
	"用例名称",
	"前置条件",
	"步骤",
	"预期",
	"关键词",
	"优先级",
	"用例类型",
	"适用阶段",
}

// Rows 渲染表头加数据行。steps/expected 以编号文本进入单元格。
func Rows(cases []gencase.TestCase) [][]string {
	rows := make([][]string, 0, len(cases)+1)
	rows = append(rows, append([]string{}, Headers...))
	for _, c := range cases {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			c.Module,
			c.Name,
			c.Pre,
			gencase.NumberedText(c.Steps),
			gencase.NumberedText(c.Expected),
			strings.Join(c.Keywords, ", "),
			c.Priority,
			c.Type,
			c.Stage,
		})
	}
	return rows
}
