package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"autocase/internal/gencase"
)

const sheetName = "TestCases"

// WriteExcel 生成带基础样式的 xlsx：表头加粗填充、单元格换行、
// 冻结首行、自动筛选、按内容估列宽。
func WriteExcel(path string, cases []gencase.TestCase) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("重命名工作表失败：%w", err)
	}

	rows := Rows(cases)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("定位单元格失败：%w", err)
		}
		r := row
		if err := f.SetSheetRow(sheetName, cell, &r); err != nil {
			return fmt.Errorf("写入第 %d 行失败：%w", i+1, err)
		}
	}

	if err := applyStyles(f, len(rows)); err != nil {
		return err
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("冻结首行失败：%w", err)
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(Headers), len(rows))
	if err := f.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
		return fmt.Errorf("设置筛选失败：%w", err)
	}
	if err := setColumnWidths(f, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存 Excel 失败（%s）：%w", path, err)
	}
	return nil
}

func applyStyles(f *excelize.File, rowCount int) error {
	thin := []excelize.Border{
		{Type: "left", Color: "CBD5E1", Style: 1},
		{Type: "right", Color: "CBD5E1", Style: 1},
		{Type: "top", Color: "CBD5E1", Style: 1},
		{Type: "bottom", Color: "CBD5E1", Style: 1},
	}
	wrap := &excelize.Alignment{WrapText: true, Vertical: "top"}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E8EEF7"}},
		Alignment: wrap,
		Border:    thin,
	})
	if err != nil {
		return fmt.Errorf("创建表头样式失败：%w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: wrap,
		Border:    thin,
	})
	if err != nil {
		return fmt.Errorf("创建正文样式失败：%w", err)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("应用表头样式失败：%w", err)
	}
	if rowCount > 1 {
		lastCell, _ := excelize.CoordinatesToCellName(len(Headers), rowCount)
		if err := f.SetCellStyle(sheetName, "A2", lastCell, bodyStyle); err != nil {
			return fmt.Errorf("应用正文样式失败：%w", err)
		}
	}
	return nil
}

func setColumnWidths(f *excelize.File, rows [][]string) error {
	for col := range Headers {
		maxLen := 0
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			for _, line := range splitLines(row[col]) {
				if len(line) > maxLen {
					maxLen = len(line)
				}
			}
		}
		width := float64(maxLen + 2)
		if width > 60 {
			width = 60
		}
		if width < 8 {
			width = 8
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("列名转换失败：%w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return fmt.Errorf("设置列宽失败：%w", err)
		}
	}
	return nil
}

func splitLines(s string) []string {
	out := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
