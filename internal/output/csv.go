package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"autocase/internal/gencase"
)

// utf8BOM 让 Excel 直接打开 CSV 时正确识别编码。
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func WriteCSV(w io.Writer, cases []gencase.TestCase) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("写入 BOM 失败：%w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(cases)); err != nil {
		return fmt.Errorf("写入 CSV 失败：%w", err)
	}
	cw.Flush()
	return cw.Error()
}

func WriteCSVFile(path string, cases []gencase.TestCase) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败（%s）：%w", path, err)
	}
	defer f.Close()
	if err := WriteCSV(f, cases); err != nil {
		return err
	}
	return f.Close()
}
