package output

import (
	"encoding/json"
	"fmt"

	"autocase/internal/gencase"
)

// JSONDocument 机器可读输出，steps/expected 保留原始数组形态。
func JSONDocument(cases []gencase.TestCase) ([]byte, error) {
	if cases == nil {
		cases = []gencase.TestCase{}
	}
	b, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化 JSON 失败：%w", err)
	}
	return b, nil
}
