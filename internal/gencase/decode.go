package gencase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CaseRecord 是模型约定返回的七字段结构，校验通过后才存在。
type CaseRecord struct {
	Type     string
	Name     string
	Priority string
	Pre      string
	Steps    []string
	Expected []string
	Stage    string
}

// ValidationError 模型输出的内容/结构问题，可进入修复循环重试。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "输出校验失败：" + e.Reason
}

// ExtractJSONArray 从模型原始输出里定位 JSON 数组文本。输出可能被
// 说明文字或 ``` 围栏包住，先剥掉围栏，再找最外层的数组子串。
func ExtractJSONArray(raw string) (string, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return "", &ValidationError{Reason: "模型输出为空"}
	}
	if json.Valid([]byte(text)) && strings.HasPrefix(strings.TrimSpace(text), "[") {
		return text, nil
	}
	candidate := outerArray(text)
	if candidate == "" || !json.Valid([]byte(candidate)) {
		return "", &ValidationError{Reason: "未找到有效的 JSON 数组"}
	}
	return candidate, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(text), "json") {
		text = strings.TrimSpace(text[4:])
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return text
}

func outerArray(text string) string {
	start := strings.Index(text, "[")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// ValidateRecords 把数组文本校验成 CaseRecord 列表。七个字段都必须在场
// 且形态正确；steps 与 expected 必须等长，不做静默截断或补齐。
func ValidateRecords(arrayText string) ([]CaseRecord, error) {
	var items []any
	if err := json.Unmarshal([]byte(arrayText), &items); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("JSON 数组解析失败：%v", err)}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "JSON 数组为空"}
	}

	out := make([]CaseRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("第 %d 个元素不是对象", i+1)}
		}
		rec, err := validateRecord(obj, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func validateRecord(obj map[string]any, ord int) (CaseRecord, error) {
	str := func(field string) (string, error) {
		v, ok := obj[field]
		if !ok {
			return "", &ValidationError{Reason: fmt.Sprintf("第 %d 个用例缺少字段 %s", ord, field)}
		}
		s, ok := v.(string)
		if !ok {
			return "", &ValidationError{Reason: fmt.Sprintf("第 %d 个用例字段 %s 必须是字符串", ord, field)}
		}
		return s, nil
	}
	strList := func(field string) ([]string, error) {
		v, ok := obj[field]
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("第 %d 个用例缺少字段 %s", ord, field)}
		}
		list, ok := v.([]any)
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("第 %d 个用例字段 %s 必须是数组", ord, field)}
		}
		out := make([]string, 0, len(list))
		for j, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, &ValidationError{Reason: fmt.Sprintf("第 %d 个用例 %s[%d] 必须是字符串", ord, field, j)}
			}
			out = append(out, s)
		}
		return out, nil
	}

	var rec CaseRecord
	var err error
	if rec.Type, err = str("type"); err != nil {
		return CaseRecord{}, err
	}
	if rec.Name, err = str("name"); err != nil {
		return CaseRecord{}, err
	}
	if rec.Priority, err = str("priority"); err != nil {
		return CaseRecord{}, err
	}
	if rec.Pre, err = str("pre"); err != nil {
		return CaseRecord{}, err
	}
	if rec.Steps, err = strList("steps"); err != nil {
		return CaseRecord{}, err
	}
	if rec.Expected, err = strList("expected"); err != nil {
		return CaseRecord{}, err
	}
	if rec.Stage, err = str("stage"); err != nil {
		return CaseRecord{}, err
	}
	if len(rec.Steps) != len(rec.Expected) {
		return CaseRecord{}, &ValidationError{
			Reason: fmt.Sprintf("第 %d 个用例 steps 与 expected 数量不一致：%d != %d", ord, len(rec.Steps), len(rec.Expected)),
		}
	}
	return rec, nil
}
