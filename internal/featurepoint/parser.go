package featurepoint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeaturePoint 是一条功能点输入，解析后不再修改。
type FeaturePoint struct {
	Module      string
	Feature     string
	Description string
	Keywords    []string
}

// MalformedInputError 输入结构错误。Index 指向出错的条目（从 1 开始），
// 整个文档级别的错误 Index 为 0。
type MalformedInputError struct {
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("输入格式错误（第 %d 条）：%s", e.Index, e.Reason)
	}
	return fmt.Sprintf("输入格式错误：%s", e.Reason)
}

// 备用键 -> 规范键，单一事实来源。
var fieldAliases = map[string]string{
	"模块":  "module",
	"功能":  "feature",
	"描述":  "description",
	"关键词": "keywords",
}

var requiredFields = []string{"module", "feature", "description"}

// Parse 解析功能点输入文档。支持三种形态：顶层列表、带 cases 列表的对象、
// 以 --- 分隔的多文档（依序拼接）。任何一条不合法即整批失败。
func Parse(raw []byte) ([]FeaturePoint, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))

	out := make([]FeaturePoint, 0, 8)
	index := 0
	docs := 0
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("YAML 解析失败：%v", err)}
		}
		docs++
		if doc == nil {
			continue
		}
		entries, err := docEntries(doc)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			index++
			fp, err := parseEntry(entry, index)
			if err != nil {
				return nil, err
			}
			out = append(out, fp)
		}
	}
	if docs == 0 {
		return nil, &MalformedInputError{Reason: "YAML 为空"}
	}
	if len(out) == 0 {
		return nil, &MalformedInputError{Reason: "未解析到任何功能点"}
	}
	return out, nil
}

func docEntries(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		cases, ok := v["cases"]
		if !ok {
			return []any{v}, nil
		}
		list, ok := cases.([]any)
		if !ok {
			return nil, &MalformedInputError{Reason: "cases 必须是列表"}
		}
		return list, nil
	default:
		return nil, &MalformedInputError{Reason: "不支持的 YAML 结构"}
	}
}

func parseEntry(entry any, index int) (FeaturePoint, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return FeaturePoint{}, &MalformedInputError{Index: index, Reason: "条目必须是对象"}
	}

	normalized := make(map[string]any, len(m))
	for k, v := range m {
		key := k
		if canonical, ok := fieldAliases[k]; ok {
			key = canonical
		}
		normalized[key] = v
	}

	missing := make([]string, 0, len(requiredFields))
	for _, k := range requiredFields {
		if strings.TrimSpace(scalarString(normalized[k])) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return FeaturePoint{}, &MalformedInputError{
			Index:  index,
			Reason: "缺少必填字段: " + strings.Join(missing, ", "),
		}
	}

	return FeaturePoint{
		Module:      strings.TrimSpace(scalarString(normalized["module"])),
		Feature:     strings.TrimSpace(scalarString(normalized["feature"])),
		Description: strings.TrimSpace(scalarString(normalized["description"])),
		Keywords:    normalizeKeywords(normalized["keywords"]),
	}, nil
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// normalizeKeywords 接受列表或分隔字符串；字符串按逗号切分，
// 全角逗号先归一为半角。
func normalizeKeywords(v any) []string {
	switch raw := v.(type) {
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			kw := strings.TrimSpace(scalarString(item))
			if kw != "" {
				out = append(out, kw)
			}
		}
		return out
	case string:
		parts := strings.Split(strings.ReplaceAll(raw, "，", ","), ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
