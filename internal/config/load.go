package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var embeddedDefaultConfig []byte

//go:embed default_prompt.txt
var embeddedDefaultPrompt []byte

// Load 读取 LLM 配置。path 为空时使用内置默认配置。
func Load(path string) (*Config, error) {
	raw := embeddedDefaultConfig
	source := "内置默认配置"
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取 LLM 配置失败（%s）：%w", path, err)
		}
		raw = b
		source = path
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("LLM 配置格式错误（%s）：%w", source, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("LLM 配置错误（%s）：%w", source, err)
	}
	return cfg, nil
}

// LoadSystemPrompt 读取系统级 prompt 文本，原样传给每次生成请求。
// path 为空时使用内置默认 prompt。
func LoadSystemPrompt(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return string(embeddedDefaultPrompt), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取系统级prompt失败（%s）：%w", path, err)
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("系统级prompt为空（%s）", path)
	}
	return text, nil
}
