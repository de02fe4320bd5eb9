package generator

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

type promptFile struct {
	Prompts []string `yaml:"prompts"`
}

// PromptSet 是固定且非空的用户提示词列表。
type PromptSet struct {
	prompts []string
}

// NewPromptSet 丢弃空白提示词，全部为空时报错。
func NewPromptSet(prompts []string) (*PromptSet, error) {
	var out []string
	for _, p := range prompts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("prompt set is empty")
	}
	return &PromptSet{prompts: out}, nil
}

// DefaultPrompts 返回内置提示词。
func DefaultPrompts() (*PromptSet, error) {
	return parsePrompts(defaultPromptsYAML)
}

// LoadPrompts 读取 YAML 提示词文件；路径为空时使用内置提示词。
func LoadPrompts(path string) (*PromptSet, error) {
	if path == "" {
		return DefaultPrompts()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set, err := parsePrompts(data)
	if err != nil {
		return nil, fmt.Errorf("prompts file %s: %w", path, err)
	}
	return set, nil
}

func parsePrompts(data []byte) (*PromptSet, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return NewPromptSet(f.Prompts)
}

// Len 返回提示词数量。
func (s *PromptSet) Len() int { return len(s.prompts) }

// Pick 均匀随机返回一条提示词。
func (s *PromptSet) Pick(r *rand.Rand) string {
	return s.prompts[r.IntN(len(s.prompts))]
}
