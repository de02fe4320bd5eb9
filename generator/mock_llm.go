package generator

import (
	"context"
	"sync"
)

// MockLLM 用于本地调试和测试：返回 Reply（或 Err），并记录收到的提示词。
type MockLLM struct {
	Reply string
	Err   error

	mu      sync.Mutex
	prompts []Prompt
}

func (m *MockLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Prompts 返回目前收到的提示词。
func (m *MockLLM) Prompts() []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Prompt(nil), m.prompts...)
}
