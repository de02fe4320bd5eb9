package generator

import "unicode/utf8"

// Candidate 是一条生成的帖子及其来源提示词，创建后只读。
type Candidate struct {
	text   string
	prompt string
}

func NewCandidate(text, prompt string) Candidate {
	return Candidate{text: text, prompt: prompt}
}

func (c Candidate) Text() string   { return c.text }
func (c Candidate) Prompt() string { return c.prompt }

// Len 按字符计算文本长度。
func (c Candidate) Len() int { return utf8.RuneCountInString(c.text) }
