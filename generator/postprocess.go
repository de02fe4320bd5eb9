package generator

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// 平台长度限制，按字符计。
const (
	MaxPostChars = 280
	Ellipsis     = "..."
)

// PostProcess 去掉首尾空白并按长度截断，正文本身不做任何改写。
func PostProcess(raw string) (string, error) {
	out := strings.TrimSpace(raw)
	if out == "" {
		return "", errors.New("model returned empty text")
	}
	return Truncate(out, MaxPostChars), nil
}

// Truncate 把 s 截到最多 limit 个字符；被截断时以省略号结尾，长度恰好为 limit。
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(Ellipsis)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + Ellipsis
}

// Prefix 返回 s 的前 n 个字符。
func Prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// MarkupKinds 列出 s 中出现的 Markdown 结构（强调、标题、列表、链接、代码、HTML 等）。
// 只用于日志提示，两个平台都按原文发布。
func MarkupKinds(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	src := []byte(s)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	seen := map[string]bool{}
	var kinds []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindDocument, ast.KindParagraph, ast.KindText, ast.KindString:
			return ast.WalkContinue, nil
		}
		if k := n.Kind().String(); !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
		return ast.WalkContinue, nil
	})
	return kinds
}
