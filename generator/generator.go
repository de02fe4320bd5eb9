// Package generator 通过大模型把提示词生成为短帖。
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auto_social_poster/moderation"

	"github.com/rs/zerolog"
)

// DefaultTimeout 限制单次补全调用的时长。
const DefaultTimeout = 60 * time.Second

// dryRunPromptChars 是 dry-run 占位文本回显的提示词长度。
const dryRunPromptChars = 80

// ErrGeneration 包装模型调用及其输出的所有失败。
var ErrGeneration = errors.New("generation failed")

// BlockedError 表示生成的文本被审核拦截。
type BlockedError struct {
	Verdict moderation.Verdict
}

func (e *BlockedError) Error() string {
	return "moderation blocked: " + e.Verdict.Reason()
}

// Evaluator 判断文本能否发布。
type Evaluator interface {
	Evaluate(ctx context.Context, text string) moderation.Verdict
}

// Options 配置 Generator。
type Options struct {
	DryRun  bool
	Timeout time.Duration
}

// Generator 把提示词变成已过审的 Candidate。
type Generator struct {
	llm     LLMClient
	gate    Evaluator
	dryRun  bool
	timeout time.Duration
	log     *zerolog.Logger
}

// New 创建 Generator；仅 dry-run 模式下 llm 和 gate 可以为 nil。
func New(llm LLMClient, gate Evaluator, opt Options, log *zerolog.Logger) (*Generator, error) {
	if !opt.DryRun {
		if llm == nil {
			return nil, errors.New("llm client is required")
		}
		if gate == nil {
			return nil, errors.New("moderation gate is required")
		}
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Generator{llm: llm, gate: gate, dryRun: opt.DryRun, timeout: opt.Timeout, log: log}, nil
}

// Generate 返回 Candidate；本轮没有可发布文本时返回错误：
// 模型失败为 ErrGeneration，审核拦截为 *BlockedError。
// dry-run 占位文本既不调用模型也不过审核。
func (g *Generator) Generate(ctx context.Context, prompt string) (Candidate, error) {
	if g.dryRun {
		return NewCandidate(fmt.Sprintf("[DRY_RUN] %s ...", Prefix(prompt, dryRunPromptChars)), prompt), nil
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		g.log.Error().Err(err).Msg("llm call failed")
		return Candidate{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	text, err := PostProcess(raw)
	if err != nil {
		g.log.Error().Err(err).Msg("llm output rejected")
		return Candidate{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if kinds := MarkupKinds(text); len(kinds) > 0 {
		g.log.Warn().Strs("markup", kinds).Msg("llm output contains markdown, publishing verbatim")
	}

	verdict := g.gate.Evaluate(ctx, text)
	if !verdict.Allowed() {
		g.log.Warn().Str("reason", verdict.Reason()).Msg("moderation blocked")
		return Candidate{}, &BlockedError{Verdict: verdict}
	}
	return NewCandidate(text, prompt), nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.llm.Complete(ctx, BuildPostPrompt(prompt))
}
