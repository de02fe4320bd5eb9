package moderation

import (
	"context"
	"strings"
)

// OutcomeKind tags the result of an external classifier call.
type OutcomeKind int

const (
	OutcomeClear OutcomeKind = iota
	OutcomeFlagged
	OutcomeCheckFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeClear:
		return "clear"
	case OutcomeFlagged:
		return "flagged"
	case OutcomeCheckFailed:
		return "check_failed"
	default:
		return "unknown"
	}
}

// Outcome is what a Classifier reports. Categories is filled for flagged
// content, Reason for failed checks.
type Outcome struct {
	Kind       OutcomeKind
	Categories []string
	Reason     string
}

func Clear() Outcome { return Outcome{Kind: OutcomeClear} }

func Flagged(categories ...string) Outcome {
	return Outcome{Kind: OutcomeFlagged, Categories: categories}
}

// CheckFailed records a classifier that could not produce an answer.
func CheckFailed(reason string) Outcome {
	if strings.TrimSpace(reason) == "" {
		reason = "unknown error"
	}
	return Outcome{Kind: OutcomeCheckFailed, Reason: reason}
}

// Classifier is an external content-safety service. Implementations never
// return an error; failures are reported as CheckFailed.
type Classifier interface {
	Classify(ctx context.Context, text string) Outcome
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) Outcome

func (f ClassifierFunc) Classify(ctx context.Context, text string) Outcome { return f(ctx, text) }
