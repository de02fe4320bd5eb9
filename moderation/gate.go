package moderation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single classifier call.
const DefaultTimeout = 30 * time.Second

// GateConfig is the immutable configuration of a Gate.
type GateConfig struct {
	Denylist *Denylist
	// External enables the classifier step.
	External bool
	// Classifier may be nil; with External set every check then fails closed.
	Classifier Classifier
	Timeout    time.Duration
}

// Gate evaluates candidate texts. It holds no mutable state.
type Gate struct {
	denylist   *Denylist
	external   bool
	classifier Classifier
	timeout    time.Duration
	log        *zerolog.Logger
}

func NewGate(cfg GateConfig, log *zerolog.Logger) *Gate {
	if cfg.Denylist == nil {
		cfg.Denylist = NewDenylist(nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Gate{
		denylist:   cfg.Denylist,
		external:   cfg.External,
		classifier: cfg.Classifier,
		timeout:    cfg.Timeout,
		log:        log,
	}
}

// Evaluate runs the denylist, then the classifier when enabled. The first
// block wins.
func (g *Gate) Evaluate(ctx context.Context, text string) Verdict {
	if term, ok := g.denylist.Match(text); ok {
		g.log.Debug().Str("term", term).Msg("denylist hit")
		return Block(ReasonDenylist)
	}
	if !g.external {
		return Allow()
	}

	out := g.classify(ctx, text)
	switch out.Kind {
	case OutcomeClear:
		return Allow()
	case OutcomeFlagged:
		g.log.Info().Strs("categories", out.Categories).Msg("classifier flagged text")
		return Block(ReasonFlagged)
	default:
		g.log.Warn().Str("reason", out.Reason).Msg("classifier check failed, blocking")
		return Block(reasonFailedPref + out.Reason)
	}
}

func (g *Gate) classify(ctx context.Context, text string) (out Outcome) {
	if g.classifier == nil {
		return CheckFailed("moderation client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = CheckFailed("classifier panic")
		}
	}()
	out = g.classifier.Classify(ctx, text)
	if out.Kind != OutcomeClear && out.Kind != OutcomeFlagged && out.Kind != OutcomeCheckFailed {
		return CheckFailed("unknown classifier outcome " + out.Kind.String())
	}
	return out
}
