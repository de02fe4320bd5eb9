// Package scheduler drives the generate, moderate, publish, sleep cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"auto_social_poster/generator"
	"auto_social_poster/publisher"

	"github.com/rs/zerolog"
)

// State is the scheduler's position in the cycle.
type State int32

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Cycle outcomes recorded in a Report.
const (
	OutcomePublished = "published"
	OutcomeFailed    = "generation_failed"
	OutcomeBlocked   = "blocked"
)

// WaitFunc blocks for d or until ctx is done, returning ctx.Err() in the latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// SleepWait is the production WaitFunc.
func SleepWait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generator produces one candidate per prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (generator.Candidate, error)
}

// Observer is told about every finished cycle.
type Observer interface {
	ObserveCycle(r Report)
}

// PublishResult is the outcome of one platform attempt.
type PublishResult struct {
	Platform string `json:"platform"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// Report summarises one cycle.
type Report struct {
	Started  time.Time       `json:"started"`
	Prompt   string          `json:"prompt"`
	Text     string          `json:"text,omitempty"`
	Chars    int             `json:"chars,omitempty"`
	Outcome  string          `json:"outcome"`
	Reason   string          `json:"reason,omitempty"`
	Results  []PublishResult `json:"results,omitempty"`
	Sleep    time.Duration   `json:"sleep_ns"`
	Duration time.Duration   `json:"duration_ns"`
}

// Config configures a Scheduler. Zero Rand, Wait and CallTimeout get defaults.
type Config struct {
	MinHours    float64
	MaxHours    float64
	CallTimeout time.Duration
	Rand        *rand.Rand
	Wait        WaitFunc
	Observer    Observer
}

// Scheduler runs cycles one at a time until its context ends.
type Scheduler struct {
	gen     Generator
	prompts *generator.PromptSet
	pubs    []publisher.Publisher
	cfg     Config
	rnd     *rand.Rand
	wait    WaitFunc
	state   atomic.Int32
	log     *zerolog.Logger
}

func New(gen Generator, prompts *generator.PromptSet, pubs []publisher.Publisher, cfg Config, log *zerolog.Logger) (*Scheduler, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if prompts == nil || prompts.Len() == 0 {
		return nil, errors.New("prompt set is required")
	}
	if !finite(cfg.MinHours) || !finite(cfg.MaxHours) || cfg.MinHours <= 0 || cfg.MaxHours < cfg.MinHours {
		return nil, fmt.Errorf("invalid interval hours: min=%v max=%v", cfg.MinHours, cfg.MaxHours)
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = publisher.DefaultTimeout
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	wait := cfg.Wait
	if wait == nil {
		wait = SleepWait
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Scheduler{
		gen:     gen,
		prompts: prompts,
		pubs:    pubs,
		cfg:     cfg,
		rnd:     rnd,
		wait:    wait,
		log:     log,
	}, nil
}

// State reports whether a cycle is currently running.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// Run loops until ctx is cancelled. Cancellation is a clean stop and
// returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().Int("publishers", len(s.pubs)).Msg("scheduler started")
	for {
		if ctx.Err() != nil {
			break
		}
		r := s.RunCycle(ctx)
		if err := s.wait(ctx, r.Sleep); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
	}
	s.log.Info().Msg("scheduler stopped")
	return nil
}

// RunCycle executes one Active phase and returns its report, including the
// sleep to take before the next cycle.
func (s *Scheduler) RunCycle(ctx context.Context) Report {
	s.state.Store(int32(Active))
	defer s.state.Store(int32(Idle))

	r := Report{Started: time.Now(), Prompt: s.prompts.Pick(s.rnd)}
	s.log.Info().Str("prompt", r.Prompt).Msg("selected prompt")

	cand, err := s.generate(ctx, r.Prompt)
	var blocked *generator.BlockedError
	switch {
	case errors.As(err, &blocked):
		r.Outcome, r.Reason = OutcomeBlocked, blocked.Verdict.Reason()
	case err != nil:
		r.Outcome, r.Reason = OutcomeFailed, err.Error()
	default:
		r.Outcome, r.Text, r.Chars = OutcomePublished, cand.Text(), cand.Len()
		s.log.Info().Str("prompt", cand.Prompt()).Int("chars", r.Chars).Str("text", r.Text).Msg("generated")
	}
	generationCount.WithLabelValues(r.Outcome).Inc()

	if r.Text == "" {
		s.log.Info().Str("outcome", r.Outcome).Str("reason", r.Reason).Msg("no text generated this cycle")
	} else {
		for _, p := range s.pubs {
			r.Results = append(r.Results, s.publish(ctx, p, r.Text))
		}
	}

	r.Duration = time.Since(r.Started)
	r.Sleep = s.NextSleep()
	cycleCount.Inc()
	cycleDuration.Observe(r.Duration.Seconds())
	s.log.Info().
		Float64("hours", r.Sleep.Hours()).
		Int64("seconds", int64(r.Sleep/time.Second)).
		Msg("sleeping")
	if s.cfg.Observer != nil {
		s.cfg.Observer.ObserveCycle(r)
	}
	return r
}

// maxSleepSeconds is the longest whole-second wait a time.Duration can hold.
const maxSleepSeconds = math.MaxInt64 / int64(time.Second)

// NextSleep draws a uniform duration in [MinHours, MaxHours], in whole seconds.
// Draws past the time.Duration range are clamped to maxSleepSeconds.
func (s *Scheduler) NextSleep() time.Duration {
	h := s.cfg.MinHours + s.rnd.Float64()*(s.cfg.MaxHours-s.cfg.MinHours)
	secs := math.Floor(h * 3600)
	if !(secs < float64(maxSleepSeconds)) {
		return time.Duration(maxSleepSeconds) * time.Second
	}
	return time.Duration(secs) * time.Second
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (s *Scheduler) generate(ctx context.Context, prompt string) (c generator.Candidate, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", generator.ErrGeneration, rec)
		}
	}()
	return s.gen.Generate(ctx, prompt)
}

// publish isolates one sink: its error or panic never reaches the caller.
func (s *Scheduler) publish(ctx context.Context, p publisher.Publisher, text string) (res PublishResult) {
	res.Platform = p.Platform()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			res.OK, res.Error = false, fmt.Sprintf("panic: %v", rec)
		}
		result := "ok"
		if !res.OK {
			result = "error"
			s.log.Error().Str("platform", res.Platform).Str("error", res.Error).Msg("publish failed")
		}
		publishCount.WithLabelValues(res.Platform, result).Inc()
	}()

	if err := p.Publish(ctx, text); err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}
