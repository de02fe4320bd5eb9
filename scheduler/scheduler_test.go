package scheduler

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"auto_social_poster/generator"
	"auto_social_poster/moderation"
	"auto_social_poster/publisher"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	name  string
	err   error
	panic bool
	mu    sync.Mutex
	texts []string
}

func (f *fakePublisher) Platform() string { return f.name }

func (f *fakePublisher) Publish(_ context.Context, text string) error {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.panic {
		panic("sink exploded")
	}
	return f.err
}

type recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *recorder) ObserveCycle(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func testPrompts(t *testing.T) *generator.PromptSet {
	t.Helper()
	set, err := generator.NewPromptSet([]string{"whisper about fog"})
	require.NoError(t, err)
	return set
}

func liveGenerator(t *testing.T, llm generator.LLMClient, deny ...string) *generator.Generator {
	t.Helper()
	gate := moderation.NewGate(moderation.GateConfig{Denylist: moderation.NewDenylist(deny)}, nil)
	g, err := generator.New(llm, gate, generator.Options{}, nil)
	require.NoError(t, err)
	return g
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func TestNewValidates(t *testing.T) {
	g := liveGenerator(t, &generator.MockLLM{Reply: "x"})
	_, err := New(nil, testPrompts(t), nil, Config{MinHours: 1, MaxHours: 2}, nil)
	assert.Error(t, err)
	_, err = New(g, nil, nil, Config{MinHours: 1, MaxHours: 2}, nil)
	assert.Error(t, err)
	_, err = New(g, testPrompts(t), nil, Config{MinHours: 0, MaxHours: 2}, nil)
	assert.Error(t, err)
	_, err = New(g, testPrompts(t), nil, Config{MinHours: 3, MaxHours: 2}, nil)
	assert.Error(t, err)
}

func TestNextSleepWithinBoundsWholeSeconds(t *testing.T) {
	s, err := New(liveGenerator(t, &generator.MockLLM{}), testPrompts(t), nil,
		Config{MinHours: 2, MaxHours: 3, Rand: seeded()}, nil)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		d := s.NextSleep()
		assert.GreaterOrEqual(t, d, 2*time.Hour)
		assert.LessOrEqual(t, d, 3*time.Hour)
		assert.Zero(t, d%time.Second)
	}

	fixed, err := New(liveGenerator(t, &generator.MockLLM{}), testPrompts(t), nil,
		Config{MinHours: 1.5, MaxHours: 1.5}, nil)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, fixed.NextSleep())
}

func TestNextSleepClampsHugeIntervals(t *testing.T) {
	s, err := New(liveGenerator(t, &generator.MockLLM{}), testPrompts(t), nil,
		Config{MinHours: 1, MaxHours: 1e9, Rand: seeded()}, nil)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		d := s.NextSleep()
		assert.GreaterOrEqual(t, d, time.Hour)
		assert.Zero(t, d%time.Second)
	}
}

func TestNewRejectsNonFiniteInterval(t *testing.T) {
	g := liveGenerator(t, &generator.MockLLM{})
	for _, c := range []Config{
		{MinHours: 1, MaxHours: math.Inf(1)},
		{MinHours: math.NaN(), MaxHours: 2},
		{MinHours: 1, MaxHours: math.NaN()},
	} {
		_, err := New(g, testPrompts(t), nil, c, nil)
		assert.Error(t, err, "min=%v max=%v", c.MinHours, c.MaxHours)
	}
}

func TestCyclePublishesToBoth(t *testing.T) {
	a := &fakePublisher{name: "reddit"}
	b := &fakePublisher{name: "twitter"}
	rec := &recorder{}
	s, err := New(liveGenerator(t, &generator.MockLLM{Reply: "The fog keeps a ledger."}), testPrompts(t),
		[]publisher.Publisher{a, b}, Config{MinHours: 1, MaxHours: 2, Rand: seeded(), Observer: rec}, nil)
	require.NoError(t, err)

	r := s.RunCycle(context.Background())
	assert.Equal(t, OutcomePublished, r.Outcome)
	assert.Equal(t, "whisper about fog", r.Prompt)
	assert.Equal(t, 23, r.Chars)
	assert.Equal(t, []string{"The fog keeps a ledger."}, a.texts)
	assert.Equal(t, []string{"The fog keeps a ledger."}, b.texts)
	assert.Equal(t, []PublishResult{{Platform: "reddit", OK: true}, {Platform: "twitter", OK: true}}, r.Results)
	assert.Equal(t, Idle, s.State())
	require.Len(t, rec.reports, 1)
}

func TestPublisherFailureIsIsolated(t *testing.T) {
	for _, failing := range []*fakePublisher{
		{name: "reddit", err: errors.New("503 service unavailable")},
		{name: "reddit", panic: true},
	} {
		other := &fakePublisher{name: "twitter"}
		s, err := New(liveGenerator(t, &generator.MockLLM{Reply: "ok text"}), testPrompts(t),
			[]publisher.Publisher{failing, other}, Config{MinHours: 1, MaxHours: 1}, nil)
		require.NoError(t, err)

		var r Report
		require.NotPanics(t, func() { r = s.RunCycle(context.Background()) })
		require.Len(t, r.Results, 2)
		assert.False(t, r.Results[0].OK)
		assert.NotEmpty(t, r.Results[0].Error)
		assert.True(t, r.Results[1].OK)
		assert.Equal(t, []string{"ok text"}, other.texts)
		assert.Equal(t, time.Hour, r.Sleep)
	}
}

func TestNoTextSkipsPublishing(t *testing.T) {
	cases := []struct {
		name    string
		llm     *generator.MockLLM
		outcome string
		reason  string
	}{
		{"model error", &generator.MockLLM{Err: errors.New("timeout")}, OutcomeFailed, "timeout"},
		{"blocked", &generator.MockLLM{Reply: "this is xyz content"}, OutcomeBlocked, moderation.ReasonDenylist},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pub := &fakePublisher{name: "reddit"}
			s, err := New(liveGenerator(t, c.llm, "xyz"), testPrompts(t),
				[]publisher.Publisher{pub}, Config{MinHours: 1, MaxHours: 2}, nil)
			require.NoError(t, err)

			r := s.RunCycle(context.Background())
			assert.Equal(t, c.outcome, r.Outcome)
			assert.Contains(t, r.Reason, c.reason)
			assert.Empty(t, r.Text)
			assert.Empty(t, r.Results)
			assert.Empty(t, pub.texts)
			assert.Positive(t, r.Sleep)
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &fakePublisher{name: "twitter", err: errors.New("boom")}
	var waits []time.Duration
	wait := func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}
	s, err := New(liveGenerator(t, &generator.MockLLM{Reply: "again"}), testPrompts(t),
		[]publisher.Publisher{pub}, Config{MinHours: 2, MaxHours: 3, Wait: wait, Rand: seeded()}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Run(ctx))
	assert.Len(t, waits, 3)
	assert.Len(t, pub.texts, 3)
	for _, d := range waits {
		assert.GreaterOrEqual(t, d, 2*time.Hour)
		assert.LessOrEqual(t, d, 3*time.Hour)
	}
}

func TestRunReturnsWaitError(t *testing.T) {
	werr := errors.New("clock broke")
	s, err := New(liveGenerator(t, &generator.MockLLM{Reply: "x"}), testPrompts(t), nil,
		Config{MinHours: 1, MaxHours: 1, Wait: func(context.Context, time.Duration) error { return werr }}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(context.Background()), werr)
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub := &fakePublisher{name: "reddit"}
	s, err := New(liveGenerator(t, &generator.MockLLM{Reply: "x"}), testPrompts(t),
		[]publisher.Publisher{pub}, Config{MinHours: 1, MaxHours: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))
	assert.Empty(t, pub.texts)
}

func TestSleepWait(t *testing.T) {
	require.NoError(t, SleepWait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, SleepWait(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDryRunScenario(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	gate := moderation.NewGate(moderation.GateConfig{Denylist: moderation.NewDenylist([]string{"secret"})}, nil)
	g, err := generator.New(nil, gate, generator.Options{DryRun: true}, nil)
	require.NoError(t, err)

	prompts, err := generator.NewPromptSet([]string{"tell me a secret about the sea"})
	require.NoError(t, err)

	pubs := []publisher.Publisher{
		publisher.NewDryRun("reddit", "r/test", &log),
		publisher.NewDryRun("twitter", "@test", &log),
	}
	s, err := New(g, prompts, pubs, Config{MinHours: 1, MaxHours: 2}, &log)
	require.NoError(t, err)

	r := s.RunCycle(context.Background())
	assert.Equal(t, OutcomePublished, r.Outcome)
	assert.Equal(t, "[DRY_RUN] tell me a secret about the sea ...", r.Text)
	assert.Equal(t, []PublishResult{{Platform: "reddit", OK: true}, {Platform: "twitter", OK: true}}, r.Results)
	assert.Contains(t, buf.String(), `"platform":"reddit"`)
	assert.Contains(t, buf.String(), `"platform":"twitter"`)
	assert.Contains(t, buf.String(), "[DRY_RUN] would post")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "active", Active.String())
}
