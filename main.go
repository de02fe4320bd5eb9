package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auto_social_poster/config"
	"auto_social_poster/generator"
	"auto_social_poster/logger"
	"auto_social_poster/moderation"
	"auto_social_poster/publisher"
	"auto_social_poster/scheduler"
	"auto_social_poster/server"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "auto_social_poster",
		Usage: "generate short posts with an LLM, moderate them and publish to Reddit and X",
		Flags: flags(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "loop forever: generate, moderate, publish, sleep",
				Action: runLoop,
			},
			{
				Name:   "once",
				Usage:  "run a single cycle and print its report",
				Action: runOnce,
			},
		},
		Action: runLoop,
	}
	return app.Run(args)
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "openai-api-key", EnvVars: []string{"OPENAI_API_KEY"}},
		&cli.StringFlag{Name: "openai-model", Value: config.DefaultOpenAIModel, EnvVars: []string{"OPENAI_MODEL"}},
		&cli.StringFlag{Name: "openai-base-url", Usage: "OpenAI-compatible endpoint", EnvVars: []string{"OPENAI_BASE_URL"}},
		&cli.StringFlag{Name: "llm-provider", Usage: "openai or deepseek", Value: "openai", EnvVars: []string{"LLM_PROVIDER"}},
		&cli.StringFlag{Name: "reddit-client-id", EnvVars: []string{"REDDIT_CLIENT_ID"}},
		&cli.StringFlag{Name: "reddit-client-secret", EnvVars: []string{"REDDIT_CLIENT_SECRET"}},
		&cli.StringFlag{Name: "reddit-username", EnvVars: []string{"REDDIT_USERNAME"}},
		&cli.StringFlag{Name: "reddit-password", EnvVars: []string{"REDDIT_PASSWORD"}},
		&cli.StringFlag{Name: "reddit-user-agent", Value: config.DefaultRedditUserAgent, EnvVars: []string{"REDDIT_USER_AGENT"}},
		&cli.StringFlag{Name: "reddit-subreddit", EnvVars: []string{"REDDIT_SUBREDDIT"}},
		&cli.StringFlag{Name: "twitter-api-key", EnvVars: []string{"TWITTER_API_KEY"}},
		&cli.StringFlag{Name: "twitter-api-secret", EnvVars: []string{"TWITTER_API_SECRET"}},
		&cli.StringFlag{Name: "twitter-access-token", EnvVars: []string{"TWITTER_ACCESS_TOKEN"}},
		&cli.StringFlag{Name: "twitter-access-token-secret", EnvVars: []string{"TWITTER_ACCESS_TOKEN_SECRET"}},
		&cli.Float64Flag{Name: "min-hours", Value: config.DefaultMinHours, EnvVars: []string{"POST_INTERVAL_MIN_HOURS"}},
		&cli.Float64Flag{Name: "max-hours", Value: config.DefaultMaxHours, EnvVars: []string{"POST_INTERVAL_MAX_HOURS"}},
		&cli.BoolFlag{Name: "dry-run", Usage: "log instead of calling any external service", Value: true, EnvVars: []string{"DRY_RUN"}},
		&cli.BoolFlag{Name: "moderation", Usage: "enable the external moderation check", Value: true, EnvVars: []string{"MODERATION"}},
		&cli.StringFlag{Name: "moderation-model", Value: config.DefaultModerationModel, EnvVars: []string{"MODERATION_MODEL"}},
		&cli.StringFlag{Name: "blocklist-words", Usage: "comma separated denylist terms", EnvVars: []string{"BLOCKLIST_WORDS"}},
		&cli.StringFlag{Name: "prompts-file", Usage: "YAML prompt list (defaults to the built-in set)", EnvVars: []string{"PROMPTS_FILE"}},
		&cli.DurationFlag{Name: "call-timeout", Value: config.DefaultCallTimeout, EnvVars: []string{"CALL_TIMEOUT"}},
		&cli.StringFlag{Name: "status-listen", Usage: "address for /healthz, /api/status and /metrics (off when empty)", EnvVars: []string{"STATUS_LISTEN"}},
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		&cli.StringFlag{Name: "log-format", Usage: "console or json", Value: "console", EnvVars: []string{"LOG_FORMAT"}},
	}
}

func settingsFromCLI(cctx *cli.Context) config.Settings {
	return config.Settings{
		OpenAIAPIKey:             cctx.String("openai-api-key"),
		OpenAIModel:              cctx.String("openai-model"),
		OpenAIBaseURL:            cctx.String("openai-base-url"),
		LLMProvider:              cctx.String("llm-provider"),
		RedditClientID:           cctx.String("reddit-client-id"),
		RedditClientSecret:       cctx.String("reddit-client-secret"),
		RedditUsername:           cctx.String("reddit-username"),
		RedditPassword:           cctx.String("reddit-password"),
		RedditUserAgent:          cctx.String("reddit-user-agent"),
		RedditSubreddit:          cctx.String("reddit-subreddit"),
		TwitterAPIKey:            cctx.String("twitter-api-key"),
		TwitterAPISecret:         cctx.String("twitter-api-secret"),
		TwitterAccessToken:       cctx.String("twitter-access-token"),
		TwitterAccessTokenSecret: cctx.String("twitter-access-token-secret"),
		MinHours:                 cctx.Float64("min-hours"),
		MaxHours:                 cctx.Float64("max-hours"),
		DryRun:                   cctx.Bool("dry-run"),
		Moderation:               cctx.Bool("moderation"),
		ModerationModel:          cctx.String("moderation-model"),
		BlocklistWords:           moderation.SplitTerms(cctx.String("blocklist-words")),
		PromptsFile:              cctx.String("prompts-file"),
		CallTimeout:              cctx.Duration("call-timeout"),
		StatusListen:             cctx.String("status-listen"),
	}
}

func rootLogger(cctx *cli.Context) zerolog.Logger {
	return logger.New(logger.Options{
		Level:  cctx.String("log-level"),
		Format: cctx.String("log-format"),
	})
}

func runLoop(cctx *cli.Context) error {
	log := rootLogger(cctx)
	settings := settingsFromCLI(cctx)
	if err := settings.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var status *server.Server
	if settings.StatusListen != "" {
		status = server.New(settings.DryRun, logger.Named(&log, "server"))
	}
	sched, err := buildScheduler(settings, status, &log)
	if err != nil {
		return err
	}

	if status != nil {
		if err := status.Attach(sched); err != nil {
			return err
		}
		srv := &http.Server{Addr: settings.StatusListen, Handler: status.Routes(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.Info().Str("addr", settings.StatusListen).Msg("starting status server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("status server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info().Bool("dry_run", settings.DryRun).Bool("moderation", settings.Moderation).Msg("poster started")
	if err := sched.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("stopped by user")
	return nil
}

func runOnce(cctx *cli.Context) error {
	log := rootLogger(cctx)
	settings := settingsFromCLI(cctx)
	if err := settings.Validate(); err != nil {
		return err
	}
	sched, err := buildScheduler(settings, nil, &log)
	if err != nil {
		return err
	}
	report := sched.RunCycle(cctx.Context)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// buildScheduler wires the pipeline from validated settings. obs may be nil.
func buildScheduler(s config.Settings, obs *server.Server, log *zerolog.Logger) (*scheduler.Scheduler, error) {
	prompts, err := generator.LoadPrompts(s.PromptsFile)
	if err != nil {
		return nil, err
	}

	gate := moderation.NewGate(moderation.GateConfig{
		Denylist:   moderation.NewDenylist(s.BlocklistWords),
		External:   s.Moderation,
		Classifier: buildClassifier(s, log),
		Timeout:    s.CallTimeout,
	}, logger.Named(log, "moderation"))

	var llm generator.LLMClient
	if !s.DryRun {
		llm, err = generator.NewLLM(&generator.LLMSettings{
			Provider: s.LLMProvider,
			Model:    s.OpenAIModel,
			APIKey:   s.OpenAIAPIKey,
			BaseURL:  s.OpenAIBaseURL,
		})
		if err != nil {
			return nil, err
		}
	}
	gen, err := generator.New(llm, gate, generator.Options{DryRun: s.DryRun, Timeout: s.CallTimeout}, logger.Named(log, "generator"))
	if err != nil {
		return nil, err
	}

	pubs, err := buildPublishers(s, log)
	if err != nil {
		return nil, err
	}

	cfg := scheduler.Config{MinHours: s.MinHours, MaxHours: s.MaxHours, CallTimeout: s.CallTimeout}
	if obs != nil {
		cfg.Observer = obs
	}
	return scheduler.New(gen, prompts, pubs, cfg, logger.Named(log, "scheduler"))
}

// buildClassifier 构建失败时返回 nil；开启审核时 gate 会拦截所有文本。
func buildClassifier(s config.Settings, log *zerolog.Logger) moderation.Classifier {
	if !s.Moderation || s.DryRun {
		return nil
	}
	c, err := moderation.NewOpenAIClassifier(moderation.ClassifierSettings{
		APIKey:  s.OpenAIAPIKey,
		BaseURL: s.OpenAIBaseURL,
		Model:   s.ModerationModel,
	})
	if err != nil {
		log.Warn().Err(err).Msg("moderation client unavailable; every post will be blocked")
		return nil
	}
	return c
}

func buildPublishers(s config.Settings, log *zerolog.Logger) ([]publisher.Publisher, error) {
	if s.DryRun {
		return []publisher.Publisher{
			publisher.NewDryRun("reddit", "r/"+s.RedditSubreddit, logger.Named(log, "reddit")),
			publisher.NewDryRun("twitter", "tweet", logger.Named(log, "twitter")),
		}, nil
	}

	client := publisher.NewHTTPClient(s.CallTimeout)
	reddit, err := publisher.NewReddit(publisher.RedditConfig{
		ClientID:     s.RedditClientID,
		ClientSecret: s.RedditClientSecret,
		Username:     s.RedditUsername,
		Password:     s.RedditPassword,
		UserAgent:    s.RedditUserAgent,
		Subreddit:    s.RedditSubreddit,
	}, client, logger.Named(log, "reddit"))
	if err != nil {
		return nil, err
	}
	twitter, err := publisher.NewTwitter(publisher.TwitterConfig{
		APIKey:            s.TwitterAPIKey,
		APISecret:         s.TwitterAPISecret,
		AccessToken:       s.TwitterAccessToken,
		AccessTokenSecret: s.TwitterAccessTokenSecret,
	}, client, logger.Named(log, "twitter"))
	if err != nil {
		return nil, err
	}
	return []publisher.Publisher{reddit, twitter}, nil
}
