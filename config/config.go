// Package config holds the process settings and their startup validation.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults mirror the documented environment defaults.
const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultModerationModel = "omni-moderation-latest"
	DefaultRedditUserAgent = "go:auto_social_poster:1.0 (by /u/yourname)"
	DefaultMinHours        = 2.0
	DefaultMaxHours        = 3.0
	DefaultCallTimeout     = 60 * time.Second

	// MaxIntervalHours is the longest interval a time.Duration can hold.
	// Keep in step with the lte tags on MinHours and MaxHours.
	MaxIntervalHours = 2562047
)

var (
	ErrInvalidInterval    = errors.New("invalid interval hours; check POST_INTERVAL_MIN_HOURS and POST_INTERVAL_MAX_HOURS")
	ErrMissingCredentials = errors.New("missing env vars")
)

// Settings is built once at startup and read-only afterwards. The env tag
// names the variable each field is read from.
type Settings struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" validate:"required_if=DryRun false"`
	OpenAIModel   string `env:"OPENAI_MODEL"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	LLMProvider   string `env:"LLM_PROVIDER"`

	RedditClientID     string `env:"REDDIT_CLIENT_ID" validate:"required_if=DryRun false"`
	RedditClientSecret string `env:"REDDIT_CLIENT_SECRET" validate:"required_if=DryRun false"`
	RedditUsername     string `env:"REDDIT_USERNAME" validate:"required_if=DryRun false"`
	RedditPassword     string `env:"REDDIT_PASSWORD" validate:"required_if=DryRun false"`
	RedditUserAgent    string `env:"REDDIT_USER_AGENT" validate:"required_if=DryRun false"`
	RedditSubreddit    string `env:"REDDIT_SUBREDDIT" validate:"required_if=DryRun false"`

	TwitterAPIKey            string `env:"TWITTER_API_KEY" validate:"required_if=DryRun false"`
	TwitterAPISecret         string `env:"TWITTER_API_SECRET" validate:"required_if=DryRun false"`
	TwitterAccessToken       string `env:"TWITTER_ACCESS_TOKEN" validate:"required_if=DryRun false"`
	TwitterAccessTokenSecret string `env:"TWITTER_ACCESS_TOKEN_SECRET" validate:"required_if=DryRun false"`

	MinHours float64 `env:"POST_INTERVAL_MIN_HOURS" validate:"gt=0,lte=2562047"`
	MaxHours float64 `env:"POST_INTERVAL_MAX_HOURS" validate:"gtefield=MinHours,lte=2562047"`

	DryRun          bool     `env:"DRY_RUN"`
	Moderation      bool     `env:"MODERATION"`
	ModerationModel string   `env:"MODERATION_MODEL"`
	BlocklistWords  []string `env:"BLOCKLIST_WORDS"`

	PromptsFile  string        `env:"PROMPTS_FILE"`
	CallTimeout  time.Duration `env:"CALL_TIMEOUT"`
	StatusListen string        `env:"STATUS_LISTEN"`
}

// Default returns settings with every documented default applied.
func Default() Settings {
	return Settings{
		OpenAIModel:     DefaultOpenAIModel,
		RedditUserAgent: DefaultRedditUserAgent,
		MinHours:        DefaultMinHours,
		MaxHours:        DefaultMaxHours,
		DryRun:          true,
		Moderation:      true,
		ModerationModel: DefaultModerationModel,
		CallTimeout:     DefaultCallTimeout,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks the interval bounds first, then, outside dry-run, that
// every credential is present. Missing credentials are listed by env name.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gt", "gtefield", "lte":
			return fmt.Errorf("%w (min=%v, max=%v)", ErrInvalidInterval, s.MinHours, s.MaxHours)
		case "required_if":
			missing = append(missing, fe.Field())
		default:
			return fmt.Errorf("invalid setting %s: %s", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
}
