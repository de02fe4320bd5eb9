// Package publisher posts approved text to the social platforms.
package publisher

import (
	"context"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

// DefaultTimeout is used when the caller does not supply an HTTP client.
const DefaultTimeout = 60 * time.Second

// Publisher is one platform sink. Publish makes a single attempt.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, text string) error
}

// NewHTTPClient returns a pooled client with a request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := cleanhttp.DefaultPooledClient()
	c.Timeout = timeout
	return c
}

// DryRun logs what would have been posted and never touches the network.
type DryRun struct {
	platform string
	target   string
	logger   *zerolog.Logger
}

func NewDryRun(platform, target string, logger *zerolog.Logger) *DryRun {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &DryRun{platform: platform, target: target, logger: logger}
}

func (d *DryRun) Platform() string { return d.platform }

func (d *DryRun) Publish(_ context.Context, text string) error {
	d.logger.Info().
		Str("platform", d.platform).
		Str("target", d.target).
		Str("text", text).
		Msg("[DRY_RUN] would post")
	return nil
}

// clip limits s to n characters.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
