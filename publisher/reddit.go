package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// RedditTitleLimit is the maximum title length accepted by Reddit.
const RedditTitleLimit = 300

// RedditConfig holds script-app credentials and the target subreddit.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	Subreddit    string

	// Endpoint overrides, empty in production.
	TokenURL string
	APIBase  string
}

// Reddit submits self posts whose title is the text.
type Reddit struct {
	cfg    RedditConfig
	client *reddit.Client
	logger *zerolog.Logger
}

// NewReddit builds a password-grant client. The token is fetched on the first
// post and reused until it expires.
func NewReddit(cfg RedditConfig, client *http.Client, logger *zerolog.Logger) (*Reddit, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("reddit config must include client id, client secret, username and password")
	}
	if cfg.Subreddit == "" {
		return nil, errors.New("reddit subreddit is required")
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("reddit user agent is required")
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	// go-reddit 会原地替换 Transport，复制一份，不动共享的 client。
	hc := *client

	opts := []reddit.Opt{
		reddit.WithHTTPClient(&hc),
		reddit.WithUserAgent(cfg.UserAgent),
	}
	if cfg.TokenURL != "" {
		opts = append(opts, reddit.WithTokenURL(cfg.TokenURL))
	}
	if cfg.APIBase != "" {
		opts = append(opts, reddit.WithBaseURL(cfg.APIBase))
	}
	rc, err := reddit.NewClient(reddit.Credentials{
		ID:       cfg.ClientID,
		Secret:   cfg.ClientSecret,
		Username: cfg.Username,
		Password: cfg.Password,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Reddit{cfg: cfg, client: rc, logger: logger}, nil
}

func (r *Reddit) Platform() string { return "reddit" }

// Publish submits text as the title of an empty self post.
func (r *Reddit) Publish(ctx context.Context, text string) error {
	post, _, err := r.client.Post.SubmitText(ctx, reddit.SubmitTextRequest{
		Subreddit: r.cfg.Subreddit,
		Title:     clip(text, RedditTitleLimit),
	})
	if err != nil {
		return fmt.Errorf("failed to submit to reddit: %w", err)
	}
	if post == nil || post.ID == "" {
		return errors.New("failed to submit to reddit: response carried no post id")
	}
	r.logger.Info().Str("subreddit", r.cfg.Subreddit).Str("id", post.FullID).Str("url", post.URL).Msg("posted to reddit")
	return nil
}
