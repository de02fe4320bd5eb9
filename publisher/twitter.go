package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog"
)

const twitterTweetsURL = "https://api.twitter.com/2/tweets"

// TwitterConfig holds OAuth 1.0a user-context credentials. Posting requires
// user context; an app-only bearer token cannot create tweets.
type TwitterConfig struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string

	// Endpoint overrides the tweets URL, empty in production.
	Endpoint string
}

type tweetReq struct {
	Text string `json:"text"`
}

type tweetResp struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Twitter creates tweets through the v2 API.
type Twitter struct {
	cfg    TwitterConfig
	oauth  *oauth1.Config
	token  *oauth1.Token
	base   *http.Client
	logger *zerolog.Logger
}

func NewTwitter(cfg TwitterConfig, base *http.Client, logger *zerolog.Logger) (*Twitter, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.AccessToken == "" || cfg.AccessTokenSecret == "" {
		return nil, errors.New("twitter config must include api key/secret and access token/secret")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = twitterTweetsURL
	}
	if base == nil {
		base = NewHTTPClient(0)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Twitter{
		cfg:    cfg,
		oauth:  oauth1.NewConfig(cfg.APIKey, cfg.APISecret),
		token:  oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret),
		base:   base,
		logger: logger,
	}, nil
}

func (t *Twitter) Platform() string { return "twitter" }

// Publish posts text as a new tweet.
func (t *Twitter) Publish(ctx context.Context, text string) error {
	body, err := json.Marshal(tweetReq{Text: text})
	if err != nil {
		return err
	}

	// oauth1 signs on top of the client found in the context
	client := t.oauth.Client(context.WithValue(ctx, oauth1.HTTPClient, t.base), t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var data tweetResp
	if resp.StatusCode/100 != 2 {
		if err := json.NewDecoder(resp.Body).Decode(&data); err == nil && (data.Detail != "" || len(data.Errors) > 0) {
			return fmt.Errorf("failed to create tweet: http %d: %s", resp.StatusCode, tweetErrorMessage(data))
		}
		return fmt.Errorf("failed to create tweet: http %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return err
	}
	if data.Data.ID == "" {
		return fmt.Errorf("failed to create tweet: %s", tweetErrorMessage(data))
	}
	t.logger.Info().Str("id", data.Data.ID).Msg("posted to twitter")
	return nil
}

func tweetErrorMessage(data tweetResp) string {
	if data.Detail != "" {
		return data.Detail
	}
	if len(data.Errors) > 0 {
		return data.Errors[0].Message
	}
	if data.Title != "" {
		return data.Title
	}
	return "empty response"
}
