package moderation

import (
	"context"
	"errors"
	"sort"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

// DefaultModel is the moderation model used when none is configured.
const DefaultModel = "omni-moderation-latest"

// OpenAIClassifier calls the OpenAI moderations endpoint.
type OpenAIClassifier struct {
	Model  string
	client openai.Client
}

// ClassifierSettings configures NewOpenAIClassifier.
type ClassifierSettings struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewOpenAIClassifier(cfg ClassifierSettings) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("moderation api key missing")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClassifier{Model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) Outcome {
	resp, err := c.client.Moderations.New(ctx, openai.ModerationNewParams{
		Model: openai.ModerationModel(c.Model),
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return CheckFailed(err.Error())
	}
	if resp == nil || len(resp.Results) == 0 {
		return CheckFailed("moderation response has no results")
	}

	var flagged bool
	var categories []string
	for _, res := range resp.Results {
		if !res.Flagged {
			continue
		}
		flagged = true
		gjson.Parse(res.Categories.RawJSON()).ForEach(func(k, v gjson.Result) bool {
			if v.Bool() {
				categories = append(categories, k.String())
			}
			return true
		})
	}
	if !flagged {
		return Clear()
	}
	sort.Strings(categories)
	return Flagged(categories...)
}
