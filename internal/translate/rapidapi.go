package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RapidAPIProvider calls the Google Translate 113 API on RapidAPI.
type RapidAPIProvider struct {
	client   *resty.Client
	endpoint string
	host     string
	key      string
}

type rapidRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type rapidResponse struct {
	Trans string `json:"trans"`
}

func NewRapidAPIProvider(host, key string, timeout time.Duration) *RapidAPIProvider {
	return &RapidAPIProvider{
		client:   resty.New().SetTimeout(timeout),
		endpoint: "https://" + host + "/api/v1/translator/text",
		host:     host,
		key:      key,
	}
}

// WithEndpoint points the provider at another URL.
func (p *RapidAPIProvider) WithEndpoint(endpoint string) *RapidAPIProvider {
	p.endpoint = endpoint
	return p
}

func (p *RapidAPIProvider) Name() string { return "rapidapi" }

func (p *RapidAPIProvider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if p.key == "" {
		return "", fmt.Errorf("RAPIDAPI_KEY: %w", ErrMissingKey)
	}

	var out rapidResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-rapidapi-host", p.host).
		SetHeader("x-rapidapi-key", p.key).
		SetBody(rapidRequest{From: from, To: to, Text: text}).
		SetResult(&out).
		Post(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("rapidapi returned status: %d", resp.StatusCode())
	}
	if out.Trans == "" {
		return "", ErrEmptyTranslation
	}
	return out.Trans, nil
}
