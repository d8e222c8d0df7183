package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// GoogleFreeProvider uses the public translate_a endpoint. It needs no
// key but is unofficial and may be throttled.
type GoogleFreeProvider struct {
	client   *resty.Client
	endpoint string
}

func NewGoogleFreeProvider(timeout time.Duration) *GoogleFreeProvider {
	return &GoogleFreeProvider{
		client:   resty.New().SetTimeout(timeout),
		endpoint: "https://translate.googleapis.com/translate_a/single",
	}
}

func (p *GoogleFreeProvider) WithEndpoint(endpoint string) *GoogleFreeProvider {
	p.endpoint = endpoint
	return p
}

func (p *GoogleFreeProvider) Name() string { return "google" }

func (p *GoogleFreeProvider) Translate(ctx context.Context, text, from, to string) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     from,
			"tl":     to,
			"dt":     "t",
			"q":      text,
		}).
		Get(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("google Translate API returned status: %d", resp.StatusCode())
	}

	translation, err := parseGoogleTranslateResponse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	return translation, nil
}

// parseGoogleTranslateResponse joins the translated segments of a
// translate_a response: [[["seg","orig",...],...],...].
func parseGoogleTranslateResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	if len(response) == 0 {
		return "", errors.New("empty response from Google Translate")
	}

	translations, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, translation := range translations {
		if translationArray, ok := translation.([]interface{}); ok && len(translationArray) > 0 {
			if translatedText, ok := translationArray[0].(string); ok {
				result.WriteString(translatedText)
			}
		}
	}

	return result.String(), nil
}
