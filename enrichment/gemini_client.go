// Package enrichment produces short generated texts through the Gemini API.
// Every call is best effort and degrades to a fixed message.
package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hanksha/turf-booking-backend/metrics"
	"github.com/patrickmn/go-cache"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"

	FallbackBookingNote    = "Great choice! See you on the field soon!"
	FallbackRecommendation = "Ready for a game? Book your favorite turf now and get moving!"
	FallbackSupportReply   = "I'm having trouble connecting to the support server right now. Please try again later."
)

var errNoAPIKey = errors.New("gemini api key not configured")

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	logger  *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache.New(10*time.Minute, 20*time.Minute),
		logger: slog.Default().With("component", "enrichment"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BookingNote(ctx context.Context, venueName, sport string) string {
	prompt := fmt.Sprintf("Write a short, energetic one-sentence confirmation message for a player who just booked %s to play %s. Use one emoji.", venueName, sport)
	return c.textOr(ctx, "", prompt, FallbackBookingNote)
}

func (c *Client) Recommendation(ctx context.Context, interest string) string {
	if strings.TrimSpace(interest) == "" {
		interest = "any sport"
	}
	prompt := fmt.Sprintf("Suggest in two sentences why someone interested in %s should book a turf session this week.", interest)
	return c.textOr(ctx, "", prompt, FallbackRecommendation)
}

func (c *Client) SupportReply(ctx context.Context, query string) string {
	system := "You are the support assistant of a sports turf booking platform. Answer briefly and politely. Bookings are one-hour slots between 06:00 AM and 11:00 PM, up to seven days ahead."
	return c.textOr(ctx, system, query, FallbackSupportReply)
}

func (c *Client) textOr(ctx context.Context, system, prompt, fallback string) string {
	text, err := c.Generate(ctx, system, prompt)
	if err != nil {
		c.logger.Warn("generation failed, using fallback text", "err", err)
		metrics.EnrichmentFallbacks.Inc()
		return fallback
	}
	return text
}

func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errNoAPIKey
	}

	cacheKey := system + "\x00" + prompt
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(string), nil
	}

	genURL, err := c.getURL("models", c.model+":generateContent")

	if err != nil {
		return "", err
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	body, err := json.Marshal(reqBody)

	if err != nil {
		return "", fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", genURL, bytes.NewReader(body))

	if err != nil {
		return "", fmt.Errorf("failed create new request: %w", err)
	}

	c.setHeaders(req)

	res, err := c.client.Do(req)

	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	bodyBytes, readErr := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		if readErr != nil {
			return "", fmt.Errorf("request failed with status %d; also failed reading body: %w", res.StatusCode, readErr)
		}
		return "", fmt.Errorf("request failed with status '%v' and body:\n%v", res.StatusCode, string(bodyBytes))
	}

	if readErr != nil {
		return "", fmt.Errorf("failed to read body: %w", readErr)
	}

	var generated generateResponse
	if err := json.Unmarshal(bodyBytes, &generated); err != nil {
		return "", fmt.Errorf("failed reading body: %w", err)
	}

	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("response contained no candidates")
	}

	text := strings.TrimSpace(generated.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("response contained empty text")
	}

	c.cache.Set(cacheKey, text, cache.DefaultExpiration)

	return text, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
}

func (c *Client) getURL(elem ...string) (string, error) {
	clientURL, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return "", fmt.Errorf("failed to create URL: %w", err)
	}

	return clientURL, nil
}
