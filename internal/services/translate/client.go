package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scribe/internal/transcript"
)

const (
	defaultEndpoint       = "https://translate.googleapis.com/translate_a/single"
	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second

	// maxChunkSize keeps requests under the endpoint's 5000 character cap.
	maxChunkSize = 4500

	// latinThreshold is the Latin-letter ratio above which a passage counts
	// as source-language text worth translating.
	latinThreshold = 0.5
)

// Config captures the runtime settings for the translation client.
type Config struct {
	SourceLanguage string
	TargetLanguage string
	TimeoutSeconds int
	Endpoint       string
}

// Client translates text through the Google Translate web endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a translation client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			SourceLanguage: strings.TrimSpace(cfg.SourceLanguage),
			TargetLanguage: strings.TrimSpace(cfg.TargetLanguage),
			TimeoutSeconds: cfg.TimeoutSeconds,
			Endpoint:       strings.TrimSpace(cfg.Endpoint),
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.SourceLanguage == "" {
		client.cfg.SourceLanguage = "en"
	}
	if client.cfg.TargetLanguage == "" {
		client.cfg.TargetLanguage = "zh-TW"
	}
	if client.cfg.Endpoint == "" {
		client.cfg.Endpoint = defaultEndpoint
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// NeedsTranslation reports whether text is predominantly source-language
// prose rather than target-language text.
func NeedsTranslation(text string) bool {
	return transcript.PredominantlyLatin(text, latinThreshold)
}

// Translate renders text into the target language. Empty input and text
// already in the target script return an empty string without a request.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || !NeedsTranslation(text) {
		return "", nil
	}

	if len(text) <= maxChunkSize {
		return c.translateChunk(ctx, text)
	}

	var translated []string
	for _, chunk := range SplitChunks(text, maxChunkSize) {
		result, err := c.translateChunk(ctx, chunk)
		if err != nil {
			return "", err
		}
		if result != "" {
			translated = append(translated, result)
		}
	}
	return strings.Join(translated, " "), nil
}

func (c *Client) translateChunk(ctx context.Context, chunk string) (string, error) {
	var lastErr error
	delay := c.retryBaseDelay
	for attempt := 0; attempt < c.retryMaxAttempts; attempt++ {
		if attempt > 0 {
			c.sleeper(delay)
			delay *= 2
			if delay > c.retryMaxDelay {
				delay = c.retryMaxDelay
			}
		}

		result, err := c.request(ctx, chunk)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return "", fmt.Errorf("translate: %w", lastErr)
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("translate request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) request(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", c.cfg.SourceLanguage)
	params.Set("tl", c.cfg.TargetLanguage)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return decodeResponse(body)
}

// decodeResponse extracts the translated text from the endpoint's nested
// array payload: [[["translated","original",...],...],...].
func decodeResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", errors.New("decode response: empty payload")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &sentences); err != nil {
		return "", fmt.Errorf("decode sentences: %w", err)
	}

	var builder strings.Builder
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(sentence[0], &part); err != nil {
			continue
		}
		builder.WriteString(part)
	}
	return strings.TrimSpace(builder.String()), nil
}
