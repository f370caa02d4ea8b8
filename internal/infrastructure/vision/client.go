package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.5-flash"
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	// Quota errors asking for a longer wait than this are returned without retrying
	maxRetryDelay = 30 * time.Second
)

// after is swapped out in tests
var after = time.After

// ClientConfig configures the Gemini client
type ClientConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxRetries  int
}

// modelsAPI is the part of genai.Models the client calls
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends document bytes and a prompt to Gemini and returns the text answer
type Client struct {
	models      modelsAPI
	model       string
	timeout     time.Duration
	temperature float32
	maxRetries  int
	logger      *zap.Logger
}

// NewClient creates a Client for the Gemini API backend
func NewClient(ctx context.Context, cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("vision api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(client.Models, cfg, logger), nil
}

func newClient(models modelsAPI, cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	return &Client{
		models:      models,
		model:       model,
		timeout:     timeout,
		temperature: float32(cfg.Temperature),
		maxRetries:  retries,
		logger:      logger,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Generate sends the document as inline data followed by the prompt.
// Temporary API errors are retried up to MaxRetries attempts in total.
func (c *Client) Generate(ctx context.Context, data []byte, mimeType, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("vision client is not initialized")
	}
	if len(data) == 0 {
		return "", errors.New("document data must not be empty")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.temperature),
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		output, err := c.generateOnce(ctx, contents, config)
		if err == nil {
			return output, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == c.maxRetries || ctx.Err() != nil {
			break
		}
		c.logger.Warn("Retrying vision request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-after(delay):
		}
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(callCtx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("vision api returned no response")
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("vision api returned empty response")
	}
	return output, nil
}

var retryAfterPattern = regexp.MustCompile(`retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// retryDelay reports whether err is worth retrying and how long to wait first
func retryDelay(err error, attempt int) (time.Duration, bool) {
	code, message, ok := apiErrorOf(err)
	if !ok {
		return 0, false
	}
	backoff := time.Duration(attempt) * time.Second
	switch {
	case code == http.StatusTooManyRequests:
		if m := retryAfterPattern.FindStringSubmatch(message); m != nil {
			secs, parseErr := strconv.ParseFloat(m[1], 64)
			if parseErr == nil {
				wait := time.Duration(secs * float64(time.Second))
				if wait > maxRetryDelay {
					return 0, false
				}
				return wait, true
			}
		}
		return backoff, true
	case code >= http.StatusInternalServerError:
		return backoff, true
	}
	return 0, false
}

func apiErrorOf(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
