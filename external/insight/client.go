package insight

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/leagueledger/league-ledger/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
)

var errInsightTransient = crerr.New("insight provider transient failure")

// ErrUnavailable marks every failure of the narrative collaborator.
// Callers must degrade to an "insights unavailable" status instead of
// failing the surrounding report.
var ErrUnavailable = crerr.New("insight provider unavailable")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client generates narrative text through an OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	model          string
	maxTokens      int
	temperature    float64
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		client:         &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		model:          strings.TrimSpace(cfg.Model),
		maxTokens:      maxTokens,
		temperature:    temperature,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Available reports whether the provider is configured at all. It does
// not probe the network.
func (c *Client) Available() bool {
	return c != nil && c.baseURL != "" && c.model != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = "You are a fantasy football analyst. You write short, sharp commentary grounded only in the numbers you are given."

// Generate sends a prompt and returns the model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", crerr.Wrap(ErrUnavailable, "provider is not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", crerr.New("prompt is required")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "insight circuit breaker rejected request", "state", c.breaker.State())
			return "", crerr.Wrap(ErrUnavailable, "provider is cooling down")
		}
	}

	text, err := c.complete(ctx, prompt)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errInsightTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", crerr.Wrap(err, "marshal completion request")
	}
	_, _ = buf.Write(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", strings.NewReader(buf.String()))
	if err != nil {
		return "", crerr.Wrap(err, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", crerr.Mark(crerr.Wrap(ErrUnavailable, "send completion request"), errInsightTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", crerr.Mark(crerr.Wrap(ErrUnavailable, "read completion response"), errInsightTransient)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		c.logger.WarnContext(ctx, "insight provider transient failure", "status", resp.StatusCode)
		return "", crerr.Mark(crerr.Wrapf(ErrUnavailable, "provider status=%d", resp.StatusCode), errInsightTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return "", crerr.Wrapf(ErrUnavailable, "provider status=%d body=%s", resp.StatusCode, abbreviate(raw))
	}

	var decoded chatResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return "", crerr.Wrap(err, "decode completion response")
	}
	if decoded.Error != nil {
		return "", crerr.Wrapf(ErrUnavailable, "provider error: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", crerr.Wrap(ErrUnavailable, "provider returned no choices")
	}

	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", crerr.Wrap(ErrUnavailable, "provider returned empty text")
	}
	return text, nil
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// Model returns the configured model name for status reporting.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
