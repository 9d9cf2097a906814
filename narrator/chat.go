package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/nocturne/types"
)

// Mode selects the URL layout and authentication of a ChatClient.
type Mode string

const (
	ModeAzure  Mode = "azure"
	ModeOpenAI Mode = "openai"
)

const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultAzureAPIVersion = "2024-06-01"
	defaultTimeout         = 60 * time.Second
)

// ChatClient calls an OpenAI-compatible chat completions endpoint, either
// Azure OpenAI (deployment URL, api-key header) or OpenAI (bearer token).
type ChatClient struct {
	mode        Mode
	baseURL     string
	apiKey      string
	apiVersion  string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	log         *zap.Logger
}

// ChatOption configures a ChatClient.
type ChatOption func(*ChatClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ChatOption {
	return func(c *ChatClient) { c.httpClient = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) ChatOption {
	return func(c *ChatClient) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ChatOption {
	return func(c *ChatClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ChatOption {
	return func(c *ChatClient) { c.temperature = t }
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) ChatOption {
	return func(c *ChatClient) { c.maxTokens = n }
}

// NewAzure creates a client for an Azure OpenAI deployment. model is the
// deployment name.
func NewAzure(endpoint, apiKey, apiVersion, model string, opts ...ChatOption) *ChatClient {
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	return newChatClient(ModeAzure, endpoint, apiKey, apiVersion, model, opts)
}

// NewOpenAI creates a client for the OpenAI API or a compatible server.
func NewOpenAI(baseURL, apiKey, model string, opts ...ChatOption) *ChatClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return newChatClient(ModeOpenAI, baseURL, apiKey, "", model, opts)
}

func newChatClient(mode Mode, base, apiKey, apiVersion, model string, opts []ChatOption) *ChatClient {
	c := &ChatClient{
		mode:        mode,
		baseURL:     strings.TrimRight(base, "/"),
		apiKey:      apiKey,
		apiVersion:  apiVersion,
		model:       model,
		temperature: 0.8,
		maxTokens:   1024,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Endpoint returns the URL requests are posted to.
func (c *ChatClient) Endpoint() string {
	if c.mode == ModeAzure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiVersion))
	}
	return c.baseURL + "/chat/completions"
}

// Narrate sends the conversation and returns the first choice's content.
// There is no retry: a failed turn is reported to the player, who may resend.
func (c *ChatClient) Narrate(ctx context.Context, messages []types.Message) (string, error) {
	body := chatRequest{
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if c.mode == ModeOpenAI {
		body.Model = c.model
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.mode == ModeAzure {
		req.Header.Set("api-key", c.apiKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("chat request failed", zap.String("mode", string(c.mode)), zap.Error(err))
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	c.log.Debug("chat response",
		zap.String("mode", string(c.mode)),
		zap.String("model", c.model),
		zap.Int("status", resp.StatusCode),
		zap.Int("messages", len(messages)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("narrator: backend error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyReply
	}
	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
