package narrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nathoo/nocturne/types"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient narrates through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// GeminiOptions configures NewGemini.
type GeminiOptions struct {
	Model string
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string
	Logger  *zap.Logger
}

// NewGemini creates a Gemini-backed narrator.
func NewGemini(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiClient{client: client, model: model, log: log}, nil
}

// Narrate sends the conversation. System messages become the system
// instruction; assistant turns map to the model role.
func (g *GeminiClient) Narrate(ctx context.Context, messages []types.Message) (string, error) {
	system, contents := toGeminiContents(messages)
	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.log.Warn("gemini request failed", zap.String("model", g.model), zap.Error(err))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	g.log.Debug("gemini response",
		zap.String("model", g.model),
		zap.Int("messages", len(messages)),
		zap.Duration("latency", time.Since(start)),
	)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// toGeminiContents splits the conversation into the system instruction and
// the alternating user/model contents.
func toGeminiContents(messages []types.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem:
			system = append(system, m.Content)
		case types.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
