package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"invisinsights/internal/config"
	"invisinsights/internal/model"
)

var (
	ErrReasoningDisabled = errors.New("OPENROUTER_API_KEY not set")
	ErrNoIntents         = errors.New("no intents provided for analysis")
)

// Analyzer turns a behavioral session summary into intent scores
type Analyzer interface {
	Analyze(ctx context.Context, session json.RawMessage, intents []model.Intent) (*Analysis, error)
}

// ReasoningClient calls an OpenRouter chat completion model
type ReasoningClient struct {
	config config.ReasoningConfig
	client *http.Client
	logger *zap.Logger
}

// NewReasoningClient creates a new reasoning client
func NewReasoningClient(cfg config.ReasoningConfig, logger *zap.Logger) *ReasoningClient {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReasoningClient{
		config: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

// Analyze scores a session against the given intents
func (c *ReasoningClient) Analyze(ctx context.Context, session json.RawMessage, intents []model.Intent) (*Analysis, error) {
	if !c.config.IsEnabled() {
		return nil, ErrReasoningDisabled
	}

	prompt, err := BuildAnalysisPrompt(session, intents)
	if err != nil {
		return nil, err
	}

	content, err := c.callOpenRouter(ctx, prompt)
	if err != nil {
		return nil, err
	}

	analysis, err := ParseAnalysis(content)
	if err != nil {
		c.logger.Warn("unparseable analysis", zap.Int("content_length", len(content)))
		return nil, err
	}
	return analysis, nil
}

// callOpenRouter makes a chat completion request and returns the first message content
func (c *ReasoningClient) callOpenRouter(ctx context.Context, prompt string) (string, error) {
	jsonBody, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.CompletionsEndpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("HTTP-Referer", c.config.Referer)
	req.Header.Set("X-Title", c.config.AppTitle)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenRouter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Service: "OpenRouter", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content, nil
	}
	return "", nil
}

// BuildAnalysisPrompt renders the scoring instructions for the given intents
func BuildAnalysisPrompt(session json.RawMessage, intents []model.Intent) (string, error) {
	unique := make([]model.Intent, 0, len(intents))
	seen := make(map[model.Intent]bool)
	for _, i := range intents {
		if !seen[i] {
			seen[i] = true
			unique = append(unique, i)
		}
	}
	if len(unique) == 0 {
		return "", ErrNoIntents
	}

	sessionJSON, err := formatSession(session)
	if err != nil {
		return "", err
	}

	list := make([]string, len(unique))
	fields := make([]string, len(unique))
	for i, intent := range unique {
		list[i] = "- " + string(intent)
		fields[i] = fmt.Sprintf("    %q: number (0-1)", string(intent))
	}
	schemaFields := strings.Join(fields, ",\n")

	return fmt.Sprintf(`You are a UX analytics assistant. Interpret the session summary as behavioral signals.
Return ONLY valid JSON with the specified fields.
Do not assume any survey wording or scale. Use only normalized intent scores.
Use probabilistic language (likely, suggests, indicates). Avoid absolute claims.
If evidence is weak, use 0.5 with low confidence.

INTENTS:
%s

Session summary JSON:
%s

Required JSON output schema:
{
  "intent_scores": {
%s
  },
  "confidence": {
%s
  },
  "open_feedback": string[]
}`, strings.Join(list, "\n"), sessionJSON, schemaFields, schemaFields), nil
}
