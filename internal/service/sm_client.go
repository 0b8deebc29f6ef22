package service

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

	"invisinsights/internal/model"
)

const DefaultSurveyMonkeyBaseURL = "https://api.surveymonkey.com/v3"

// SurveyPlatform is the subset of the SurveyMonkey API the bridge needs
type SurveyPlatform interface {
	ListSurveys(ctx context.Context, token string) ([]model.SMSurveySummary, error)
	GetSurveyDetails(ctx context.Context, token, surveyID string) (*model.SMSurveyDetails, error)
	ListCollectors(ctx context.Context, token, surveyID string) ([]model.SMCollectorSummary, error)
	CreateResponse(ctx context.Context, token, collectorID string, payload *model.SubmissionPayload) error
}

// UpstreamError is a non-2xx answer from an external API
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Service, e.StatusCode, e.Body)
}

// SMClient wraps SurveyMonkey API calls. The access token is supplied per call
// because every connected project brings its own.
type SMClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSMClient creates a new SurveyMonkey API client
func NewSMClient(baseURL string, timeout time.Duration, logger *zap.Logger) *SMClient {
	if baseURL == "" {
		baseURL = DefaultSurveyMonkeyBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs one authenticated JSON request
func (c *SMClient) doRequest(ctx context.Context, method, path, token string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SurveyMonkey request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("surveymonkey call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Service: "SurveyMonkey", StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// ListSurveys lists the surveys visible to token
func (c *SMClient) ListSurveys(ctx context.Context, token string) ([]model.SMSurveySummary, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/surveys", token, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []model.SMSurveySummary `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse survey list: %w", err)
	}
	if result.Data == nil {
		return []model.SMSurveySummary{}, nil
	}
	return result.Data, nil
}

// GetSurveyDetails fetches the full page/question definition of a survey
func (c *SMClient) GetSurveyDetails(ctx context.Context, token, surveyID string) (*model.SMSurveyDetails, error) {
	path := fmt.Sprintf("/surveys/%s/details", url.PathEscape(surveyID))

	respBody, err := c.doRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var details model.SMSurveyDetails
	if err := json.Unmarshal(respBody, &details); err != nil {
		return nil, fmt.Errorf("failed to parse survey details: %w", err)
	}
	return &details, nil
}

// ListCollectors lists the collectors of a survey
func (c *SMClient) ListCollectors(ctx context.Context, token, surveyID string) ([]model.SMCollectorSummary, error) {
	path := fmt.Sprintf("/surveys/%s/collectors", url.PathEscape(surveyID))

	respBody, err := c.doRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []model.SMCollectorSummary `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse collector list: %w", err)
	}
	return result.Data, nil
}

// CreateResponse submits one completed response through a collector
func (c *SMClient) CreateResponse(ctx context.Context, token, collectorID string, payload *model.SubmissionPayload) error {
	path := fmt.Sprintf("/collectors/%s/responses", url.PathEscape(collectorID))
	_, err := c.doRequest(ctx, http.MethodPost, path, token, payload)
	return err
}
