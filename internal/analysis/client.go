package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rfpdesk/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Config struct {
	APIKey      string
	BaseURL     string  // default https://api.mistral.ai/v1
	Model       string  // default mistral-small
	Temperature float32 // default 0.3
	MaxTokens   int     // default 1000
	Timeout     time.Duration
}

// Client turns extracted text into a structured record via the chat
// completions endpoint. One attempt per run: a failed call degrades to an
// empty record, it is never retried and never surfaces as a fault.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-small"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Record is the outcome of one analysis attempt. Err marks a soft failure:
// Fields are all absent and the caller persists a degraded record.
type Record struct {
	Fields types.AnalysisFields
	Err    string
}

// Failed reports whether the attempt produced no structured fields.
func (r Record) Failed() bool {
	return r.Err != ""
}

// Analyze sends the (truncated) text with the fixed extraction instruction
// and parses the JSON reply. It returns an error only for request-building
// or transport problems the caller may want to log; the Record always
// captures the soft-failure state either way.
func (c *Client) Analyze(ctx context.Context, text string) (Record, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(text)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	content, err := c.chat(ctx, reqID, body)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"req_id":      reqID,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Error("analysis request failed")
		return Record{Err: "analysis request failed"}, err
	}

	fields, ok := parseFields(content)
	if !ok {
		c.logger.WithField("req_id", reqID).Warn("analysis reply was not valid JSON")
		return Record{Err: "failed to parse analysis results"}, nil
	}

	c.logger.WithFields(logrus.Fields{
		"req_id":       reqID,
		"project_name": fields.ProjectName,
		"requirements": len(fields.Requirements),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("analysis complete")

	return Record{Fields: fields}, nil
}

// Answer responds to a follow-up question about a document, grounded on its
// stored summary text. Plain text reply, no schema constraint.
func (c *Client) Answer(ctx context.Context, summary, question string) (string, error) {
	reqID := uuid.New().String()

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": "Answer questions about the provided RFP document. Be concise and only use information from the document."},
			{"role": "user", "content": buildChatPrompt(summary, question)},
		},
	}

	content, err := c.chat(ctx, reqID, body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(content), nil
}

func (c *Client) chat(ctx context.Context, reqID string, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("chat failed with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}

	c.logger.WithFields(logrus.Fields{
		"req_id": reqID,
		"status": resp.StatusCode,
	}).Debug("chat response")

	return cc.Choices[0].Message.Content, nil
}
