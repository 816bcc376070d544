package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"rfpdesk/internal/extract"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxPayloadBytes caps what gets transmitted inline: only the leading slice
// of an oversized file is sent, so such documents are analyzed up to the
// truncation point.
const MaxPayloadBytes = 5 * 1024 * 1024

type Config struct {
	APIKey  string
	BaseURL string        // default https://api.mistral.ai/v1
	Timeout time.Duration // http client timeout

	// PayloadLimit overrides MaxPayloadBytes when > 0.
	PayloadLimit int
}

// Client calls the Mistral OCR endpoint and normalizes its response shapes
// into one text blob.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PayloadLimit <= 0 {
		cfg.PayloadLimit = MaxPayloadBytes
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

type ocrPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type ocrResponse struct {
	Text  string    `json:"text"`
	Pages []ocrPage `json:"pages"`
}

// ExtractText sends the stored file's public URL when available, otherwise
// an inline data URL built from the leading PayloadLimit bytes. Transport
// failures and non-2xx responses come back as errors with empty text; the
// selector decides whether that is terminal.
func (c *Client) ExtractText(ctx context.Context, in extract.Input) (string, int, error) {
	reqID := uuid.New().String()
	start := time.Now()

	fileURL := in.StorageURL
	if fileURL == "" {
		data := in.Data
		if len(data) > c.cfg.PayloadLimit {
			data = data[:c.cfg.PayloadLimit]
		}
		fileURL = fmt.Sprintf("data:%s;base64,%s", in.FileType, base64.StdEncoding.EncodeToString(data))
	}

	payload, err := json.Marshal(map[string]string{
		"url":    fileURL,
		"format": "json",
	})
	if err != nil {
		return "", 0, fmt.Errorf("encode ocr request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/ocr"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("req_id", reqID).Error("ocr request failed")
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.WithFields(logrus.Fields{
		"req_id":      reqID,
		"status":      resp.StatusCode,
		"bytes":       len(raw),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("ocr response")

	if resp.StatusCode/100 != 2 {
		return "", 0, fmt.Errorf("ocr failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var body ocrResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", 0, fmt.Errorf("decode ocr response: %w", err)
	}

	return normalize(body)
}

// normalize flattens the two response shapes the endpoint produces: a flat
// text field, or per-page markdown fragments which are concatenated in
// ascending page order.
func normalize(body ocrResponse) (string, int, error) {
	if body.Text != "" {
		return body.Text, 0, nil
	}

	if len(body.Pages) == 0 {
		return "", 0, nil
	}

	pages := make([]ocrPage, len(body.Pages))
	copy(pages, body.Pages)
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})

	fragments := make([]string, 0, len(pages))
	for _, p := range pages {
		fragments = append(fragments, p.Markdown)
	}

	return strings.Join(fragments, "\n\n"), len(pages), nil
}
