package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to a Gemini-style generative language API: a model list
// endpoint plus model:generateContent with ordered content parts.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type GenPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *GenInlineData `json:"inlineData,omitempty"`
}

type GenInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type GenContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []GenPart `json:"parts"`
}

type GenConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

type GenRequest struct {
	Contents         []GenContent `json:"contents"`
	GenerationConfig *GenConfig   `json:"generationConfig,omitempty"`
}

func InlinePart(mimeType string, data []byte) GenPart {
	return GenPart{InlineData: &GenInlineData{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// StatusError carries a non-2xx provider response so the caller can route
// on the status code and log the rejected body.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("model endpoint status: %s", e.Status)
	}
	return fmt.Sprintf("model endpoint status: %s: %s", e.Status, strings.TrimSpace(e.Body))
}

// ListModels returns the provider's model identifiers with the
// "models/" prefix stripped.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/models?key=%s", c.BaseURL, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp)
	}

	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

// GenerateContent sends one classification request and extracts the first
// non-empty text part from the candidate list, falling back to a top-level
// text field. Non-2xx responses come back as *StatusError.
func (c *Client) GenerateContent(ctx context.Context, model string, genReq GenRequest) (string, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newStatusError(resp)
	}

	var payload struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, cand := range payload.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, nil
			}
		}
	}
	return payload.Text, nil
}

func newStatusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(raw),
		RetryAfter: retryAfterFrom(resp.Header.Get("Retry-After"), raw),
	}
}

// retryAfterFrom reads the Retry-After header (seconds) or the RetryInfo
// detail some providers embed in the error body.
func retryAfterFrom(header string, body []byte) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	var errBody struct {
		Error struct {
			Details []map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil {
		return 0
	}
	for _, d := range errBody.Error.Details {
		t, ok := d["@type"].(string)
		if !ok || !strings.Contains(t, "RetryInfo") {
			continue
		}
		if s, ok := d["retryDelay"].(string); ok {
			if dur, err := time.ParseDuration(s); err == nil {
				return dur
			}
		}
	}
	return 0
}
