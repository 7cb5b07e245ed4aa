// Package llm rewrites raw notes into a Markdown post through an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/hugoblog/internal/apperr"
)

const (
	// DefaultTimeout bounds one generation request.
	DefaultTimeout = 2 * time.Minute

	temperature = 0.7
	maxTokens   = 4000
	service     = "llm"
)

// SystemPrompt is sent ahead of the user's raw text.
const SystemPrompt = `Transform the following raw thoughts into a well-structured blog post in Markdown format.
- Correct grammar and sentence structure
- Improve readability and flow
- Add appropriate headings (H2, H3) for sections
- Preserve the user's original writing style and vocabulary
- DO NOT add new content or expand beyond what's provided
- DO NOT change the meaning or intent of the original text
- Use Markdown syntax for formatting
- Keep the tone consistent with the original`

// Config is the endpoint and credentials for Client.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	// SiteURL and SiteName are sent as attribution headers when set.
	SiteURL  string
	SiteName string
}

// Generator turns raw text into a post body.
type Generator interface {
	Generate(ctx context.Context, raw string) (string, error)
}

// Client is a chat completions client.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ Generator = (*Client)(nil)

// NewClient creates a client. A nil hc gets a client with DefaultTimeout.
func NewClient(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{cfg: cfg, http: hc}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// apiError covers the error bodies of common compatible providers.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Generate sends raw to the endpoint and returns the first candidate's text
// verbatim. Blank input fails with apperr.ErrEmptyInput without a request.
func (c *Client) Generate(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("raw text: %w", apperr.ErrEmptyInput)
	}

	data, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: raw},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.SiteName != "" {
		req.Header.Set("X-Title", c.cfg.SiteName)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &apperr.ServiceError{Service: service, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperr.ServiceError{Service: service, Status: resp.StatusCode, Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &apperr.ServiceError{Service: service, Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &apperr.ServiceError{Service: service, Status: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	if len(out.Choices) == 0 {
		return "", &apperr.ServiceError{Service: service, Status: resp.StatusCode, Message: "no choices returned"}
	}
	content := out.Choices[0].Message.Content
	if content == "" {
		return "", &apperr.ServiceError{Service: service, Status: resp.StatusCode, Message: "empty content returned"}
	}
	return content, nil
}

func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != nil && e.Error.Message != "" {
			return e.Error.Message
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "no response body"
}
