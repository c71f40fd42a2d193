package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/resilience"
)

// Attachments resolves stored file URLs into prompt text or images.
type Attachments interface {
	Resolve(ctx context.Context, fileURLs []string) (text string, images []string, err error)
}

type Client struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	attachments Attachments
	executor    *resilience.Executor
}

func New(baseURL, model string, timeout time.Duration, attachments Attachments, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		httpClient:  &http.Client{Timeout: timeout},
		attachments: attachments,
		executor:    executor,
	}
}

var _ ports.AIInvoker = (*Client)(nil)

func (c *Client) InvokeText(ctx context.Context, req domain.AIRequest) (string, error) {
	body, err := c.requestBody(ctx, req)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, body)
}

// InvokeStructured constrains the reply with the request schema and returns the JSON object it contains.
func (c *Client) InvokeStructured(ctx context.Context, req domain.AIRequest) (json.RawMessage, error) {
	body, err := c.requestBody(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.ResponseSchema != nil {
		body["format"] = req.ResponseSchema
	} else {
		body["format"] = "json"
	}

	text, err := c.generate(ctx, body)
	if err != nil {
		return nil, err
	}
	obj := extractJSONObject(text)
	if !json.Valid([]byte(obj)) {
		return nil, fmt.Errorf("ollama reply is not valid json: %.200s", text)
	}
	return json.RawMessage(obj), nil
}

func (c *Client) requestBody(ctx context.Context, req domain.AIRequest) (map[string]any, error) {
	prompt := req.Prompt
	var images []string
	if len(req.FileURLs) > 0 {
		if c.attachments == nil {
			return nil, fmt.Errorf("ollama: file attachments are not configured")
		}
		text, imgs, err := c.attachments.Resolve(ctx, req.FileURLs)
		if err != nil {
			return nil, fmt.Errorf("resolve attachments: %w", err)
		}
		prompt = appendAttachmentText(prompt, text)
		images = imgs
	}

	body := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	if len(images) > 0 {
		body["images"] = images
	}
	return body, nil
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	err := c.executor.Execute(ctx, "ollama.generate", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	}, classifyOllamaError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
