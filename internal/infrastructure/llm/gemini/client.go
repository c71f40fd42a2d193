package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/resilience"
)

const (
	defaultModel       = "gemini-2.0-flash"
	maxInlineFileBytes = 20 << 20
)

// Client is the AI invoker backed by the Gemini API. Stored files are sent inline.
type Client struct {
	client    *genai.Client
	textModel *genai.GenerativeModel
	jsonModel *genai.GenerativeModel
	storage   ports.FileStorage
	executor  *resilience.Executor
}

func New(ctx context.Context, apiKey, modelName string, storage ports.FileStorage, executor *resilience.Executor) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if modelName == "" {
		modelName = defaultModel
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	jsonModel := client.GenerativeModel(modelName)
	jsonModel.ResponseMIMEType = "application/json"

	return &Client{
		client:    client,
		textModel: client.GenerativeModel(modelName),
		jsonModel: jsonModel,
		storage:   storage,
		executor:  executor,
	}, nil
}

var _ ports.AIInvoker = (*Client)(nil)

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) InvokeText(ctx context.Context, req domain.AIRequest) (string, error) {
	parts, err := c.parts(ctx, req.Prompt, req.FileURLs)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, c.textModel, parts)
}

// InvokeStructured asks for a JSON reply. The schema travels in the prompt because
// Gemini's response schema cannot describe open objects such as extracted_fields.
func (c *Client) InvokeStructured(ctx context.Context, req domain.AIRequest) (json.RawMessage, error) {
	prompt := req.Prompt
	if req.ResponseSchema != nil {
		schema, err := json.Marshal(req.ResponseSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal response schema: %w", err)
		}
		prompt += "\n\nRespond only with a JSON object matching this JSON schema:\n" + string(schema)
	}
	parts, err := c.parts(ctx, prompt, req.FileURLs)
	if err != nil {
		return nil, err
	}
	text, err := c.generate(ctx, c.jsonModel, parts)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("gemini reply is not valid json: %.200s", text)
	}
	return json.RawMessage(text), nil
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, parts []genai.Part) (string, error) {
	resp, err := resilience.Call(ctx, c.executor, "gemini.generate", func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, parts...)
	}, classifyGeminiError)
	if err != nil {
		return "", resilience.WrapTemporary("gemini generate", err, classifyGeminiError)
	}
	return responseText(resp)
}

func (c *Client) parts(ctx context.Context, prompt string, fileURLs []string) ([]genai.Part, error) {
	parts := []genai.Part{genai.Text(prompt)}
	for _, fileURL := range fileURLs {
		blob, err := c.blob(ctx, fileURL)
		if err != nil {
			return nil, err
		}
		parts = append(parts, blob)
	}
	return parts, nil
}

func (c *Client) blob(ctx context.Context, fileURL string) (genai.Blob, error) {
	if c.storage == nil {
		return genai.Blob{}, fmt.Errorf("gemini: file storage is not configured")
	}
	rc, err := c.storage.Open(ctx, fileURL)
	if err != nil {
		return genai.Blob{}, fmt.Errorf("open %s: %w", fileURL, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxInlineFileBytes+1))
	if err != nil {
		return genai.Blob{}, fmt.Errorf("read %s: %w", fileURL, err)
	}
	if len(data) > maxInlineFileBytes {
		return genai.Blob{}, fmt.Errorf("file %s exceeds inline limit", fileURL)
	}
	return genai.Blob{MIMEType: mimeType(fileURL, data), Data: data}, nil
}

func mimeType(fileURL string, data []byte) string {
	name := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		name = u.Path
	}
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(name))); byExt != "" {
		if base, _, err := mime.ParseMediaType(byExt); err == nil {
			return base
		}
	}
	base, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return base
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return strings.TrimSpace(sb.String()), nil
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
