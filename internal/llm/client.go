package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "gemini-2.0-flash"

	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 60 * time.Second
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
type OpenAIClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAIClient creates a client for baseURL. The SDK's own retries are
// disabled; rate limits surface as ErrRateLimited for the caller to handle.
func NewOpenAIClient(baseURL, apiKey, model string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIClient{
		client:  openai.NewClient(reqOpts...),
		model:   model,
		timeout: DefaultTimeout,
		logger:  slog.Default().With("component", "llm", "model", model),
	}, nil
}

// SetTimeout sets the per-call timeout
func (c *OpenAIClient) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// GetModelName returns the model name
func (c *OpenAIClient) GetModelName() string {
	return c.model
}

// Complete sends one chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages, err := toParams(req.Messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  openai.FunctionParameters(tool.Parameters),
		}))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isRateLimitError(err) {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	msg := completion.Choices[0].Message
	resp := &Response{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		call := ToolCall{ID: tc.ID, Name: tc.Function.Name}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Arguments); err != nil {
				return nil, fmt.Errorf("invalid arguments for tool %s: %w", tc.Function.Name, err)
			}
		}
		resp.ToolCalls = append(resp.ToolCalls, call)
	}
	resp.Turn = Message{
		Role:      RoleModel,
		Text:      msg.Content,
		ToolCalls: resp.ToolCalls,
		native:    msg,
	}

	c.logger.Debug("completion received",
		"tool_calls", len(resp.ToolCalls),
		"tokens", completion.Usage.TotalTokens,
	)
	return resp, nil
}

func toParams(messages []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, m := range messages {
		switch m.Role {
		case RoleUser:
			params = append(params, openai.UserMessage(m.Text))
		case RoleModel:
			if native, ok := m.native.(openai.ChatCompletionMessage); ok {
				params = append(params, native.ToParam())
				continue
			}
			if len(m.ToolCalls) > 0 {
				return nil, fmt.Errorf("message %d: tool-call turn was not produced by this client", i)
			}
			params = append(params, openai.AssistantMessage(m.Text))
		case RoleFunction:
			if m.ToolResult == nil {
				return nil, fmt.Errorf("message %d: function message without result", i)
			}
			content, err := json.Marshal(m.ToolResult.Content)
			if err != nil {
				return nil, fmt.Errorf("message %d: failed to encode tool result: %w", i, err)
			}
			params = append(params, openai.ToolMessage(string(content), m.ToolResult.CallID))
		default:
			return nil, fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
	}
	return params, nil
}

// isRateLimitError reports whether the SDK error carries HTTP 429
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

var _ Client = (*OpenAIClient)(nil)
