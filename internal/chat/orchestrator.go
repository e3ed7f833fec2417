// Package chat runs one retrieval-augmented conversation turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dream-ai/bp-assistant/internal/db"
	"github.com/dream-ai/bp-assistant/internal/llm"
	"github.com/dream-ai/bp-assistant/internal/memory"
	"github.com/dream-ai/bp-assistant/internal/rag"
	"github.com/dream-ai/bp-assistant/internal/retry"
)

// DefaultUserID is used when a request names no user
const DefaultUserID = "default_user"

// ErrEmptyMessage is returned for a blank user message
var ErrEmptyMessage = errors.New("message cannot be empty")

// State is a step of the turn protocol
type State string

const (
	StateReceived           State = "received"
	StateRetrieving         State = "retrieving"
	StatePrompting          State = "prompting"
	StateAwaitingModel      State = "awaiting_model"
	StateToolRequested      State = "tool_requested"
	StateAwaitingTool       State = "awaiting_tool"
	StateAwaitingFinalModel State = "awaiting_final_model"
	StateResponding         State = "responding"
	StateDone               State = "done"
)

// Retriever finds manual chunks relevant to a question
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]*db.ScoredRecord, error)
}

// ToolDispatcher declares and runs the tools the model may call
type ToolDispatcher interface {
	Declarations() []llm.ToolDeclaration
	Dispatch(ctx context.Context, call llm.ToolCall) (map[string]any, error)
}

// Request is one incoming user message
type Request struct {
	Message string
	UserID  string
}

// Orchestrator answers user messages using retrieval, the model, tools and memory
type Orchestrator struct {
	retriever Retriever
	builder   *rag.ContextBuilder
	client    llm.Client
	tools     ToolDispatcher
	memory    memory.Store
	policy    retry.Policy
	logger    *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithRetryPolicy overrides the model-call retry policy.
// A policy without a classifier retries rate-limit errors.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger.With("component", "chat")
		}
	}
}

// NewOrchestrator wires the turn pipeline
func NewOrchestrator(
	retriever Retriever,
	builder *rag.ContextBuilder,
	client llm.Client,
	tools ToolDispatcher,
	store memory.Store,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		retriever: retriever,
		builder:   builder,
		client:    client,
		tools:     tools,
		memory:    store,
		policy:    retry.DefaultPolicy,
		logger:    slog.Default().With("component", "chat"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.builder == nil {
		o.builder = rag.NewContextBuilder(0, nil)
	}
	if o.policy.Retryable == nil {
		o.policy.Retryable = llm.IsRateLimited
	}
	if o.policy.Logger == nil {
		o.policy.Logger = o.logger
	}
	return o
}

// Turn answers one message and records the exchange in the user's history.
// Retrieval failures degrade to an answer without manual context. Rate limits
// that outlast the retry policy are returned wrapping llm.ErrRateLimited.
func (o *Orchestrator) Turn(ctx context.Context, req Request) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	userID := req.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	logger := o.logger.With("user_id", userID)
	logger.Debug("turn state", "state", StateReceived)

	logger.Debug("turn state", "state", StateRetrieving)
	history, err := o.memory.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	manualContext := o.retrieveContext(ctx, logger, req.Message)

	logger.Debug("turn state", "state", StatePrompting, "history_turns", len(history), "context_chars", len(manualContext))
	contents := make([]llm.Message, 0, len(history)+3)
	for _, t := range history {
		contents = append(contents, toMessage(t))
	}
	contents = append(contents, llm.UserMessage(o.builder.BuildPrompt(manualContext, req.Message)))

	var declarations []llm.ToolDeclaration
	if o.tools != nil {
		declarations = o.tools.Declarations()
	}

	logger.Debug("turn state", "state", StateAwaitingModel)
	resp, err := o.complete(ctx, llm.Request{Messages: contents, Tools: declarations})
	if err != nil {
		return "", err
	}
	answer := resp.Text

	if len(resp.ToolCalls) > 0 {
		call := resp.ToolCalls[0]
		logger.Debug("turn state", "state", StateToolRequested, "tool", call.Name, "requested", len(resp.ToolCalls))
		if o.tools == nil {
			return "", fmt.Errorf("model requested tool %s but no tools are configured", call.Name)
		}

		logger.Debug("turn state", "state", StateAwaitingTool)
		logger.Info("executing tool", "tool", call.Name, "args", call.Arguments)
		result, err := o.tools.Dispatch(ctx, call)
		if err != nil {
			return "", err
		}

		logger.Debug("turn state", "state", StateAwaitingFinalModel)
		contents = append(contents, resp.Turn, llm.FunctionResponse(call, result))
		final, err := o.complete(ctx, llm.Request{Messages: contents, Tools: declarations})
		if err != nil {
			return "", err
		}
		answer = final.Text
	}

	logger.Debug("turn state", "state", StateResponding)
	err = o.memory.Append(ctx, userID,
		memory.Turn{Role: memory.RoleUser, Text: req.Message},
		memory.Turn{Role: memory.RoleModel, Text: answer},
	)
	if err != nil {
		logger.Warn("failed to record turn", "err", err)
	}

	logger.Debug("turn state", "state", StateDone)
	return answer, nil
}

func (o *Orchestrator) retrieveContext(ctx context.Context, logger *slog.Logger, message string) string {
	if o.retriever == nil {
		return ""
	}
	records, err := o.retriever.Retrieve(ctx, message)
	if err != nil {
		logger.Warn("retrieval failed, answering without context", "err", err)
		return ""
	}
	return o.builder.BuildContext(records)
}

func (o *Orchestrator) complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return retry.Do(ctx, o.policy, func(ctx context.Context) (*llm.Response, error) {
		return o.client.Complete(ctx, req)
	})
}

func toMessage(t memory.Turn) llm.Message {
	if t.Role == memory.RoleModel {
		return llm.ModelMessage(t.Text)
	}
	return llm.UserMessage(t.Text)
}
