package llm

import "context"

// Role identifies who produced a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	// RoleFunction marks a message carrying a tool result back to the model
	RoleFunction Role = "function"
)

// Message is one entry of a completion request
type Message struct {
	Role Role
	Text string

	// ToolCalls is set on a model turn that requested tools
	ToolCalls []ToolCall
	// ToolResult is set on a RoleFunction message
	ToolResult *ToolResult

	// native is the provider's own representation of a model turn, replayed verbatim
	native any
}

// ToolCall is a model-proposed function invocation
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult answers a ToolCall
type ToolResult struct {
	CallID  string
	Name    string
	Content map[string]any
}

// ToolDeclaration describes a tool the model may call
type ToolDeclaration struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object
	Parameters map[string]any
}

// Request is the input of one completion call
type Request struct {
	Messages []Message
	Tools    []ToolDeclaration
}

// Response is the output of one completion call
type Response struct {
	Text      string
	ToolCalls []ToolCall

	// Turn is the model's reply as a message that can be appended to a later request
	Turn Message
}

// Client generates completions
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// UserMessage builds a user turn
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// ModelMessage builds a plain model turn
func ModelMessage(text string) Message {
	return Message{Role: RoleModel, Text: text}
}

// FunctionResponse builds the message returning a tool's result for call
func FunctionResponse(call ToolCall, content map[string]any) Message {
	return Message{
		Role: RoleFunction,
		ToolResult: &ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: content,
		},
	}
}
