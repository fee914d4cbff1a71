package assistant

import "net/http"

// Run statuses as the remote engine reports them. Only
// StatusRequiresAction is handled locally; the rest either keep the
// poll loop going or end it.
const (
	StatusQueued         = "queued"
	StatusInProgress     = "in_progress"
	StatusRequiresAction = "requires_action"
	StatusCompleted      = "completed"
	StatusFailed         = "failed"
	StatusCancelled      = "cancelled"
	StatusExpired        = "expired"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// ToolDefinition describes one callable tool to the engine.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is an engine-issued request to invoke one tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// ToolOutput answers one ToolCall.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run is the engine-side execution of one submitted message.
type Run struct {
	ID        string
	Status    string
	LastError *RunError
	ToolCalls []ToolCall // populated when Status is requires_action
}
