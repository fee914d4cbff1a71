// Package assistant is the client for the remote reasoning engine's
// thread/run API. Transport details live here; the run-state semantics
// are the orchestrator's business.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != 200 {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	if respBody == nil {
		return nil
	}

	return json.Unmarshal(body, respBody)
}

type assistantPayload struct {
	ID string `json:"id"`
}

type createAssistantRequest struct {
	Name         string           `json:"name"`
	Instructions string           `json:"instructions"`
	Model        string           `json:"model"`
	Tools        []toolDefPayload `json:"tools"`
}

type toolDefPayload struct {
	Type     string          `json:"type"`
	Function toolDefFunction `json:"function"`
}

type toolDefFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// RetrieveAssistant checks that assistantID still exists remotely.
func (c *Client) RetrieveAssistant(ctx context.Context, assistantID string) error {
	return c.do(ctx, "GET", "/assistants/"+assistantID, nil, &assistantPayload{})
}

// CreateAssistant registers a new assistant with the given persona and
// tool definitions and returns its id.
func (c *Client) CreateAssistant(ctx context.Context, name, instructions, model string, tools []ToolDefinition) (string, error) {
	req := createAssistantRequest{
		Name:         name,
		Instructions: instructions,
		Model:        model,
	}

	for _, t := range tools {
		req.Tools = append(req.Tools, toolDefPayload{
			Type: "function",
			Function: toolDefFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	var resp assistantPayload
	if err := c.do(ctx, "POST", "/assistants", req, &resp); err != nil {
		return "", err
	}

	return resp.ID, nil
}

type threadPayload struct {
	ID string `json:"id"`
}

// CreateThread opens a new conversation thread.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp threadPayload
	if err := c.do(ctx, "POST", "/threads", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

type addMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AddMessage appends a message to a thread.
func (c *Client) AddMessage(ctx context.Context, threadID, role, content string) error {
	return c.do(ctx, "POST", "/threads/"+threadID+"/messages", addMessageRequest{Role: role, Content: content}, nil)
}

type createRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

type runPayload struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	LastError      *RunError `json:"last_error"`
	RequiredAction *struct {
		SubmitToolOutputs struct {
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"submit_tool_outputs"`
	} `json:"required_action"`
}

func (p *runPayload) toRun() *Run {
	run := &Run{
		ID:        p.ID,
		Status:    p.Status,
		LastError: p.LastError,
	}

	if p.RequiredAction != nil {
		for _, tc := range p.RequiredAction.SubmitToolOutputs.ToolCalls {
			run.ToolCalls = append(run.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}

	return run
}

// CreateRun starts a run of assistantID over threadID.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	var resp runPayload
	if err := c.do(ctx, "POST", "/threads/"+threadID+"/runs", createRunRequest{AssistantID: assistantID}, &resp); err != nil {
		return nil, err
	}
	return resp.toRun(), nil
}

// GetRun polls the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var resp runPayload
	if err := c.do(ctx, "GET", "/threads/"+threadID+"/runs/"+runID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toRun(), nil
}

type submitToolOutputsRequest struct {
	ToolOutputs []ToolOutput `json:"tool_outputs"`
}

// SubmitToolOutputs answers all pending tool calls of a run in one batch.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	return c.do(ctx, "POST", "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", submitToolOutputsRequest{ToolOutputs: outputs}, nil)
}

type listMessagesPayload struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// LatestAssistantMessage returns the text of the most recent
// assistant-authored message in the thread, or "" if there is none.
func (c *Client) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	var resp listMessagesPayload
	if err := c.do(ctx, "GET", "/threads/"+threadID+"/messages", nil, &resp); err != nil {
		return "", err
	}

	// the engine lists messages newest first
	for _, msg := range resp.Data {
		if msg.Role != "assistant" {
			continue
		}
		for _, part := range msg.Content {
			if part.Type == "text" {
				return part.Text.Value, nil
			}
		}
	}

	return "", nil
}
