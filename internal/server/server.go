// Package server provides the HTTP surface: the chat endpoint, a
// health check and a capability descriptor. It stays thin; all
// decisions live in the agent.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/bowerhall/rene/internal/agent"
	"github.com/bowerhall/rene/internal/emotion"
	"github.com/bowerhall/rene/internal/logger"
)

const version = "2.0.0"

// Conversationalist handles one chat turn.
type Conversationalist interface {
	Process(ctx context.Context, userID, message string) (*agent.Reply, error)
}

// Speaker renders reply text to audio.
type Speaker interface {
	Synthesize(ctx context.Context, text string, emotions emotion.Vector) ([]byte, error)
}

// Archiver stores synthesized clips. Optional.
type Archiver interface {
	SaveClip(ctx context.Context, userID string, audio []byte)
}

type Handler struct {
	agent        Conversationalist
	speaker      Speaker
	archive      Archiver
	assistantID  string
	sessionCount func() int
}

type Config struct {
	Agent        Conversationalist
	Speaker      Speaker
	Archive      Archiver // nil disables archiving
	AssistantID  string
	SessionCount func() int
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		agent:        cfg.Agent,
		speaker:      cfg.Speaker,
		archive:      cfg.Archive,
		assistantID:  cfg.AssistantID,
		sessionCount: cfg.SessionCount,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/chat-agent", h.chatAgent)
	r.Get("/health", h.health)
	r.Get("/", h.root)

	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (h *Handler) chatAgent(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		Error(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	reply, err := h.agent.Process(r.Context(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrRateLimited) {
			Error(w, http.StatusTooManyRequests, "要求が多すぎます。少し待ってから再試行してください。")
			return
		}
		logger.Error("chat turn failed", "user", req.UserID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	audio, err := h.speaker.Synthesize(r.Context(), reply.Text, reply.Emotions)
	if err != nil {
		logger.Error("speech synthesis failed", "error", err)
		Error(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	if h.archive != nil {
		// detach from the request context, the upload may outlive it
		go h.archive.SaveClip(context.Background(), req.UserID, audio)
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("X-GPT-Reply", url.PathEscape(reply.Text))
	w.Header().Set("Access-Control-Expose-Headers", "X-GPT-Reply")
	w.Write(audio)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":                   "healthy",
		"assistant_id":             h.assistantID,
		"threads_count":            h.sessionCount(),
		"rate_limiter_active":      true,
		"injection_defense_active": true,
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp["memory_used_percent"] = vm.UsedPercent
	}

	JSON(w, http.StatusOK, resp)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"message": "レネ AI 비서 API (보안 강화 버전)",
		"version": version,
		"endpoints": map[string]string{
			"/chat-agent": "チャットエンドポイント",
			"/health":     "ヘルスチェック",
		},
		"security_features": []string{
			"Rate Limiting (分当たり10回)",
			"Prompt Injection Defense",
			"Safe Math Evaluation",
			"Thread Memory Management",
			"API Key Protection",
		},
	})
}
