package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/bowerhall/rene/internal/agent"
	"github.com/bowerhall/rene/internal/assistant"
	"github.com/bowerhall/rene/internal/calc"
	"github.com/bowerhall/rene/internal/config"
	"github.com/bowerhall/rene/internal/emotion"
	"github.com/bowerhall/rene/internal/guard"
	"github.com/bowerhall/rene/internal/logger"
	"github.com/bowerhall/rene/internal/ratelimit"
	"github.com/bowerhall/rene/internal/server"
	"github.com/bowerhall/rene/internal/session"
	"github.com/bowerhall/rene/internal/storage"
	"github.com/bowerhall/rene/internal/tools"
	"github.com/bowerhall/rene/internal/tts"
)

func init() {
	godotenv.Load()
}

const assistantName = "レネ"

const assistantInstructions = "君は親切で優しいAIアシスタントだ。" +
	"話し方は砕けていて親しみやすく、フレンドリーに話す。" +
	"常に日本語で返事をして、" +
	"返答は30文字以内の1文で簡潔にする。" +
	"ニュースや天気を伝える時も要点だけを短く伝える。" +
	"必要に応じて、登録されたツールを使って応答する。" +
	"絶対に「にゃん」という語尾は使わない。"

// ensureAssistant reuses the configured assistant if it still exists,
// otherwise registers a fresh one with the current tool definitions.
func ensureAssistant(ctx context.Context, client *assistant.Client, cfg config.EngineConfig) (string, error) {
	if cfg.AssistantID != "" {
		if err := client.RetrieveAssistant(ctx, cfg.AssistantID); err == nil {
			logger.Info("reusing assistant", "assistant", cfg.AssistantID)
			return cfg.AssistantID, nil
		}
		logger.Warn("configured assistant not found, creating a new one", "assistant", cfg.AssistantID)
	}

	id, err := client.CreateAssistant(ctx, assistantName, assistantInstructions, cfg.Model, tools.Definitions())
	if err != nil {
		return "", err
	}

	logger.Info("assistant created", "assistant", id)
	logger.Info("add ASSISTANT_ID to .env to reuse it", "assistant", id)

	return id, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := assistant.NewClient(assistant.Config{
		APIKey:  cfg.Engine.APIKey,
		BaseURL: cfg.Engine.BaseURL,
	})

	assistantID, err := ensureAssistant(ctx, engine, cfg.Engine)
	if err != nil {
		logger.Fatal("failed to ensure assistant", "error", err)
	}

	rules := guard.DefaultRules()
	if cfg.Guard.RulesFile != "" {
		rules, err = guard.LoadRules(cfg.Guard.RulesFile)
		if err != nil {
			logger.Fatal("failed to load guard rules", "error", err)
		}
		logger.Info("guard rules loaded", "file", cfg.Guard.RulesFile)
	}

	defense, err := guard.New(rules, cfg.Guard.WarnAfter)
	if err != nil {
		logger.Fatal("failed to build guard", "error", err)
	}

	scorer := emotion.NewScorer(cfg.Speech.AnalyzeURL, nil)
	sessions := session.NewStore(session.Config{
		MaxSize: cfg.Sessions.MaxThreads,
		TTL:     cfg.Sessions.TTL,
	})

	dispatcher := tools.NewDispatcher(tools.Config{
		Sentiment:      scorer,
		WeatherAPIKey:  cfg.Weather.APIKey,
		WeatherBaseURL: cfg.Weather.BaseURL,
		NewsFeedURL:    cfg.News.FeedURL,
		Timezone:       loc,
		Evaluator:      calc.New(),
	})

	rene := agent.New(agent.Config{
		Engine:       engine,
		AssistantID:  assistantID,
		Limiter:      ratelimit.New(ratelimit.Config{MaxRequests: cfg.Rate.MaxRequests, Window: cfg.Rate.Window}),
		Guard:        defense,
		Sessions:     sessions,
		Scorer:       scorer,
		Dispatcher:   dispatcher,
		PollInterval: cfg.Run.PollInterval,
		MaxPolls:     cfg.Run.MaxPolls,
	})

	var archive *storage.Archive
	if cfg.Storage.Enabled {
		archive, err = storage.NewArchive(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			logger.Fatal("failed to create audio archive", "error", err)
		}
		if err := archive.Init(ctx); err != nil {
			logger.Fatal("failed to init audio archive", "error", err)
		}
		logger.Info("audio archive enabled", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)
	}

	handlerCfg := server.Config{
		Agent:        rene,
		Speaker:      tts.NewClient(cfg.Speech.SpeakURL, nil),
		AssistantID:  assistantID,
		SessionCount: sessions.Len,
	}
	if archive != nil {
		handlerCfg.Archive = archive
	}
	handler := server.NewHandler(handlerCfg)

	// periodic housekeeping: expire idle threads without waiting for
	// their user's next request
	scheduler := cron.New()
	scheduler.AddFunc("@every 10m", func() {
		if removed := sessions.Sweep(); removed > 0 {
			logger.Info("session sweep", "removed", removed, "live", sessions.Len())
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("rene is listening", "port", cfg.Port, "assistant", assistantID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
