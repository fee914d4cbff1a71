// Package tools answers the engine's tool calls. Every handler catches
// its own failures and degrades to a safe payload so one broken tool
// never aborts the dispatch of its siblings.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bowerhall/rene/internal/assistant"
	"github.com/bowerhall/rene/internal/calc"
	"github.com/bowerhall/rene/internal/logger"
)

func NewDispatcher(cfg Config) *Dispatcher {
	tz := cfg.Timezone
	if tz == nil {
		tz = time.UTC
	}

	evaluator := cfg.Evaluator
	if evaluator == nil {
		evaluator = calc.New()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Dispatcher{
		sentiment:  cfg.Sentiment,
		weatherKey: cfg.WeatherAPIKey,
		weatherURL: cfg.WeatherBaseURL,
		newsURL:    cfg.NewsFeedURL,
		timezone:   tz,
		evaluator:  evaluator,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Dispatch answers every pending tool call in the batch. The result
// always has one output per call.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []assistant.ToolCall) []assistant.ToolOutput {
	outputs := make([]assistant.ToolOutput, 0, len(calls))

	for _, call := range calls {
		logger.Debug("dispatching tool", "name", call.Name, "id", call.ID)
		outputs = append(outputs, assistant.ToolOutput{
			ToolCallID: call.ID,
			Output:     d.invoke(ctx, call),
		})
	}

	return outputs
}

func (d *Dispatcher) invoke(ctx context.Context, call assistant.ToolCall) string {
	args := parseArgs(call.Arguments)

	switch call.Name {
	case NameAnalyzeEmotion:
		return d.analyzeEmotion(ctx, args)
	case NameGetWeather:
		return d.getWeather(ctx, args)
	case NameGetTime:
		return d.getTime()
	case NameGetDate:
		return d.getDate()
	case NameCalculate:
		return d.calculate(args)
	case NameGetFortune:
		return d.getFortune()
	case NameGetNews:
		return d.getNews(ctx)
	default:
		// forward compatibility: the engine may declare tools we
		// don't know yet
		logger.Warn("unknown tool requested", "name", call.Name)
		return mustJSON(map[string]any{"error": fmt.Sprintf("知らない機能「%s」...", call.Name)})
	}
}

func parseArgs(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		logger.Warn("unparseable tool arguments", "error", err)
	}
	return args
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"error":"internal"}`
	}
	return string(data)
}

func (d *Dispatcher) analyzeEmotion(ctx context.Context, args map[string]any) string {
	text := stringArg(args, "text", "")

	if d.sentiment == nil {
		return mustJSON(map[string]any{"error": "感情分析に失敗した..."})
	}

	scores, err := d.sentiment.RawScores(ctx, text)
	if err != nil {
		logger.Warn("emotion analysis failed", "error", err)
		return mustJSON(map[string]any{"error": "感情分析に失敗した..."})
	}

	return mustJSON(scores)
}

func (d *Dispatcher) calculate(args map[string]any) string {
	expr := stringArg(args, "expression", "")

	result, err := d.evaluator.Eval(expr)
	if err != nil {
		return mustJSON(map[string]any{"error": "計算できない..."})
	}

	return mustJSON(map[string]any{"result": fmt.Sprintf("%s = %s", expr, calc.FormatResult(result))})
}

func (d *Dispatcher) getTime() string {
	now := d.now().In(d.timezone)

	meridiem := "午前"
	hour := now.Hour()
	if hour >= 12 {
		meridiem = "午後"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	return mustJSON(map[string]any{
		"time": fmt.Sprintf("今は%s %02d時%02d分。", meridiem, hour12, now.Minute()),
	})
}

var japaneseWeekdays = [7]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

func (d *Dispatcher) getDate() string {
	now := d.now().In(d.timezone)

	return mustJSON(map[string]any{
		"date": fmt.Sprintf("今日は%04d年%02d月%02d日（%s）。",
			now.Year(), int(now.Month()), now.Day(), japaneseWeekdays[now.Weekday()]),
	})
}
