package tools

import (
	"context"
	"net/http"
	"time"

	"github.com/bowerhall/rene/internal/calc"
)

// The closed set of tool names the assistant is registered with.
// Dispatch is an exhaustive switch over these; anything else falls into
// the graceful unknown branch.
const (
	NameAnalyzeEmotion = "analyze_emotion"
	NameGetWeather     = "get_weather"
	NameGetTime        = "get_time"
	NameGetDate        = "get_date"
	NameCalculate      = "calculate"
	NameGetFortune     = "get_fortune"
	NameGetNews        = "get_news"
)

// SentimentClient is the slice of the sentiment service the
// analyze_emotion tool needs.
type SentimentClient interface {
	RawScores(ctx context.Context, text string) (map[string]any, error)
}

type Dispatcher struct {
	sentiment  SentimentClient
	weatherKey string
	weatherURL string
	newsURL    string
	timezone   *time.Location
	evaluator  *calc.Evaluator
	httpClient *http.Client
	now        func() time.Time
}

type Config struct {
	Sentiment      SentimentClient
	WeatherAPIKey  string
	WeatherBaseURL string
	NewsFeedURL    string
	Timezone       *time.Location
	Evaluator      *calc.Evaluator
	HTTPClient     *http.Client
}
