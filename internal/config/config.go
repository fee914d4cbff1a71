package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func Load() (*Config, error) {
	port := os.Getenv("RENE_PORT")
	if port == "" {
		port = "8888"
	}

	timezone := os.Getenv("TZ")
	if timezone == "" {
		timezone = "Asia/Tokyo"
	}

	engineConfig, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     port,
		Timezone: timezone,
		Engine:   engineConfig,
		Rate:     loadRateConfig(),
		Sessions: loadSessionConfig(),
		Guard:    loadGuardConfig(),
		Run:      loadRunConfig(),
		Weather:  loadWeatherConfig(),
		News:     loadNewsConfig(),
		Speech:   loadSpeechConfig(),
		Storage:  loadStorageConfig(),
	}, nil
}

func loadEngineConfig() (EngineConfig, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return EngineConfig{}, fmt.Errorf("OPENAI_API_KEY is required")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := os.Getenv("RENE_MODEL")
	if model == "" {
		model = "gpt-4o"
	}

	return EngineConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		AssistantID: os.Getenv("ASSISTANT_ID"),
		Model:       model,
	}, nil
}

func loadRateConfig() RateConfig {
	maxRequests := 10
	if n, err := strconv.Atoi(os.Getenv("RENE_RATE_MAX")); err == nil && n > 0 {
		maxRequests = n
	}

	window := time.Minute
	if d, err := time.ParseDuration(os.Getenv("RENE_RATE_WINDOW")); err == nil && d > 0 {
		window = d
	}

	return RateConfig{
		MaxRequests: maxRequests,
		Window:      window,
	}
}

func loadSessionConfig() SessionConfig {
	maxThreads := 1000
	if n, err := strconv.Atoi(os.Getenv("RENE_MAX_THREADS")); err == nil && n > 0 {
		maxThreads = n
	}

	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(os.Getenv("RENE_THREAD_TTL")); err == nil && d > 0 {
		ttl = d
	}

	return SessionConfig{
		MaxThreads: maxThreads,
		TTL:        ttl,
	}
}

func loadGuardConfig() GuardConfig {
	warnAfter := 5
	if n, err := strconv.Atoi(os.Getenv("RENE_GUARD_WARN_AFTER")); err == nil && n > 0 {
		warnAfter = n
	}

	return GuardConfig{
		RulesFile: os.Getenv("RENE_GUARD_RULES"),
		WarnAfter: warnAfter,
	}
}

func loadRunConfig() RunConfig {
	pollInterval := time.Second
	if d, err := time.ParseDuration(os.Getenv("RENE_RUN_POLL")); err == nil && d > 0 {
		pollInterval = d
	}

	maxPolls := 60
	if n, err := strconv.Atoi(os.Getenv("RENE_RUN_MAX_POLLS")); err == nil && n > 0 {
		maxPolls = n
	}

	return RunConfig{
		PollInterval: pollInterval,
		MaxPolls:     maxPolls,
	}
}

func loadWeatherConfig() WeatherConfig {
	baseURL := os.Getenv("OPENWEATHER_BASE_URL")
	if baseURL == "" {
		baseURL = "http://api.openweathermap.org/data/2.5"
	}

	return WeatherConfig{
		APIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		BaseURL: baseURL,
	}
}

func loadNewsConfig() NewsConfig {
	feedURL := os.Getenv("RENE_NEWS_FEED")
	if feedURL == "" {
		feedURL = "https://www3.nhk.or.jp/rss/news/cat0.xml"
	}

	return NewsConfig{FeedURL: feedURL}
}

func loadSpeechConfig() SpeechConfig {
	speakURL := os.Getenv("TTS_API")
	if speakURL == "" {
		speakURL = "http://192.168.50.53:8000/speak"
	}

	analyzeURL := os.Getenv("ANALYZE_API")
	if analyzeURL == "" {
		analyzeURL = "http://192.168.50.53:8000/analyze"
	}

	return SpeechConfig{
		SpeakURL:   speakURL,
		AnalyzeURL: analyzeURL,
	}
}

func loadStorageConfig() StorageConfig {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	bucket := os.Getenv("RENE_AUDIO_BUCKET")
	if bucket == "" {
		bucket = "rene-audio"
	}

	return StorageConfig{
		Enabled:   accessKey != "" && secretKey != "",
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		Bucket:    bucket,
	}
}
