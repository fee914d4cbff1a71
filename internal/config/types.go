package config

import "time"

type Config struct {
	Port     string
	Timezone string
	Engine   EngineConfig
	Rate     RateConfig
	Sessions SessionConfig
	Guard    GuardConfig
	Run      RunConfig
	Weather  WeatherConfig
	News     NewsConfig
	Speech   SpeechConfig
	Storage  StorageConfig
}

type EngineConfig struct {
	APIKey      string
	BaseURL     string
	AssistantID string
	Model       string
}

type RateConfig struct {
	MaxRequests int
	Window      time.Duration
}

type SessionConfig struct {
	MaxThreads int
	TTL        time.Duration
}

type GuardConfig struct {
	RulesFile string
	WarnAfter int
}

type RunConfig struct {
	PollInterval time.Duration
	MaxPolls     int
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

type NewsConfig struct {
	FeedURL string
}

type SpeechConfig struct {
	SpeakURL   string
	AnalyzeURL string
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}
