package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	Stream string `yaml:"stream"`
	Group  string `yaml:"group"`
	// VisibilityTimeout must exceed the worst-case pipeline duration for
	// the largest expected item, or redelivery will race an in-progress
	// worker. Operator-tuned; not enforced.
	VisibilityTimeout time.Duration `yaml:"visibility_timeout"`
	Block             time.Duration `yaml:"block"`
}

type WatcherConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// SweepStaleAfter is how old a pending item's enqueue marker must be
	// before the reconciliation sweep re-enqueues it.
	SweepStaleAfter time.Duration `yaml:"sweep_stale_after"`
}

type WorkerConfig struct {
	Count        int           `yaml:"count"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	STTTimeout   time.Duration `yaml:"stt_timeout"`
	EmbedTimeout time.Duration `yaml:"embed_timeout"`
}

type ChunkingConfig struct {
	MaxChars int `yaml:"max_chars"`
}

type AIConfig struct {
	OpenAIKey      string `yaml:"openai_key"`
	GeminiKey      string `yaml:"gemini_key"`
	GeminiURL      string `yaml:"gemini_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	EmbeddingDim   int    `yaml:"embedding_dim"`
	ChatModel      string `yaml:"chat_model"`
	WhisperURL     string `yaml:"whisper_url"`
}

type RetrievalConfig struct {
	TopK          int           `yaml:"top_k"`
	MinSimilarity float64       `yaml:"min_similarity"`
	ContextTokens int           `yaml:"context_tokens"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

type MediaConfig struct {
	YtdlpPath string `yaml:"ytdlp_path"`
	WorkDir   string `yaml:"work_dir"`
}

type APIConfig struct {
	Port      int    `yaml:"port"`
	AdminKey  string `yaml:"admin_key"`
	JWTSecret string `yaml:"jwt_secret"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Queue     QueueConfig     `yaml:"queue"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Worker    WorkerConfig    `yaml:"worker"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	AI        AIConfig        `yaml:"ai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Media     MediaConfig     `yaml:"media"`
	API       APIConfig       `yaml:"api"`
	Telegram  TelegramConfig  `yaml:"telegram"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" && !dev {
		return nil, errors.New("no AI provider configured: set ai.openai_key or ai.gemini_key")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Queue.Stream == "" {
		cfg.Queue.Stream = "clipvault:jobs"
	}
	if cfg.Queue.Group == "" {
		cfg.Queue.Group = "workers"
	}
	if cfg.Queue.VisibilityTimeout <= 0 {
		cfg.Queue.VisibilityTimeout = 30 * time.Minute
	}
	if cfg.Queue.Block <= 0 {
		cfg.Queue.Block = 5 * time.Second
	}
	if cfg.Watcher.PollInterval <= 0 {
		cfg.Watcher.PollInterval = 15 * time.Minute
	}
	if cfg.Watcher.SweepInterval <= 0 {
		cfg.Watcher.SweepInterval = 5 * time.Minute
	}
	if cfg.Watcher.SweepStaleAfter <= 0 {
		cfg.Watcher.SweepStaleAfter = 10 * time.Minute
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 2
	}
	if cfg.Worker.FetchTimeout <= 0 {
		cfg.Worker.FetchTimeout = 10 * time.Minute
	}
	if cfg.Worker.STTTimeout <= 0 {
		cfg.Worker.STTTimeout = 20 * time.Minute
	}
	if cfg.Worker.EmbedTimeout <= 0 {
		cfg.Worker.EmbedTimeout = 2 * time.Minute
	}
	if cfg.Chunking.MaxChars <= 0 {
		cfg.Chunking.MaxChars = 500
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.EmbeddingDim <= 0 {
		cfg.AI.EmbeddingDim = 768
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gpt-4o-mini"
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MinSimilarity <= 0 {
		cfg.Retrieval.MinSimilarity = 0.25
	}
	if cfg.Retrieval.ContextTokens <= 0 {
		cfg.Retrieval.ContextTokens = 3000
	}
	if cfg.Retrieval.CacheTTL <= 0 {
		cfg.Retrieval.CacheTTL = 15 * time.Minute
	}
	if cfg.Media.YtdlpPath == "" {
		cfg.Media.YtdlpPath = "yt-dlp"
	}
	if cfg.Media.WorkDir == "" {
		cfg.Media.WorkDir = os.TempDir()
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8080
	}
}
