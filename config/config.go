package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerPort string `yaml:"server.port"`

	// Database configuration
	DatabaseURL string `yaml:"database.url"`

	// Poll loop configuration
	PollSchedule   string        `yaml:"poll.schedule"`
	TickTimeout    time.Duration `yaml:"-"`
	TickTimeoutStr string        `yaml:"poll.tick_timeout"`

	// Media output configuration
	MediaDir   string `yaml:"media.dir"`
	FFmpegPath string `yaml:"media.ffmpeg_path"`
	YtDlpPath  string `yaml:"media.yt_dlp_path"`

	// Gemini / Veo generation configuration
	GeminiAPIKey              string        `yaml:"gemini.api_key"`
	GeminiTextModel           string        `yaml:"gemini.text_model"`
	GeminiImageModel          string        `yaml:"gemini.image_model"`
	GeminiVideoModel          string        `yaml:"gemini.video_model"`
	VideoSegments             int           `yaml:"gemini.video_segments"`
	GenerationPollInterval    time.Duration `yaml:"-"`
	GenerationPollIntervalStr string        `yaml:"gemini.poll_interval"`
	GenerationMaxPolls        int           `yaml:"gemini.max_polls"`

	// OpenAI transcription configuration
	OpenAIAPIKey  string `yaml:"openai.api_key"`
	OpenAIBaseURL string `yaml:"openai.base_url"`

	// TopMediAi speech synthesis configuration
	TopMediAiAPIKey  string `yaml:"topmediai.api_key"`
	TopMediAiBaseURL string `yaml:"topmediai.base_url"`
	TTSSpeakerID     string `yaml:"topmediai.speaker_id"`

	// Instagram Graph API configuration
	InstagramBaseURL          string        `yaml:"instagram.base_url"`
	InstagramMediaBaseURL     string        `yaml:"instagram.media_base_url"`
	InstagramPollInterval     time.Duration `yaml:"-"`
	InstagramPollIntervalStr  string        `yaml:"instagram.poll_interval"`
	InstagramMaxPolls         int           `yaml:"instagram.max_polls"`
	InstagramAppID            string        `yaml:"instagram.app_id"`
	InstagramAppSecret        string        `yaml:"instagram.app_secret"`

	// YouTube OAuth application configuration
	YouTubeClientID     string `yaml:"youtube.client_id"`
	YouTubeClientSecret string `yaml:"youtube.client_secret"`

	// Performance tuning
	HTTPClientTimeout    time.Duration `yaml:"-"`
	HTTPClientTimeoutStr string        `yaml:"performance.http_client_timeout"`
	MaxIdleConns         int           `yaml:"performance.max_idle_conns"`
	MaxConnsPerHost      int           `yaml:"performance.max_conns_per_host"`

	// Logging configuration
	LogDirectory  string `yaml:"logging.dir"`
	LogOutputFile string `yaml:"logging.output_file"`
	LogErrorFile  string `yaml:"logging.error_file"`
}

// configFile represents the YAML structure
type configFile struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Poll struct {
		Schedule    string `yaml:"schedule"`
		TickTimeout string `yaml:"tick_timeout"`
	} `yaml:"poll"`
	Media struct {
		Dir        string `yaml:"dir"`
		FFmpegPath string `yaml:"ffmpeg_path"`
		YtDlpPath  string `yaml:"yt_dlp_path"`
	} `yaml:"media"`
	Gemini struct {
		APIKey        string `yaml:"api_key"`
		TextModel     string `yaml:"text_model"`
		ImageModel    string `yaml:"image_model"`
		VideoModel    string `yaml:"video_model"`
		VideoSegments int    `yaml:"video_segments"`
		PollInterval  string `yaml:"poll_interval"`
		MaxPolls      int    `yaml:"max_polls"`
	} `yaml:"gemini"`
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	TopMediAi struct {
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		SpeakerID string `yaml:"speaker_id"`
	} `yaml:"topmediai"`
	Instagram struct {
		BaseURL      string `yaml:"base_url"`
		MediaBaseURL string `yaml:"media_base_url"`
		PollInterval string `yaml:"poll_interval"`
		MaxPolls     int    `yaml:"max_polls"`
		AppID        string `yaml:"app_id"`
		AppSecret    string `yaml:"app_secret"`
	} `yaml:"instagram"`
	YouTube struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"youtube"`
	Performance struct {
		HTTPClientTimeout string `yaml:"http_client_timeout"`
		MaxIdleConns      int    `yaml:"max_idle_conns"`
		MaxConnsPerHost   int    `yaml:"max_conns_per_host"`
	} `yaml:"performance"`
	Logging struct {
		Directory  string `yaml:"dir"`
		OutputFile string `yaml:"output_file"`
		ErrorFile  string `yaml:"error_file"`
	} `yaml:"logging"`
}

// Manager handles configuration loading and saving
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	if configPath == "" {
		configPath = "config.yaml"
	}
	return &Manager{
		configPath: configPath,
	}
}

// Load reads configuration from YAML file
func (m *Manager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		// If file doesn't exist, create default config
		if os.IsNotExist(err) {
			return m.createDefaultConfig()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfgFile configFile
	if err := yaml.Unmarshal(data, &cfgFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := &Config{
		ServerPort:                cfgFile.Server.Port,
		DatabaseURL:               cfgFile.Database.URL,
		PollSchedule:              cfgFile.Poll.Schedule,
		TickTimeoutStr:            cfgFile.Poll.TickTimeout,
		MediaDir:                  cfgFile.Media.Dir,
		FFmpegPath:                cfgFile.Media.FFmpegPath,
		YtDlpPath:                 cfgFile.Media.YtDlpPath,
		GeminiAPIKey:              cfgFile.Gemini.APIKey,
		GeminiTextModel:           cfgFile.Gemini.TextModel,
		GeminiImageModel:          cfgFile.Gemini.ImageModel,
		GeminiVideoModel:          cfgFile.Gemini.VideoModel,
		VideoSegments:             cfgFile.Gemini.VideoSegments,
		GenerationPollIntervalStr: cfgFile.Gemini.PollInterval,
		GenerationMaxPolls:        cfgFile.Gemini.MaxPolls,
		OpenAIAPIKey:              cfgFile.OpenAI.APIKey,
		OpenAIBaseURL:             cfgFile.OpenAI.BaseURL,
		TopMediAiAPIKey:           cfgFile.TopMediAi.APIKey,
		TopMediAiBaseURL:          cfgFile.TopMediAi.BaseURL,
		TTSSpeakerID:              cfgFile.TopMediAi.SpeakerID,
		InstagramBaseURL:          cfgFile.Instagram.BaseURL,
		InstagramMediaBaseURL:     cfgFile.Instagram.MediaBaseURL,
		InstagramPollIntervalStr:  cfgFile.Instagram.PollInterval,
		InstagramMaxPolls:         cfgFile.Instagram.MaxPolls,
		InstagramAppID:            cfgFile.Instagram.AppID,
		InstagramAppSecret:        cfgFile.Instagram.AppSecret,
		YouTubeClientID:           cfgFile.YouTube.ClientID,
		YouTubeClientSecret:       cfgFile.YouTube.ClientSecret,
		HTTPClientTimeoutStr:      cfgFile.Performance.HTTPClientTimeout,
		MaxIdleConns:              cfgFile.Performance.MaxIdleConns,
		MaxConnsPerHost:           cfgFile.Performance.MaxConnsPerHost,
		LogDirectory:              cfgFile.Logging.Directory,
		LogOutputFile:             cfgFile.Logging.OutputFile,
		LogErrorFile:              cfgFile.Logging.ErrorFile,
	}

	applyDefaults(cfg)

	m.config = cfg
	return cfg, nil
}

// applyDefaults fills in zero-valued fields and parses durations
func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "sqlite3:./data.db"
	}
	if cfg.PollSchedule == "" {
		cfg.PollSchedule = "* * * * *"
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "./media"
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = "yt-dlp"
	}
	if cfg.GeminiTextModel == "" {
		cfg.GeminiTextModel = "gemini-2.5-flash"
	}
	if cfg.GeminiImageModel == "" {
		cfg.GeminiImageModel = "gemini-2.5-flash-image"
	}
	if cfg.GeminiVideoModel == "" {
		cfg.GeminiVideoModel = "veo-3.1-generate-preview"
	}
	if cfg.VideoSegments <= 0 {
		cfg.VideoSegments = 2
	}
	if cfg.GenerationMaxPolls <= 0 {
		cfg.GenerationMaxPolls = 60
	}
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.TopMediAiBaseURL == "" {
		cfg.TopMediAiBaseURL = "https://api.topmediai.com/v1"
	}
	if cfg.InstagramBaseURL == "" {
		cfg.InstagramBaseURL = "https://graph.facebook.com/v21.0"
	}
	if cfg.InstagramMaxPolls <= 0 {
		cfg.InstagramMaxPolls = 60
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 50
	}
	if cfg.LogDirectory == "" {
		cfg.LogDirectory = "./logs"
	}
	if cfg.LogOutputFile == "" {
		cfg.LogOutputFile = "app.log"
	}
	if cfg.LogErrorFile == "" {
		cfg.LogErrorFile = "app.error.log"
	}

	cfg.TickTimeout = parseDurationOr(cfg.TickTimeoutStr, 30*time.Minute)
	cfg.GenerationPollInterval = parseDurationOr(cfg.GenerationPollIntervalStr, 10*time.Second)
	cfg.InstagramPollInterval = parseDurationOr(cfg.InstagramPollIntervalStr, 5*time.Second)
	cfg.HTTPClientTimeout = parseDurationOr(cfg.HTTPClientTimeoutStr, 60*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Save writes configuration to YAML file
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveUnlocked(cfg)
}

// saveUnlocked persists config assuming caller already holds the write lock.
func (m *Manager) saveUnlocked(cfg *Config) error {
	var cfgFile configFile
	cfgFile.Server.Port = cfg.ServerPort
	cfgFile.Database.URL = cfg.DatabaseURL
	cfgFile.Poll.Schedule = cfg.PollSchedule
	cfgFile.Poll.TickTimeout = cfg.TickTimeout.String()
	cfgFile.Media.Dir = cfg.MediaDir
	cfgFile.Media.FFmpegPath = cfg.FFmpegPath
	cfgFile.Media.YtDlpPath = cfg.YtDlpPath
	cfgFile.Gemini.APIKey = cfg.GeminiAPIKey
	cfgFile.Gemini.TextModel = cfg.GeminiTextModel
	cfgFile.Gemini.ImageModel = cfg.GeminiImageModel
	cfgFile.Gemini.VideoModel = cfg.GeminiVideoModel
	cfgFile.Gemini.VideoSegments = cfg.VideoSegments
	cfgFile.Gemini.PollInterval = cfg.GenerationPollInterval.String()
	cfgFile.Gemini.MaxPolls = cfg.GenerationMaxPolls
	cfgFile.OpenAI.APIKey = cfg.OpenAIAPIKey
	cfgFile.OpenAI.BaseURL = cfg.OpenAIBaseURL
	cfgFile.TopMediAi.APIKey = cfg.TopMediAiAPIKey
	cfgFile.TopMediAi.BaseURL = cfg.TopMediAiBaseURL
	cfgFile.TopMediAi.SpeakerID = cfg.TTSSpeakerID
	cfgFile.Instagram.BaseURL = cfg.InstagramBaseURL
	cfgFile.Instagram.MediaBaseURL = cfg.InstagramMediaBaseURL
	cfgFile.Instagram.PollInterval = cfg.InstagramPollInterval.String()
	cfgFile.Instagram.MaxPolls = cfg.InstagramMaxPolls
	cfgFile.Instagram.AppID = cfg.InstagramAppID
	cfgFile.Instagram.AppSecret = cfg.InstagramAppSecret
	cfgFile.YouTube.ClientID = cfg.YouTubeClientID
	cfgFile.YouTube.ClientSecret = cfg.YouTubeClientSecret
	cfgFile.Performance.HTTPClientTimeout = cfg.HTTPClientTimeout.String()
	cfgFile.Performance.MaxIdleConns = cfg.MaxIdleConns
	cfgFile.Performance.MaxConnsPerHost = cfg.MaxConnsPerHost
	cfgFile.Logging.Directory = cfg.LogDirectory
	cfgFile.Logging.OutputFile = cfg.LogOutputFile
	cfgFile.Logging.ErrorFile = cfg.LogErrorFile

	data, err := yaml.Marshal(&cfgFile)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.config = cfg
	return nil
}

// Get returns the current configuration (thread-safe)
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// createDefaultConfig creates a default configuration file
func (m *Manager) createDefaultConfig() (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if err := m.saveUnlocked(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Global config manager instance
var globalManager *Manager

// Load loads configuration from YAML file (backward compatibility)
func Load() (*Config, error) {
	return GetManager().Load()
}

// GetManager returns the global config manager
func GetManager() *Manager {
	if globalManager == nil {
		configPath := "config.yaml"
		// Check if config/config.yaml exists, if so use it as default
		if _, err := os.Stat("config/config.yaml"); err == nil {
			configPath = "config/config.yaml"
		}
		globalManager = NewManager(configPath)
	}
	return globalManager
}
