package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Connector ConnectorConfig `mapstructure:"connector"`
	WebSearch WebSearchConfig `mapstructure:"websearch"`
	Chat      ChatConfig      `mapstructure:"chat"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// LLMConfig holds API credentials for the model providers. A missing key
// disables the corresponding provider instead of failing startup.
type LLMConfig struct {
	OpenAI    ProviderKeyConfig `mapstructure:"openai"`
	Anthropic ProviderKeyConfig `mapstructure:"anthropic"`
	Google    ProviderKeyConfig `mapstructure:"google"`
	Groq      ProviderKeyConfig `mapstructure:"groq"`
}

type ProviderKeyConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// ConnectorConfig holds the tool-connector credentials, one integration per
// entry. Each integration carries its own API key and auth-config id.
type ConnectorConfig struct {
	BaseURL  string                     `mapstructure:"base_url"`
	Timeout  time.Duration              `mapstructure:"timeout"`
	Twitter  ConnectorIntegrationConfig `mapstructure:"twitter"`
	LinkedIn ConnectorIntegrationConfig `mapstructure:"linkedin"`
}

type ConnectorIntegrationConfig struct {
	APIKey       string `mapstructure:"api_key"`
	AuthConfigID string `mapstructure:"auth_config_id"`
}

type WebSearchConfig struct {
	Provider   string `mapstructure:"provider"`
	APIHost    string `mapstructure:"api_host"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// ChatConfig tunes the agent orchestrator.
type ChatConfig struct {
	DefaultUserID  string        `mapstructure:"default_user_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxSteps       int           `mapstructure:"max_steps"`
	MaxToolRounds  int           `mapstructure:"max_tool_rounds"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Connector.BaseURL == "" {
		c.Connector.BaseURL = "https://backend.composio.dev"
	}
	if c.Connector.Timeout == 0 {
		c.Connector.Timeout = 30 * time.Second
	}
	if c.Chat.DefaultUserID == "" {
		c.Chat.DefaultUserID = "ca_VYRbOnfLPnef"
	}
	if c.Chat.RequestTimeout == 0 {
		c.Chat.RequestTimeout = 30 * time.Second
	}
	if c.Chat.MaxSteps == 0 {
		c.Chat.MaxSteps = 10
	}
	if c.Chat.MaxToolRounds == 0 {
		c.Chat.MaxToolRounds = 3
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
