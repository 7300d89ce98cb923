package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type SlackConfig struct {
	VerificationToken string `yaml:"verification_token"`
	AccessToken       string `yaml:"access_token"`
	SigningSecret     string `yaml:"signing_secret"`
	APIURL            string `yaml:"api_url"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsJSON string `yaml:"credentials_json"`
}

type Config struct {
	ServerAddress   string         `yaml:"server_address"`
	LogLevel        string         `yaml:"log_level"`
	LogJSON         bool           `yaml:"log_json"`
	Slack           SlackConfig    `yaml:"slack"`
	Mongo           MongoConfig    `yaml:"mongo"`
	DataDir         string         `yaml:"data_dir"`
	JWTSecret       string         `yaml:"jwt_secret"`
	Firebase        FirebaseConfig `yaml:"firebase"`
	SafeSearch      bool           `yaml:"safe_search"`
	ArchiveBucket   string         `yaml:"archive_bucket"`
	UserCacheSize   int            `yaml:"user_cache_size"`
	UserCacheTTL    time.Duration  `yaml:"user_cache_ttl"`
	DownloadTimeout time.Duration  `yaml:"download_timeout"`
	MaxDownloadMB   int64          `yaml:"max_download_mb"`
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerAddress:   ":8080",
		LogLevel:        "info",
		Mongo:           MongoConfig{Database: "photomap"},
		DataDir:         "./data",
		UserCacheSize:   1024,
		UserCacheTTL:    10 * time.Minute,
		DownloadTimeout: 30 * time.Second,
		MaxDownloadMB:   25,
	}
}

func applyEnv(c *Config) {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogJSON = getEnvBool("LOG_JSON", c.LogJSON)

	c.Slack.VerificationToken = getEnv("SLACK_VERIFICATION_TOKEN", c.Slack.VerificationToken)
	c.Slack.AccessToken = getEnv("SLACK_ACCESS_TOKEN", c.Slack.AccessToken)
	c.Slack.SigningSecret = getEnv("SLACK_SIGNING_SECRET", c.Slack.SigningSecret)
	c.Slack.APIURL = getEnv("SLACK_API_URL", c.Slack.APIURL)

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DB", c.Mongo.Database)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.Firebase.ProjectID = getEnv("FIREBASE_PROJECT_ID", c.Firebase.ProjectID)
	c.Firebase.CredentialsJSON = getEnv("FIREBASE_CREDENTIALS_JSON", c.Firebase.CredentialsJSON)

	c.SafeSearch = getEnvBool("SAFE_SEARCH", c.SafeSearch)
	c.ArchiveBucket = getEnv("ARCHIVE_BUCKET", c.ArchiveBucket)

	c.UserCacheSize = getEnvInt("USER_CACHE_SIZE", c.UserCacheSize)
	c.UserCacheTTL = getEnvDuration("USER_CACHE_TTL", c.UserCacheTTL)
	c.DownloadTimeout = getEnvDuration("DOWNLOAD_TIMEOUT", c.DownloadTimeout)
	c.MaxDownloadMB = int64(getEnvInt("MAX_DOWNLOAD_MB", int(c.MaxDownloadMB)))
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Slack.VerificationToken) == "" {
		return errors.New("SLACK_VERIFICATION_TOKEN is required")
	}
	if strings.TrimSpace(c.Slack.AccessToken) == "" {
		return errors.New("SLACK_ACCESS_TOKEN is required")
	}
	if c.UserCacheSize <= 0 {
		return errors.New("user_cache_size must be positive")
	}
	if c.MaxDownloadMB <= 0 {
		return errors.New("max_download_mb must be positive")
	}
	return nil
}

// UsesMongo reports whether a Mongo backend is configured; otherwise the
// in-memory stores are used.
func (c *Config) UsesMongo() bool {
	return strings.TrimSpace(c.Mongo.URI) != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return d
}
