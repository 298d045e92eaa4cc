package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration loaded from YAML with
// environment overrides for the mail credentials.
type Config struct {
	Server struct {
		Host      string `yaml:"host"`
		Port      string `yaml:"port"`
		Prefork   bool   `yaml:"prefork"`
		BodyLimit int    `yaml:"body_limit"`
	} `yaml:"server"`

	Logger LoggerConfig `yaml:"logger"`

	Assets AssetsConfig `yaml:"assets"`

	Certificate struct {
		FallbackName   string `yaml:"fallback_name"`
		FilenameSuffix string `yaml:"filename_suffix"`
	} `yaml:"certificate"`

	Mail MailConfig `yaml:"mail"`

	RateLimiter RateLimiterConfig `yaml:"rate_limiter"`

	Cache struct {
		RedisHost   string `yaml:"redis_host"`
		RateLimitDB int    `yaml:"redis_rate_db"`
	} `yaml:"cache"`
}

type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AssetsConfig points at the read-only template, font and logo files.
type AssetsConfig struct {
	TemplatePath string `yaml:"template_path"`
	FontPath     string `yaml:"font_path"`
	// LogoPath is optional; the form hides the image when it is missing.
	LogoPath string `yaml:"logo_path"`
}

// MailConfig configures the outbound SMTP transport. Credentials are never
// read from YAML; they come from MAIL_USERNAME / MAIL_PASSWORD.
type MailConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Subject  string        `yaml:"subject"`
	Timeout  time.Duration `yaml:"timeout"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	SSL      bool          `yaml:"ssl"`
	From     string        `yaml:"from"`
	Username string        `yaml:"-"`
	Password string        `yaml:"-"`
}

type RateLimiterConfig struct {
	Enabled   bool          `yaml:"enabled"`
	UserLimit int           `yaml:"user_limit"`
	Interval  time.Duration `yaml:"interval"`
}

// Default returns a configuration with every optional value filled in.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = ":8080"
	cfg.Server.BodyLimit = 64 * 1024
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 7
	cfg.Assets.TemplatePath = "public/certificate.pdf"
	cfg.Assets.FontPath = "public/tr-font.ttf"
	cfg.Assets.LogoPath = "public/logo.png"
	cfg.Certificate.FallbackName = "İsimsiz"
	cfg.Certificate.FilenameSuffix = "-sertifika.pdf"
	cfg.Mail.Subject = "Sertifikanız hazır"
	cfg.Mail.Timeout = 30 * time.Second
	cfg.Mail.Port = 587
	cfg.RateLimiter.UserLimit = 10
	cfg.RateLimiter.Interval = time.Minute
	return cfg
}

// Load reads the config file named by CONFIG_PATH, or config.yaml.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the config at path. It panics on any error:
// the service cannot run with a broken configuration.
func LoadFrom(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("cannot read config %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("cannot parse config %s: %v", path, err))
	}
	if err := envconfig.Process("MAIL", &cfg.Mail); err != nil {
		panic(fmt.Sprintf("cannot read mail environment: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

// Validate reports the first invalid value in cfg.
func (cfg Config) Validate() error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server.port must be set")
	}
	if cfg.Assets.TemplatePath == "" || cfg.Assets.FontPath == "" {
		return fmt.Errorf("assets.template_path and assets.font_path must be set")
	}
	if cfg.Certificate.FilenameSuffix == "" {
		return fmt.Errorf("certificate.filename_suffix must be set")
	}
	if cfg.RateLimiter.Enabled {
		if cfg.RateLimiter.UserLimit <= 0 {
			return fmt.Errorf("rate_limiter.user_limit must be positive")
		}
		if cfg.RateLimiter.Interval <= 0 {
			return fmt.Errorf("rate_limiter.interval must be positive")
		}
	}
	if cfg.Mail.Enabled {
		if cfg.Mail.Host == "" || cfg.Mail.From == "" {
			return fmt.Errorf("mail.host and mail.from must be set when mail is enabled")
		}
		if cfg.Mail.Username == "" || cfg.Mail.Password == "" {
			return fmt.Errorf("MAIL_USERNAME and MAIL_PASSWORD must be set when mail is enabled")
		}
		if cfg.Mail.Port <= 0 {
			return fmt.Errorf("mail.port must be positive")
		}
		if cfg.Mail.Timeout <= 0 {
			return fmt.Errorf("mail.timeout must be positive")
		}
	}
	return nil
}
