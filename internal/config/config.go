package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
	TokenStoreMemory  = "memory"
)

// Config holds all configuration for the client
type Config struct {
	// API Configuration
	API APIConfig `yaml:"api"`

	// Session Configuration
	Session SessionConfig `yaml:"session"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url,startswith=http"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	LoginEncoding string        `yaml:"login_encoding" validate:"oneof=multipart password-grant"`
}

// SessionConfig holds token persistence and profile handling settings
type SessionConfig struct {
	TokenStore string `yaml:"token_store" validate:"oneof=file keyring memory"`
	// StateDir overrides the directory of the file token store
	StateDir string `yaml:"state_dir"`
	// StrictProfile logs out on any profile fetch failure
	StrictProfile bool `yaml:"strict_profile"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=json console"` // json, console
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout:       30 * time.Second,
			LoginEncoding: "multipart",
		},
		Session: SessionConfig{
			TokenStore: TokenStoreFile,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultPath returns ~/.config/pantry/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pantry", "config.yaml"), nil
}

// Load reads the optional YAML config file, then applies environment overrides
// and finally the given override functions (command line flags).
// An explicit path that doesn't exist is an error; the default path is optional.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Default()

	explicit := path != "" || os.Getenv("PANTRY_CONFIG") != ""
	if path == "" {
		path = os.Getenv("PANTRY_CONFIG")
	}
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) || explicit {
				return nil, err
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PANTRY_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PANTRY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PANTRY_TIMEOUT %q: %w", v, err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("PANTRY_LOGIN_ENCODING"); v != "" {
		cfg.API.LoginEncoding = v
	}
	if v := os.Getenv("PANTRY_TOKEN_STORE"); v != "" {
		cfg.Session.TokenStore = v
	}
	if v := os.Getenv("PANTRY_STATE_DIR"); v != "" {
		cfg.Session.StateDir = v
	}
	if v := os.Getenv("PANTRY_STRICT_PROFILE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PANTRY_STRICT_PROFILE %q: %w", v, err)
		}
		cfg.Session.StrictProfile = b
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate checks the configuration and reports every invalid field
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

const stateFileName = "state.json"

// StatePath returns the token file location for the file store, by default
// ~/.config/pantry/state.json.
func (c *Config) StatePath() (string, error) {
	if c.Session.StateDir != "" {
		return filepath.Join(c.Session.StateDir, stateFileName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pantry", stateFileName), nil
}
