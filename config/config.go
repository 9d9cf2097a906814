// Package config resolves the runtime configuration: built-in defaults,
// then an optional YAML file, then a .env file, then the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in NOCTURNE_PROVIDER.
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the complete runtime configuration.
type Config struct {
	Provider string        `yaml:"provider" env:"NOCTURNE_PROVIDER"`
	Model    string        `yaml:"model" env:"NOCTURNE_MODEL"`
	Timeout  time.Duration `yaml:"timeout" env:"NOCTURNE_TIMEOUT"`
	LogFile  string        `yaml:"log_file" env:"NOCTURNE_LOG_FILE"`
	Debug    bool          `yaml:"debug" env:"NOCTURNE_DEBUG"`

	Azure  Azure  `yaml:"azure"`
	OpenAI OpenAI `yaml:"openai"`
	Gemini Gemini `yaml:"gemini"`
}

// Azure holds Azure OpenAI credentials. Model is the deployment name.
type Azure struct {
	APIKey     string `yaml:"api_key" env:"AZURE_OPENAI_API_KEY"`
	Endpoint   string `yaml:"endpoint" env:"AZURE_OPENAI_ENDPOINT"`
	APIVersion string `yaml:"api_version" env:"AZURE_OPENAI_API_VERSION"`
}

// OpenAI holds credentials for the OpenAI API or a compatible server.
type OpenAI struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
}

// Gemini holds Gemini API credentials.
type Gemini struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderAzure,
		Model:    "gpt-4o-mini",
		Timeout:  60 * time.Second,
		Azure:    Azure{APIVersion: "2024-06-01"},
		OpenAI:   OpenAI{BaseURL: "https://api.openai.com/v1"},
	}
}

// Options selects the files Load reads.
type Options struct {
	// File is a YAML config file. Empty means none; a named file that
	// does not exist is an error.
	File string
	// EnvFile is a dotenv file. Missing files are skipped.
	EnvFile string
}

// Load resolves the configuration. It does not validate credentials; call
// Validate once the provider is known to be needed.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", opts.File, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", opts.File, err)
		}
	}

	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			// Variables already present in the environment win.
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return cfg, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

// Validate reports every missing or malformed setting for the selected
// provider at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderAzure:
		if c.Azure.APIKey == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_API_KEY is not set"))
		}
		if c.Azure.Endpoint == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_ENDPOINT is not set"))
		} else if !strings.HasPrefix(c.Azure.Endpoint, "https://") && !strings.HasPrefix(c.Azure.Endpoint, "http://") {
			errs = append(errs, fmt.Errorf("AZURE_OPENAI_ENDPOINT must be an http(s) URL, got %q", c.Azure.Endpoint))
		}
		if c.Azure.APIVersion == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_API_VERSION is not set"))
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOCTURNE_PROVIDER must be one of azure, openai, gemini; got %q", c.Provider))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("NOCTURNE_MODEL is empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("NOCTURNE_TIMEOUT must be positive, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}
