package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvMarketplaceKey = "NINE_API_KEY"
	EnvLLMKey         = "OPENAI_API_KEY"
	EnvLLMBaseURL     = "OPENAI_BASE_URL"
	EnvLLMModel       = "ADFEATURES_LLM_MODEL"
	EnvSchema         = "ADFEATURES_SCHEMA"
	EnvLogLevel       = "ADFEATURES_LOG_LEVEL"
	EnvAdvertState    = "TYPE_999_ADVERT"
)

// LoadOption customises Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	envFiles []string
	lookup   func(string) (string, bool)
	files    fs.FS
}

// WithEnvFiles sets the dotenv files read before the environment. Missing
// files are skipped. Defaults to ".env".
func WithEnvFiles(files ...string) LoadOption {
	return func(o *loadOptions) {
		o.envFiles = files
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(lookup func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		if lookup != nil {
			o.lookup = lookup
		}
	}
}

// WithFileSystem reads the config file and dotenv files from files instead
// of the OS.
func WithFileSystem(files fs.FS) LoadOption {
	return func(o *loadOptions) {
		o.files = files
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then dotenv values, then the process environment.
func Load(path string, options ...LoadOption) (*Config, error) {
	opts := loadOptions{
		envFiles: []string{".env"},
		lookup:   os.LookupEnv,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := opts.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	dotenv := map[string]string{}
	for _, name := range opts.envFiles {
		raw, err := opts.readFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", name, err)
		}
		values, err := godotenv.UnmarshalBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		for k, v := range values {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}
	env := func(key string) (string, bool) {
		if v, ok := opts.lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	cfg.applyEnv(env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := env(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvMarketplaceKey, &c.Marketplace.APIKey)
	set(EnvLLMKey, &c.LLM.APIKey)
	set(EnvLLMBaseURL, &c.LLM.BaseURL)
	set(EnvLLMModel, &c.LLM.Model)
	set(EnvSchema, &c.Schema.Source)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvAdvertState, &c.Marketplace.AdvertState)
	c.Log.Level = strings.ToLower(c.Log.Level)
}

func (o loadOptions) readFile(name string) ([]byte, error) {
	if o.files != nil {
		return fs.ReadFile(o.files, name)
	}
	return os.ReadFile(name)
}
