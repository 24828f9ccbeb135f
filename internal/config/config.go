// Package config loads service configuration from YAML, .env files and the
// process environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Config is the complete service configuration.
type Config struct {
	Marketplace Marketplace `yaml:"marketplace" validate:"required"`
	LLM         LLM         `yaml:"llm" validate:"required"`
	Engine      Engine      `yaml:"engine"`
	Schema      Schema      `yaml:"schema" validate:"required"`
	Fields      Fields      `yaml:"fields"`
	Payload     Payload     `yaml:"payload" validate:"required"`
	Server      Server      `yaml:"server"`
	Log         Log         `yaml:"log"`
}

// Marketplace configures the partner API client.
type Marketplace struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	APIKey        string        `yaml:"api_key"`
	CategoryID    string        `yaml:"category_id" validate:"required"`
	SubcategoryID string        `yaml:"subcategory_id" validate:"required"`
	OfferType     string        `yaml:"offer_type" validate:"required"`
	AdvertState   string        `yaml:"advert_state"`
	Lang          string        `yaml:"lang" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	CacheTTL      time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	CacheSize     int           `yaml:"cache_size" validate:"gte=0"`
}

// LLM configures the language model collaborator.
type LLM struct {
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model" validate:"required"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Engine configures the resolution engine.
type Engine struct {
	MaxConcurrency int           `yaml:"max_concurrency" validate:"gte=1"`
	CallTimeout    time.Duration `yaml:"call_timeout" validate:"gte=0"`
}

// Schema points at the field schema document.
type Schema struct {
	Source string `yaml:"source" validate:"required"`
}

// Fields holds the per-field marketplace knowledge turned into a
// schema.Profile.
type Fields struct {
	Extract        []string                     `yaml:"extract"`
	StaticDefaults map[string]string            `yaml:"static_defaults"`
	Dependencies   map[string]string            `yaml:"dependencies"`
	MultiSignal    map[string]map[string]string `yaml:"multi_signal"`
	Composite      []string                     `yaml:"composite"`
	Types          map[string]string            `yaml:"types"`
	Formats        map[string]string            `yaml:"formats" validate:"dive,oneof=vin phone"`
}

// Payload configures submission payload assembly.
type Payload struct {
	RegionField   string `yaml:"region_field" validate:"required"`
	PhoneField    string `yaml:"phone_field" validate:"required"`
	ImagesField   string `yaml:"images_field" validate:"required"`
	DefaultRegion string `yaml:"default_region"`
	CountryCode   string `yaml:"country_code" validate:"required,numeric"`
	PrimaryLang   string `yaml:"primary_lang" validate:"required"`
	SecondaryLang string `yaml:"secondary_lang" validate:"required,nefield=PrimaryLang"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `yaml:"addr" validate:"required"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	MakeField       string        `yaml:"make_field" validate:"required"`
	ModelField      string        `yaml:"model_field" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Default returns the built-in configuration for the car category.
func Default() *Config {
	return &Config{
		Marketplace: Marketplace{
			BaseURL:       "https://partners-api.999.md",
			CategoryID:    "658",
			SubcategoryID: "659",
			OfferType:     "776",
			Lang:          "ru",
			Timeout:       30 * time.Second,
			CacheTTL:      10 * time.Minute,
			CacheSize:     512,
		},
		LLM: LLM{
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Engine: Engine{
			MaxConcurrency: 4,
			CallTimeout:    30 * time.Second,
		},
		Schema: Schema{Source: "data/features.json"},
		Fields: Fields{
			Extract: []string{
				"20", "19", "2512", "2", "104", "2553", "107", "151",
				"101", "108", "102", "17", "2513", "2554", "2555", "12",
			},
			StaticDefaults: map[string]string{
				"775":  "18592",
				"593":  "18668",
				"1761": "29670",
				"1763": "33044",
				"795":  "23241",
				"1196": "21978",
				"846":  "19119",
				"851":  "19085",
			},
			Dependencies: map[string]string{
				"21":   "20",
				"2095": "21",
			},
			MultiSignal: map[string]map[string]string{
				"2095": {"vin": "2512", "year": "19", "make": "20", "model": "21"},
			},
			Composite: []string{"13"},
			Types: map[string]string{
				"12": "bilingual-text", "13": "bilingual-text",
				"2": "numeric", "19": "numeric", "104": "numeric", "107": "numeric",
				"2513": "numeric", "2554": "numeric", "2555": "numeric",
				"908": "boolean", "939": "boolean", "940": "boolean",
			},
			Formats: map[string]string{"2512": "vin"},
		},
		Payload: Payload{
			RegionField:   "5",
			PhoneField:    "16",
			ImagesField:   "14",
			DefaultRegion: "12",
			CountryCode:   "373",
			PrimaryLang:   "ru",
			SecondaryLang: "ro",
		},
		Server: Server{
			Addr:            ":8000",
			CORSOrigins:     []string{"http://localhost:4200", "http://localhost:3000"},
			MakeField:       "20",
			ModelField:      "21",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and that every type override names a
// known field type.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for id, raw := range c.Fields.Types {
		if _, ok := schema.ParseFieldType(raw); !ok {
			return fmt.Errorf("config: fields.types[%s]: unknown type %q", id, raw)
		}
	}
	return nil
}

// Profile converts the field section into a schema profile.
func (c *Config) Profile() schema.Profile {
	f := c.Fields
	profile := schema.Profile{
		Extract:        append([]string(nil), f.Extract...),
		StaticDefaults: copyStrings(f.StaticDefaults),
		Dependencies:   copyStrings(f.Dependencies),
		Composite:      append([]string(nil), f.Composite...),
	}
	if f.Extract == nil {
		profile.Extract = nil
	}
	if len(f.MultiSignal) > 0 {
		profile.MultiSignal = make(map[string]map[string]string, len(f.MultiSignal))
		for id, signals := range f.MultiSignal {
			profile.MultiSignal[id] = copyStrings(signals)
		}
	}
	if len(f.Types) > 0 {
		profile.Types = make(map[string]schema.FieldType, len(f.Types))
		for id, raw := range f.Types {
			if ft, ok := schema.ParseFieldType(raw); ok {
				profile.Types[id] = ft
			}
		}
	}
	if len(f.Formats) > 0 {
		profile.Formats = make(map[string]schema.Format, len(f.Formats))
		for id, raw := range f.Formats {
			profile.Formats[id] = schema.Format(raw)
		}
	}
	return profile
}

func copyStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
