package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	adfeatures "github.com/goliatone/go-adfeatures"
	"github.com/goliatone/go-adfeatures/internal/config"
	"github.com/goliatone/go-adfeatures/internal/llm"
	"github.com/goliatone/go-adfeatures/internal/marketplace"
	"github.com/goliatone/go-adfeatures/internal/prompt"
	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// schemaFromMarketplace makes the schema source the partner API features
// endpoint instead of a file or URL.
const schemaFromMarketplace = "marketplace"

// app holds the configuration and lazily built collaborators shared by the
// sub-commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	market  *marketplace.Client
	model   *llm.Client
	prompts *prompt.Engine
}

func (a *app) marketplace() (*marketplace.Client, error) {
	if a.market != nil {
		return a.market, nil
	}
	m := a.cfg.Marketplace
	client, err := marketplace.New(marketplace.Config{
		BaseURL:       m.BaseURL,
		APIKey:        m.APIKey,
		CategoryID:    m.CategoryID,
		SubcategoryID: m.SubcategoryID,
		OfferType:     m.OfferType,
		Lang:          m.Lang,
		Timeout:       m.Timeout,
		CacheTTL:      m.CacheTTL,
		CacheSize:     m.CacheSize,
		Logger:        a.logger.Named("marketplace"),
	})
	if err != nil {
		return nil, err
	}
	if m.APIKey == "" {
		a.logger.Warn("marketplace api key is not set; requests will be anonymous", zap.String("env", config.EnvMarketplaceKey))
	}
	a.market = client
	return client, nil
}

func (a *app) promptEngine() (*prompt.Engine, error) {
	if a.prompts != nil {
		return a.prompts, nil
	}
	pe, err := prompt.New()
	if err != nil {
		return nil, err
	}
	a.prompts = pe
	return pe, nil
}

func (a *app) llmClient() (*llm.Client, error) {
	if a.model != nil {
		return a.model, nil
	}
	prompts, err := a.promptEngine()
	if err != nil {
		return nil, err
	}
	c := a.cfg.LLM
	if c.APIKey == "" {
		a.logger.Warn("llm api key is not set", zap.String("env", config.EnvLLMKey))
	}
	client, err := llm.New(llm.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		HTTPClient:  &http.Client{Timeout: c.Timeout},
	}, llm.WithLogger(a.logger.Named("llm")), llm.WithPrompts(prompts))
	if err != nil {
		return nil, err
	}
	a.model = client
	return client, nil
}

func (a *app) loadSchema(ctx context.Context) (*schema.Schema, error) {
	profile := a.cfg.Profile()
	source := strings.TrimSpace(a.cfg.Schema.Source)
	if source == schemaFromMarketplace {
		market, err := a.marketplace()
		if err != nil {
			return nil, err
		}
		return market.Schema(ctx, profile)
	}
	src := schema.ParseSource(source)
	if src == nil {
		return nil, errors.New("adfeatures: schema source is empty")
	}
	loader := adfeatures.NewLoader(
		schema.WithProfile(profile),
		schema.WithHTTPFallback(a.cfg.Marketplace.Timeout),
	)
	sch, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("schema loaded", zap.String("location", sch.Location()), zap.Int("fields", sch.Len()))
	return sch, nil
}

func (a *app) engine() (*engine.Engine, error) {
	model, err := a.llmClient()
	if err != nil {
		return nil, err
	}
	market, err := a.marketplace()
	if err != nil {
		return nil, err
	}
	prompts, err := a.promptEngine()
	if err != nil {
		return nil, err
	}
	return adfeatures.NewEngine(
		engine.WithLogger(a.logger.Named("engine")),
		engine.WithMaxConcurrency(a.cfg.Engine.MaxConcurrency),
		engine.WithCallTimeout(a.cfg.Engine.CallTimeout),
		engine.WithExtractor(model),
		engine.WithDisambiguator(model),
		engine.WithComposer(model),
		engine.WithOptionLookup(market),
		engine.WithFooter(prompts),
	), nil
}

func (a *app) payloadBuilder(strict bool) (*payload.Builder, error) {
	model, err := a.llmClient()
	if err != nil {
		return nil, err
	}
	m, p := a.cfg.Marketplace, a.cfg.Payload
	options := []payload.Option{
		payload.WithTranslator(model),
		payload.WithLanguages(p.PrimaryLang, p.SecondaryLang),
		payload.WithCountryCode(p.CountryCode),
		payload.WithDefaults(payload.Defaults{
			CategoryID:    m.CategoryID,
			SubcategoryID: m.SubcategoryID,
			OfferType:     m.OfferType,
			State:         m.AdvertState,
			Region:        p.DefaultRegion,
		}),
		payload.WithFieldIDs(payload.FieldIDs{
			Region: p.RegionField,
			Phone:  p.PhoneField,
			Images: p.ImagesField,
		}),
		payload.WithLogger(a.logger.Named("payload")),
	}
	if strict {
		options = append(options, payload.WithStrict())
	}
	return adfeatures.NewPayloadBuilder(options...), nil
}

// readText returns the ad text from --text, or from --file where "-" reads
// stdin.
func readText(text, file string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	switch file {
	case "":
		return "", errors.New("adfeatures: provide --text or --file")
	case "-":
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("adfeatures: read stdin: %w", err)
		}
		return string(raw), nil
	default:
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("adfeatures: read %s: %w", file, err)
		}
		return string(raw), nil
	}
}
