// Package httpapi exposes resolution, option lists and advert submission over
// HTTP for the listing form front end.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/marketplace"
	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

const maxBodyBytes = 1 << 20

// Resolver runs resolution requests; *engine.Engine satisfies it.
type Resolver interface {
	Run(ctx context.Context, req engine.Request) (*engine.Result, error)
}

// Catalog serves option lists; *marketplace.Client satisfies it.
type Catalog interface {
	FieldOptions(ctx context.Context, fieldID string) ([]schema.Option, error)
	DependentOptions(ctx context.Context, dependencyFieldID, parentOptionID string) ([]schema.Option, error)
}

// Submitter posts adverts; *marketplace.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, p *payload.Payload) (*marketplace.Submission, error)
}

// Config wires the server.
type Config struct {
	Schema    *schema.Schema
	Resolver  Resolver
	Builder   *payload.Builder
	Catalog   Catalog
	Submitter Submitter
	// MakeField and ModelField name the cascade roots of the option endpoints.
	MakeField   string
	ModelField  string
	CORSOrigins []string
	Logger      *zap.Logger
}

// Server holds the handlers.
type Server struct {
	cfg    Config
	logger *zap.Logger
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	switch {
	case cfg.Schema == nil:
		return nil, errors.New("httpapi: schema is required")
	case cfg.Resolver == nil:
		return nil, errors.New("httpapi: resolver is required")
	case cfg.Builder == nil:
		return nil, errors.New("httpapi: payload builder is required")
	}
	if cfg.MakeField == "" {
		cfg.MakeField = "20"
	}
	if cfg.ModelField == "" {
		cfg.ModelField = "21"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, logger: logger}, nil
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/post-config", s.handlePostConfig)
	mux.HandleFunc("/api/999/makes", s.handleMakes)
	mux.HandleFunc("/api/999/models", s.handleDependent(s.cfg.MakeField, "make_id"))
	mux.HandleFunc("/api/999/generations", s.handleDependent(s.cfg.ModelField, "model_id"))
	mux.HandleFunc("/api/create-advert", s.handleCreateAdvert)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return cors(s.cfg.CORSOrigins, mux)
}

type postConfigRequest struct {
	Text string `json:"text"`
}

type postConfigResponse struct {
	RunID  string               `json:"run_id"`
	Groups []engine.GroupResult `json:"features_groups"`
}

func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}
	var req postConfigRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.cfg.Resolver.Run(r.Context(), engine.Request{Schema: s.cfg.Schema, Text: req.Text})
	if err != nil {
		s.logger.Error("resolution failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("resolve: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, postConfigResponse{RunID: result.RunID, Groups: result.Groups})
}

func (s *Server) handleMakes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowedWith(w, http.MethodGet)
		return
	}
	if s.cfg.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "marketplace not configured")
		return
	}
	options, err := s.cfg.Catalog.FieldOptions(r.Context(), s.cfg.MakeField)
	if err != nil {
		s.logger.Warn("makes lookup failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, marketplace.Choices(options))
}

func (s *Server) handleDependent(dependencyField, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowedWith(w, http.MethodGet)
			return
		}
		if s.cfg.Catalog == nil {
			writeError(w, http.StatusServiceUnavailable, "marketplace not configured")
			return
		}
		parent := strings.TrimSpace(r.URL.Query().Get(param))
		options, err := s.cfg.Catalog.DependentOptions(r.Context(), dependencyField, parent)
		if err != nil {
			s.logger.Warn("dependent options lookup failed", zap.String("dependency", dependencyField), zap.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, marketplace.Choices(options))
	}
}

type createAdvertRequest struct {
	payload.Overrides
	Text string `json:"text,omitempty"`
}

type createAdvertResponse struct {
	Success  bool            `json:"success"`
	AdvertID string          `json:"advert_id,omitempty"`
	URL      string          `json:"url,omitempty"`
	Error    string          `json:"error,omitempty"`
	Issues   []payload.Issue `json:"issues,omitempty"`
}

func (s *Server) handleCreateAdvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}
	if s.cfg.Submitter == nil {
		writeError(w, http.StatusServiceUnavailable, "marketplace not configured")
		return
	}
	var req createAdvertRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var store resolve.Reader = resolve.NewStore()
	if strings.TrimSpace(req.Text) != "" {
		result, err := s.cfg.Resolver.Run(r.Context(), engine.Request{Schema: s.cfg.Schema, Text: req.Text})
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("resolve: %v", err))
			return
		}
		store = result.Store
	}

	p, err := s.cfg.Builder.Build(r.Context(), s.cfg.Schema, store, req.Overrides)
	if err != nil {
		resp := createAdvertResponse{Error: err.Error()}
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			resp.Issues = verr.Issues
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	sub, err := s.cfg.Submitter.Submit(r.Context(), p)
	if err != nil {
		s.logger.Warn("advert submission failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, createAdvertResponse{Error: err.Error(), Issues: p.Issues})
		return
	}
	writeJSON(w, http.StatusOK, createAdvertResponse{
		Success:  true,
		AdvertID: sub.AdvertID,
		URL:      sub.URL,
		Issues:   p.Issues,
	})
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowedWith(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
