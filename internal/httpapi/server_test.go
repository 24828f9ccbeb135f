package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-adfeatures/internal/httpapi"
	"github.com/goliatone/go-adfeatures/internal/marketplace"
	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
	"github.com/goliatone/go-adfeatures/pkg/testsupport"
)

type fakeResolver struct {
	mu    sync.Mutex
	texts []string
	store *resolve.Store
}

func (f *fakeResolver) Run(_ context.Context, req engine.Request) (*engine.Result, error) {
	f.mu.Lock()
	f.texts = append(f.texts, req.Text)
	f.mu.Unlock()
	store := f.store
	if store == nil {
		store = resolve.NewStore()
	}
	return &engine.Result{
		RunID:  "run-1",
		Schema: req.Schema,
		Store:  store,
		Groups: []engine.GroupResult{{Title: "Автомобиль", Features: []engine.FieldResult{
			{ID: "20", Title: "Марка", Type: schema.FieldTypeDropdown, Label: "Toyota", LabelID: "1", State: engine.StateResolved},
		}}},
	}, nil
}

type fakeCatalog struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeCatalog) FieldOptions(_ context.Context, fieldID string) ([]schema.Option, error) {
	f.record("field:" + fieldID)
	return []schema.Option{{ID: "2", Title: "BMW"}, {ID: "1", Title: "Toyota"}}, nil
}

func (f *fakeCatalog) DependentOptions(_ context.Context, dependency, parent string) ([]schema.Option, error) {
	f.record(dependency + "<-" + parent)
	if parent == "" {
		return []schema.Option{}, nil
	}
	return []schema.Option{{ID: "100", Title: "Camry"}}, nil
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

type fakeSubmitter struct {
	last *payload.Payload
	err  error
}

func (f *fakeSubmitter) Submit(_ context.Context, p *payload.Payload) (*marketplace.Submission, error) {
	f.last = p
	if f.err != nil {
		return nil, f.err
	}
	return &marketplace.Submission{AdvertID: "42", URL: "https://999.md/ru/42"}, nil
}

type harness struct {
	resolver  *fakeResolver
	catalog   *fakeCatalog
	submitter *fakeSubmitter
	handler   http.Handler
}

func newHarness(t *testing.T, builder *payload.Builder) *harness {
	t.Helper()
	h := &harness{resolver: &fakeResolver{}, catalog: &fakeCatalog{}, submitter: &fakeSubmitter{}}
	if builder == nil {
		builder = payload.New()
	}
	srv, err := httpapi.New(httpapi.Config{
		Schema:      testsupport.CarSchema(t),
		Resolver:    h.resolver,
		Builder:     builder,
		Catalog:     h.catalog,
		Submitter:   h.submitter,
		CORSOrigins: []string{"http://localhost:4200"},
	})
	require.NoError(t, err)
	h.handler = srv.Handler()
	return h
}

func (h *harness) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestPostConfig(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	rec := h.do(http.MethodPost, "/api/post-config", `{"text": "Продаю Toyota"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID  string `json:"run_id"`
		Groups []struct {
			Title    string `json:"title"`
			Features []struct {
				ID      string `json:"id"`
				Label   string `json:"label"`
				LabelID string `json:"label_id"`
			} `json:"features"`
		} `json:"features_groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "run-1", body.RunID)
	require.Equal(t, "Автомобиль", body.Groups[0].Title)
	require.Equal(t, "1", body.Groups[0].Features[0].LabelID)
	require.Equal(t, []string{"Продаю Toyota"}, h.resolver.texts)

	rec = h.do(http.MethodGet, "/api/post-config", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = h.do(http.MethodPost, "/api/post-config", `{"text": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptionEndpoints(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/api/999/makes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":"2","name":"BMW"},{"id":"1","name":"Toyota"}]`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/999/models?make_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":"100","name":"Camry"}]`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/999/generations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	require.Equal(t, []string{"field:20", "20<-1", "21<-"}, h.catalog.calls)
}

func TestCreateAdvert(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.resolver.store = resolve.NewStore()
	require.NoError(t, h.resolver.store.Put(resolve.ResolvedValue{FieldID: "20", Label: "Toyota", LabelID: "1", Source: resolve.SourceExtraction}))

	rec := h.do(http.MethodPost, "/api/create-advert", `{
		"text": "Продаю Toyota",
		"features": [{"id": "19", "value": "2018"}, {"id": "2", "value": "16000", "unit": "eur"}],
		"images": ["img-1"],
		"phone_number": "069123456"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.JSONEq(t, `{"success": true, "advert_id": "42", "url": "https://999.md/ru/42", "issues": [
		{"id": "12", "kind": "missing-required", "reason": "Заголовок"},
		{"id": "13", "kind": "missing-required", "reason": "Описание"},
		{"id": "21", "kind": "missing-required", "reason": "Модель"},
		{"id": "775", "kind": "missing-required", "reason": "Состояние"}
	]}`, rec.Body.String())

	p := h.submitter.last
	require.NotNil(t, p)
	makeFeature, ok := p.Feature("20")
	require.True(t, ok)
	require.Equal(t, "1", makeFeature.Value)
	year, _ := p.Feature("19")
	require.Equal(t, int64(2018), year.Value)
	phone, _ := p.Feature("16")
	require.Equal(t, []string{"37369123456"}, phone.Value)
	images, _ := p.Feature("14")
	require.Equal(t, []string{"img-1"}, images.Value)
}

func TestCreateAdvert_Failures(t *testing.T) {
	t.Parallel()

	strict := newHarness(t, payload.New(payload.WithStrict()))
	rec := strict.do(http.MethodPost, "/api/create-advert", `{"features": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "missing-required")
	require.Nil(t, strict.submitter.last)
	require.Empty(t, strict.resolver.texts, "no text means no resolution run")

	h := newHarness(t, nil)
	h.submitter.err = errors.New("upstream down")
	rec = h.do(http.MethodPost, "/api/create-advert", `{"features": [{"id": "19", "value": "2018"}]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
	require.Contains(t, rec.Body.String(), "upstream down")
}

func TestCORSAndHealth(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	rec := h.do(http.MethodOptions, "/api/post-config", "",
		"Origin", "http://localhost:4200", "Access-Control-Request-Method", "POST")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = h.do(http.MethodGet, "/health", "", "Origin", "http://evil.example")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
