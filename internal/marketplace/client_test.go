package marketplace_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-adfeatures/internal/marketplace"
	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/schema"
	"github.com/goliatone/go-adfeatures/pkg/testsupport"
)

type partnerAPI struct {
	t            *testing.T
	dependent    atomic.Int64
	lastAdvert   map[string]any
	advertStatus int
}

func (p *partnerAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/features":
		assert.Equal(p.t, "Basic "+base64.StdEncoding.EncodeToString([]byte("secret:")), r.Header.Get("Authorization"))
		assert.Equal(p.t, "658", r.URL.Query().Get("category_id"))
		assert.Equal(p.t, "ru", r.URL.Query().Get("lang"))
		_, _ = w.Write(testsupport.CarsDocument())
	case "/dependent_options":
		p.dependent.Add(1)
		q := r.URL.Query()
		assert.Equal(p.t, "659", q.Get("subcategory_id"))
		switch q.Get("dependency_feature_id") + "/" + q.Get("parent_option_id") {
		case "20/1":
			_, _ = w.Write([]byte(`{"Options": [{"id": 101, "title": "RAV4"}, {"id": 100, "title": "Camry"}]}`))
		case "21/100":
			_, _ = w.Write([]byte(`[{"id": "501", "value": "XV70"}, {"id": "500", "value": "XV50"}]`))
		default:
			http.Error(w, `{"error":"unknown"}`, http.StatusNotFound)
		}
	case "/adverts":
		assert.Equal(p.t, http.MethodPost, r.Method)
		assert.Equal(p.t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(p.t, json.NewDecoder(r.Body).Decode(&p.lastAdvert))
		if p.advertStatus != 0 {
			w.WriteHeader(p.advertStatus)
			_, _ = w.Write([]byte(`{"error":"invalid feature 19"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"advert_id": 987654}`))
	default:
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, api *partnerAPI, mutate ...func(*marketplace.Config)) *marketplace.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	cfg := marketplace.Config{
		BaseURL:       srv.URL,
		APIKey:        "secret",
		CategoryID:    "658",
		SubcategoryID: "659",
		OfferType:     "776",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	client, err := marketplace.New(cfg)
	require.NoError(t, err)
	return client
}

func TestDependentOptions(t *testing.T) {
	t.Parallel()

	api := &partnerAPI{t: t}
	client := newClient(t, api)
	ctx := context.Background()

	models, err := client.DependentOptions(ctx, "20", "1")
	require.NoError(t, err)
	require.Equal(t, []schema.Option{{ID: "100", Title: "Camry"}, {ID: "101", Title: "RAV4"}}, models)

	generations, err := client.ChildOptions(ctx, schema.FieldDescriptor{ID: "2095", DependsOn: "21"}, "100")
	require.NoError(t, err)
	require.Equal(t, []schema.Option{{ID: "500", Title: "XV50"}, {ID: "501", Title: "XV70"}}, generations)

	_, err = client.DependentOptions(ctx, "20", "1")
	require.NoError(t, err)
	require.EqualValues(t, 2, api.dependent.Load(), "second lookup served from cache")

	empty, err := client.DependentOptions(ctx, "20", "undefined")
	require.NoError(t, err)
	require.Empty(t, empty)
	require.EqualValues(t, 2, api.dependent.Load())
}

func TestDependentOptions_CacheDisabled(t *testing.T) {
	t.Parallel()

	api := &partnerAPI{t: t}
	client := newClient(t, api, func(cfg *marketplace.Config) { cfg.CacheTTL = -1 })

	for i := 0; i < 2; i++ {
		_, err := client.DependentOptions(context.Background(), "20", "1")
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, api.dependent.Load())
}

func TestDependentOptions_StatusError(t *testing.T) {
	t.Parallel()

	client := newClient(t, &partnerAPI{t: t})
	_, err := client.DependentOptions(context.Background(), "20", "999")
	require.Error(t, err)
	require.True(t, marketplace.IsNotFound(err))

	var cerr *collab.CollaboratorError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "dependent_options", cerr.Op)
}

func TestSchemaAndFieldOptions(t *testing.T) {
	t.Parallel()

	client := newClient(t, &partnerAPI{t: t})
	ctx := context.Background()

	sch, err := client.Schema(ctx, testsupport.CarProfile())
	require.NoError(t, err)
	parent, ok := sch.Parent(testsupport.FieldGeneration)
	require.True(t, ok)
	require.Equal(t, testsupport.FieldModel, parent)

	makes, err := client.FieldOptions(ctx, testsupport.FieldMake)
	require.NoError(t, err)
	require.Equal(t, []marketplace.Choice{
		{ID: "2", Name: "BMW"},
		{ID: "3", Name: "Mercedes-Benz"},
		{ID: "1", Name: "Toyota"},
	}, marketplace.Choices(makes))
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	api := &partnerAPI{t: t}
	client := newClient(t, api)
	p := &payload.Payload{
		CategoryID: "658", SubcategoryID: "659", OfferType: "776",
		Features: []payload.Feature{{ID: "19", Value: int64(2018)}},
	}

	sub, err := client.Submit(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "987654", sub.AdvertID)
	require.Equal(t, "https://999.md/ru/987654", sub.URL)
	require.Equal(t, "658", api.lastAdvert["category_id"])
}

func TestSubmit_Rejected(t *testing.T) {
	t.Parallel()

	client := newClient(t, &partnerAPI{t: t, advertStatus: http.StatusUnprocessableEntity})
	_, err := client.Submit(context.Background(), &payload.Payload{CategoryID: "658"})
	var status *marketplace.StatusError
	require.True(t, errors.As(err, &status))
	require.Equal(t, http.StatusUnprocessableEntity, status.Status)
	require.Contains(t, status.Body, "invalid feature 19")
}

func TestNew_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	_, err := marketplace.New(marketplace.Config{BaseURL: "partners-api"})
	require.Error(t, err)
}
