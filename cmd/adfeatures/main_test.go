package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/testsupport"
)

func TestParseFeature(t *testing.T) {
	t.Parallel()

	sch := testsupport.CarSchema(t)
	cases := []struct {
		raw  string
		want payload.FeatureValue
		err  bool
	}{
		{raw: "101=11", want: payload.FeatureValue{ID: "101", Value: "11"}},
		{raw: "2=15000:usd", want: payload.FeatureValue{ID: "2", Value: "15000", Unit: "usd"}},
		{raw: "2=15000:gbp", want: payload.FeatureValue{ID: "2", Value: "15000:gbp"}},
		{raw: " 12 =Toyota Camry", want: payload.FeatureValue{ID: "12", Value: "Toyota Camry"}},
		{raw: "13=Мы находимся: Бугеак", want: payload.FeatureValue{ID: "13", Value: "Мы находимся: Бугеак"}},
		{raw: "13=Адрес: ул. Мира:12", want: payload.FeatureValue{ID: "13", Value: "Адрес: ул. Мира:12"}},
		{raw: "999=a:b", want: payload.FeatureValue{ID: "999", Value: "a:b"}},
		{raw: "101", err: true},
		{raw: "=11", err: true},
	}
	for _, tc := range cases {
		got, err := parseFeature(tc.raw, sch)
		if tc.err {
			require.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestReadText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "advert.txt")
	require.NoError(t, os.WriteFile(path, []byte("Продаю BMW"), 0o600))

	got, err := readText("Продаю Toyota", path, nil)
	require.NoError(t, err)
	require.Equal(t, "Продаю Toyota", got)

	got, err = readText("", path, nil)
	require.NoError(t, err)
	require.Equal(t, "Продаю BMW", got)

	got, err = readText("", "-", strings.NewReader("из stdin"))
	require.NoError(t, err)
	require.Equal(t, "из stdin", got)

	_, err = readText("", "", nil)
	require.ErrorContains(t, err, "--text or --file")
}

func partnerAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/features":
			_, _ = w.Write(testsupport.CarsDocument())
		case "/dependent_options":
			if r.URL.Query().Get("dependency_feature_id") != "20" {
				http.Error(w, "unexpected dependency", http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"Options": [{"id": 101, "title": "Corolla"}, {"id": 100, "title": "Camry"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "adfeatures.yaml")
	cfg := "marketplace:\n  base_url: " + baseURL + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestOptionsCommand(t *testing.T) {
	t.Parallel()

	srv := partnerAPI(t)

	out, err := runCLI(t, srv.URL, "options", "makes", "-o", "json")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"2","name":"BMW"},{"id":"3","name":"Mercedes-Benz"},{"id":"1","name":"Toyota"}]`, out)

	out, err = runCLI(t, srv.URL, "options", "models", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Camry")
	require.Less(t, strings.Index(out, "Camry"), strings.Index(out, "Corolla"))

	_, err = runCLI(t, srv.URL, "options", "models", "1", "-o", "yaml")
	require.ErrorContains(t, err, "unknown output format")
}

func TestResolveCommand_RequiresInput(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "https://partners-api.999.md", "resolve")
	require.ErrorContains(t, err, "--text or --file")
}
