package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/config"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
	"github.com/matzehuels/vegadeck/pkg/store"
	"github.com/matzehuels/vegadeck/pkg/vegalite"
)

const vegaSchema = "https://vega.github.io/schema/vega/v5.json"

// testServer builds a server on memory backends, no external services.
func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	return &Server{
		cfg:     cfg,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		cache:   cache.NewMemoryCache(),
		store:   store.NewMemoryStore(),
		loaders: loaders.NewRegistry(),
		compiler: vegalite.CompilerFunc(func(_ context.Context, lite spec.Document, _ func(string)) (spec.Document, error) {
			full := map[string]any{"compiled": true}
			for k, v := range lite {
				full[k] = v
			}
			return full, nil
		}),
	}
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
	if body["version"] == "" {
		t.Error("version field is empty")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/v1/normalize",
		`{"$schema": "`+vegaSchema+`", "width": 300}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Spec     map[string]any `json:"spec"`
		Dialect  string         `json:"dialect"`
		Renderer string         `json:"renderer"`
		Error    *apiError      `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error != nil {
		t.Fatalf("error = %+v, want none", body.Error)
	}
	if body.Dialect != "vega" {
		t.Errorf("dialect = %q, want %q", body.Dialect, "vega")
	}
	if body.Renderer != "canvas" {
		t.Errorf("renderer = %q, want %q", body.Renderer, "canvas")
	}
	if body.Spec == nil {
		t.Fatal("spec missing from response")
	}
}

func TestNormalizeEndpointAcceptsHJSON(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/v1/normalize", `
{
  // relaxed syntax
  $schema: "`+vegaSchema+`"
}
`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Error *apiError `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error != nil {
		t.Fatalf("error = %+v, want none", body.Error)
	}
}

func TestNormalizeEndpointPipelineFatal(t *testing.T) {
	// Spec problems are reported in-band with status 200.
	rec := doRequest(t, testServer(t), http.MethodPost, "/v1/normalize",
		`{"$schema": "`+vegaSchema+`", "config": {"deck": {"renderer": "webgl"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Spec  map[string]any `json:"spec"`
		Error *apiError      `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error == nil {
		t.Fatal("error field missing for an invalid renderer")
	}
	if body.Error.Code != "UNRECOGNIZED_VALUE" {
		t.Errorf("error code = %q, want UNRECOGNIZED_VALUE", body.Error.Code)
	}
	if body.Spec != nil {
		t.Error("spec present despite a fatal finding")
	}
}

func TestNormalizeEndpointCompilesLite(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/v1/normalize",
		`{"$schema": "https://vega.github.io/schema/vega-lite/v5.json", "mark": "bar"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Spec    map[string]any `json:"spec"`
		Dialect string         `json:"dialect"`
		Error   *apiError      `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error != nil {
		t.Fatalf("error = %+v, want none", body.Error)
	}
	if body.Dialect != "vega-lite" {
		t.Errorf("dialect = %q, want %q", body.Dialect, "vega-lite")
	}
	if body.Spec["compiled"] != true {
		t.Error("spec was not run through the compiler")
	}
}

func TestNormalizeBodyTooLarge(t *testing.T) {
	s := testServer(t)
	s.cfg.Server.MaxBodyBytes = 16

	rec := doRequest(t, s, http.MethodPost, "/v1/normalize",
		`{"$schema": "`+vegaSchema+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestSpecsCRUD(t *testing.T) {
	s := testServer(t)

	// Create.
	payload, _ := json.Marshal(createSpecRequest{
		Name: "dashboard",
		Spec: `{"$schema": "` + vegaSchema + `"}`,
	})
	rec := doRequest(t, s, http.MethodPost, "/v1/specs", string(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var created store.SavedSpec
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("created spec has no id")
	}
	if created.Name != "dashboard" {
		t.Errorf("Name = %q", created.Name)
	}

	// List.
	rec = doRequest(t, s, http.MethodGet, "/v1/specs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var all []store.SavedSpec
	decodeBody(t, rec, &all)
	if len(all) != 1 || all[0].ID != created.ID {
		t.Errorf("list = %+v, want the created spec", all)
	}

	// Get.
	rec = doRequest(t, s, http.MethodGet, "/v1/specs/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}

	// Normalize the saved spec.
	rec = doRequest(t, s, http.MethodPost, "/v1/specs/"+created.ID+"/normalize", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("normalize status = %d, want 200", rec.Code)
	}
	var normalized struct {
		Spec  map[string]any `json:"spec"`
		Error *apiError      `json:"error"`
	}
	decodeBody(t, rec, &normalized)
	if normalized.Error != nil {
		t.Fatalf("normalize error = %+v, want none", normalized.Error)
	}
	if normalized.Spec == nil {
		t.Fatal("normalize returned no spec")
	}

	// Delete.
	rec = doRequest(t, s, http.MethodDelete, "/v1/specs/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/v1/specs/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestSpecsEmptyListIsArray(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/v1/specs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestCreateSpecValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "name=nope"},
		{name: "missing name", body: `{"spec": "{}"}`},
		{name: "missing spec", body: `{"name": "x"}`},
		{name: "blank name", body: `{"name": "  ", "spec": "{}"}`},
	}

	s := testServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/v1/specs", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body map[string]*apiError
			decodeBody(t, rec, &body)
			if body["error"] == nil || body["error"].Code != "INVALID_PARAMETER" {
				t.Errorf("error envelope = %+v", body)
			}
		})
	}
}

func TestSpecNotFound(t *testing.T) {
	s := testServer(t)
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/v1/specs/missing"},
		{http.MethodDelete, "/v1/specs/missing"},
		{http.MethodPost, "/v1/specs/missing/normalize"},
	} {
		rec := doRequest(t, s, req.method, req.path, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", req.method, req.path, rec.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("response missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "caller-chosen")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "caller-chosen" {
		t.Errorf("request id = %q, want the caller's", got)
	}
}

func TestRecovererTurnsPanicsInto500(t *testing.T) {
	s := testServer(t)
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]*apiError
	decodeBody(t, rec, &body)
	if body["error"] == nil || body["error"].Code != "INTERNAL_ERROR" {
		t.Errorf("error envelope = %+v", body)
	}
}

func TestBuildBackends(t *testing.T) {
	cacheCfg := config.CacheConfig{Backend: config.CacheMemory}
	backend, err := buildCache(&cacheCfg)
	if err != nil {
		t.Fatalf("buildCache(memory) error: %v", err)
	}
	defer backend.Close()

	storeCfg := config.StoreConfig{Backend: config.StoreMemory}
	st, err := buildStore(context.Background(), &storeCfg)
	if err != nil {
		t.Fatalf("buildStore(memory) error: %v", err)
	}
	defer st.Close(context.Background())

	loadersCfg := config.LoadersConfig{AllowURLs: true}
	registry, err := buildRegistry(&loadersCfg, backend)
	if err != nil {
		t.Fatalf("buildRegistry error: %v", err)
	}
	names := registry.Names()
	want := map[string]bool{"elasticsearch": true, "emsfile": true, "url": true}
	if len(names) != len(want) {
		t.Fatalf("registry names = %v, want %v", names, want)
	}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected loader %q", name)
		}
	}

	// Arbitrary URL fetching can be switched off.
	loadersCfg.AllowURLs = false
	registry, err = buildRegistry(&loadersCfg, backend)
	if err != nil {
		t.Fatalf("buildRegistry error: %v", err)
	}
	for _, name := range registry.Names() {
		if name == "url" {
			t.Error("url loader registered despite allow_urls = false")
		}
	}
}
