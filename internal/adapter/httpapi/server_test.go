package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research/config"
	"research/internal/adapter/embedding"
	"research/internal/adapter/memstore"
	"research/internal/adapter/store"
	"research/internal/domain"
	"research/internal/port"
	"research/internal/usecase"
)

func newTestHandler(t *testing.T, emb port.Embedder) *Handler {
	t.Helper()
	st := store.NewRecordStore(memstore.NewMemoryPersister(), store.Options{})
	svc := usecase.NewVectorService(st, emb, usecase.ServiceOptions{})
	return NewHandler(svc, usecase.NewContextBuilder(svc, svc, 0, 0), 5, nil)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_UpsertSearchDelete(t *testing.T) {
	h := newTestHandler(t, embedding.NewLocalEmbedder(0))

	for _, tc := range []struct{ id, body string }{
		{"d1", `{"owner":"u1","title":"Paper A","text":"about graphs"}`},
		{"d2", `{"owner":"u1","title":"Paper B","text":"about banking"}`},
		{"d3", `{"owner":"u2","title":"Paper C","text":"about graphs"}`},
	} {
		rec := do(h, http.MethodPut, "/v1/sources/"+tc.id, tc.body)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("upsert %s: status %d: %s", tc.id, rec.Code, rec.Body)
		}
	}

	rec := do(h, http.MethodGet, "/v1/search?owner=u1&q=graphs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d: %s", rec.Code, rec.Body)
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 || resp.Results[0].ID != "d1" || resp.Results[1].ID != "d2" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}

	rec = do(h, http.MethodGet, "/v1/context?owner=u1&q=graphs&k=1", "")
	var ctx domain.RAGContext
	if err := json.Unmarshal(rec.Body.Bytes(), &ctx); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Titles) != 1 || ctx.Titles[0] != "Paper A" {
		t.Errorf("unexpected context titles %v", ctx.Titles)
	}
	if !strings.HasPrefix(ctx.Library, "Library Overview (2 total sources):") {
		t.Errorf("unexpected library overview %q", ctx.Library)
	}

	rec = do(h, http.MethodDelete, "/v1/sources/d1?owner=u1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = do(h, http.MethodGet, "/v1/stats", "")
	var stats domain.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalRecords != 2 || stats.Owners["u1"] != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestHandler_BadRequests(t *testing.T) {
	h := newTestHandler(t, embedding.NewLocalEmbedder(0))

	tests := []struct {
		name, method, target, body string
	}{
		{"missing owner on upsert", http.MethodPut, "/v1/sources/d1", `{"title":"t","text":"x"}`},
		{"malformed body", http.MethodPut, "/v1/sources/d1", `{`},
		{"missing owner on search", http.MethodGet, "/v1/search?q=graphs", ""},
		{"missing query", http.MethodGet, "/v1/search?owner=u1", ""},
		{"non-numeric k", http.MethodGet, "/v1/search?owner=u1&q=x&k=many", ""},
		{"missing owner on delete", http.MethodDelete, "/v1/sources/d1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, tt.target, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestHandler_ProviderUnavailable(t *testing.T) {
	lazy := embedding.NewLazy("down", func() (port.Embedder, error) {
		return nil, domain.ErrProviderUnavailable
	})
	h := newTestHandler(t, lazy)

	rec := do(h, http.MethodPut, "/v1/sources/d1", `{"owner":"u1","title":"t","text":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d: %s", rec.Code, rec.Body)
	}
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t, embedding.NewMockEmbedder(4))
	rec := do(h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body)
	}
}

func TestHandler_ProviderMisconfigured(t *testing.T) {
	tests := []struct {
		name string
		emb  port.Embedder
	}{
		{"unsupported provider", embedding.NewLazyFromConfig(config.EmbeddingConfig{Provider: "word2vec"})},
		{"factory error", embedding.NewLazy("broken", func() (port.Embedder, error) {
			return nil, errors.New("model weights missing")
		})},
		{"empty embeddings", embedding.NewMockEmbedder(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.emb)
			rec := do(h, http.MethodPut, "/v1/sources/d1", `{"owner":"u1","title":"t","text":"x"}`)
			if rec.Code != http.StatusBadGateway {
				t.Errorf("expected 502, got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}
