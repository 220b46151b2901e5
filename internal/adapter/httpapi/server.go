package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"research/internal/domain"
	"research/internal/usecase"
)

// Handler exposes a VectorService over HTTP. The service is built once at
// startup and shared by every request.
type Handler struct {
	service *usecase.VectorService
	context *usecase.ContextBuilder
	topK    int
	logger  *slog.Logger
	mux     *http.ServeMux
}

// NewHandler wires the routes. topK is used when a request omits k.
func NewHandler(service *usecase.VectorService, builder *usecase.ContextBuilder, topK int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = 5
	}
	h := &Handler{
		service: service,
		context: builder,
		topK:    topK,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("PUT /v1/sources/{id}", h.upsert)
	h.mux.HandleFunc("DELETE /v1/sources/{id}", h.delete)
	h.mux.HandleFunc("GET /v1/search", h.search)
	h.mux.HandleFunc("GET /v1/context", h.buildContext)
	h.mux.HandleFunc("GET /v1/stats", h.stats)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type upsertRequest struct {
	Owner string `json:"owner"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type searchResponse struct {
	Results []domain.SearchHit `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" {
		req.Title = "Untitled"
	}
	if err := h.service.Upsert(r.PathValue("id"), req.Owner, req.Title, req.Text); err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		h.fail(w, http.StatusBadRequest, domain.ErrEmptyOwner)
		return
	}
	if err := h.service.Delete(r.PathValue("id"), owner); err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	owner, query, k, err := h.searchParams(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	hits, err := h.service.Search(query, owner, k)
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

func (h *Handler) buildContext(w http.ResponseWriter, r *http.Request) {
	owner, query, k, err := h.searchParams(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	ctx, err := h.context.Build(query, owner, k)
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ctx)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Stats())
}

func (h *Handler) searchParams(r *http.Request) (owner, query string, k int, err error) {
	q := r.URL.Query()
	owner = q.Get("owner")
	if owner == "" {
		return "", "", 0, domain.ErrEmptyOwner
	}
	query = q.Get("q")
	if query == "" {
		return "", "", 0, errors.New("query parameter q is required")
	}
	k = h.topK
	if raw := q.Get("k"); raw != "" {
		if k, err = strconv.Atoi(raw); err != nil {
			return "", "", 0, errors.New("k must be an integer")
		}
	}
	return owner, query, k, nil
}

func (h *Handler) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyID),
		errors.Is(err, domain.ErrEmptyOwner),
		errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
