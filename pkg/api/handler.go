package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hazyhaar/okato-places/pkg/kit"
	"github.com/hazyhaar/okato-places/pkg/store"
)

// NewRouter returns an http.Handler with all okato read routes.
func NewRouter(r PlaceReader, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{eps: newEndpoints(r, logger), reader: r}

	mux.HandleFunc("GET /v1/inflect/{title}", h.handleInflect)
	mux.HandleFunc("GET /v1/places/{id}", h.handlePlace)
	mux.HandleFunc("GET /v1/places/{id}/children", h.handleChildren)
	mux.HandleFunc("GET /v1/codes/{code}", h.handleByCode)
	mux.HandleFunc("GET /v1/runs", h.handleRuns)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	eps    *endpoints
	reader PlaceReader
}

// --- inflect ---

func (h *handler) handleInflect(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.inflect, &inflectReq{Title: r.PathValue("title")})
}

// --- places ---

func (h *handler) handlePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.serve(w, r, h.eps.place, &placeReq{ID: id})
}

func (h *handler) handleChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.serve(w, r, h.eps.children, &placeReq{ID: id})
}

func (h *handler) handleByCode(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.byCode, &codeReq{Code: r.PathValue("code")})
}

// --- runs ---

func (h *handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	h.serve(w, r, h.eps.runs, &runsReq{Limit: limit})
}

// --- health ---

type healthResponse struct {
	Status string `json:"status"`
	Places int64  `json:"places"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := h.reader.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Places: n})
}

// --- helpers ---

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(kit.WithTransport(r.Context(), "http"), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalid):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
