package church

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error string `json:"error"`
}

// NewAPIHandler serves the store over HTTP:
//
//	GET /healthz
//	GET /api/members?page=N&size=M
//	GET /api/{events,classes,announcements,giving}
//	GET /api/giving/totals
//	GET /api/{collection}/{id}
//	GET /api/photos/{id}.png
func NewAPIHandler(store *Store, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/members", func(w http.ResponseWriter, req *http.Request) {
			page, _ := strconv.Atoi(req.URL.Query().Get("page"))
			size, _ := strconv.Atoi(req.URL.Query().Get("size"))
			result, err := store.Members(req.Context(), page, size)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})
		r.Get("/events", listHandler(store.Events))
		r.Get("/classes", listHandler(store.Classes))
		r.Get("/announcements", listHandler(store.Announcements))
		r.Get("/giving", listHandler(store.Gifts))
		r.Get("/giving/totals", listHandler(store.FundTotals))
		r.Get("/photos/{file}", func(w http.ResponseWriter, req *http.Request) {
			id, err := strconv.Atoi(strings.TrimSuffix(chi.URLParam(req, "file"), ".png"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, errorBody{Error: "photo not found"})
				return
			}
			if _, err = store.Member(req.Context(), id); err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Cache-Control", "max-age=3600")
			if err = WriteAvatar(w, id); err != nil {
				log.Error().Err(err).Int("member_id", id).Msg("encoding avatar")
			}
		})
		r.Get("/{collection}/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := strconv.Atoi(chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, errorBody{Error: "record not found"})
				return
			}
			record, err := store.Record(req.Context(), chi.URLParam(req, "collection"), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, record)
		})
	})
	return r
}

func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		items, err := list(req.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("component", "api").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request served")
		})
	}
}
