// Package server exposes the dialect registry over HTTP.
//
//	GET  /version               build version
//	GET  /dialects              registered dialects and their capabilities
//	POST /render?dialect=NAME   render a query document (YAML or JSON body)
//	POST /render?dialect=*      render for every dialect concurrently
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/warehouse"
)

// maxBodyBytes bounds a query document.
const maxBodyBytes = 1 << 20

// Server renders queries against a fixed registry and model set.
type Server struct {
	registry *warehouse.Registry
	models   ir.Models
	dialect  string
	logger   *slog.Logger
}

// New creates a server. defaultDialect is used when a request names none.
func New(registry *warehouse.Registry, models ir.Models, defaultDialect string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, models: models, dialect: defaultDialect, logger: logger}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/version", s.handleVersion)
	r.Get("/dialects", s.handleDialects)
	r.Post("/render", s.handleRender)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimw.GetReqID(r.Context()))
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": ir.Version, "ir_version": ir.IRVersion})
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	bridges := s.registry.Bridges()
	caps := make([]dialect.Capabilities, len(bridges))
	for i, b := range bridges {
		caps[i] = b.Capabilities()
	}
	writeJSON(w, http.StatusOK, map[string]any{"dialects": caps})
}

// renderResult is one dialect's entry in a /render?dialect=* response.
type renderResult struct {
	Dialect string                 `json:"dialect"`
	Query   *dialect.RenderedQuery `json:"query,omitempty"`
	Error   *errorBody             `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := queryir.DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q, err := req.Query()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	gctx := dialect.GeneratorContext{Models: s.models, Options: req.Options}

	name := r.URL.Query().Get("dialect")
	if name == "" {
		name = s.dialect
	}

	if name == "*" {
		outcomes, err := s.registry.RenderAll(r.Context(), gctx, q)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		results := make([]renderResult, len(outcomes))
		for i, o := range outcomes {
			results[i] = renderResult{Dialect: o.Dialect, Query: o.Query}
			if o.Err != nil {
				results[i].Error = newErrorBody(o.Err)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	b, err := s.registry.Lookup(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	rq, err := b.Generate(gctx, q)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("rendered query", "dialect", rq.Dialect, "kind", string(rq.Kind), "id", rq.ID)
	writeJSON(w, http.StatusOK, rq)
}

// statusFor maps bridge errors to HTTP statuses: unimplemented dialect
// features are 501, every other failure is a problem with the request.
func statusFor(err error) int {
	var de *dialect.Error
	if !errors.As(err, &de) {
		return http.StatusUnprocessableEntity
	}
	switch de.Kind {
	case dialect.ErrUnimplemented, dialect.ErrUnsupportedGenerator:
		return http.StatusNotImplemented
	case dialect.ErrInvalidDefinition:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func newErrorBody(err error) *errorBody {
	return &errorBody{Kind: string(dialect.KindOf(err)), Message: err.Error()}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]*errorBody{"error": newErrorBody(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
