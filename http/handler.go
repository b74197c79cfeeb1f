package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GyrosOfWar/serve"
)

// Service resolves request paths into files or directory listings.
type Service interface {
	Open(ctx context.Context, urlPath string) (serve.Resource, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	// Realm is announced in the WWW-Authenticate challenge.
	Realm string
	// Credentials protects every route except the stylesheet. Nil disables auth.
	Credentials *serve.Credentials
	CORS        CORSConfig
}

// Handler provides the HTTP handlers for serving files and directory indexes.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.Realm == "" {
		cfg.Realm = "serve"
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
// GET and HEAD are the only methods served; /style.css is always public.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(AccessLogMiddleware)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.MethodNotAllowed(h.handleMethodNotAllowed)

	r.Get("/style.css", h.handleStyle)
	r.Head("/style.css", h.handleStyle)

	r.Group(func(r chi.Router) {
		r.Use(BasicAuthMiddleware(h.config.Realm, h.config.Credentials))
		r.Get("/*", h.handleGet)
		r.Head("/*", h.handleGet)
	})

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Open(r.Context(), r.URL.Path)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	switch res.Kind {
	case serve.KindFile:
		serveFile(w, r, res.File)
	case serve.KindDirectory:
		serveListing(w, r, res.Listing)
	default:
		slog.Error("unexpected resource kind", "kind", res.Kind, "path", r.URL.Path)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func (h *Handler) handleStyle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	http.ServeFileFS(w, r, assets, "templates/style.css")
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, HEAD")
	WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}
