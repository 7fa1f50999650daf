package api

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/metrics"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/middleware"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/utils"
)

// ServiceName is reported by /health.
const ServiceName = "AI Recruiting Demo"

// BuildInfo is stamped at link time and served by /health and /version.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

type ServerOptions struct {
	Router         *Router
	Sessions       *middleware.Sessions
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
	DefaultLocale  string
	// StaticDir serves a built frontend. DevFrontendURL proxies to a dev
	// server instead; StaticDir wins when both are set.
	StaticDir      string
	DevFrontendURL string
	RequestTimeout time.Duration
	Build          BuildInfo
}

// NewHandler assembles the middleware chain and all routes.
func NewHandler(opts ServerOptions) http.Handler {
	log := logger.WithFields(opts.Logger)
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.SecureHeaders, middleware.NoStore)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Locale(utils.SupportedLocales, opts.DefaultLocale))
	r.Use(chimw.Timeout(opts.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		locale := middleware.LocaleFromContext(r.Context(), opts.DefaultLocale)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  utils.T(locale, "health.ok"),
			"service": ServiceName,
			"version": opts.Build.Version,
		})
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, opts.Build)
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if opts.Sessions != nil {
			r.Use(opts.Sessions.Middleware)
		}
		opts.Router.Register(r)
	})

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	} else if opts.DevFrontendURL != "" {
		if u, err := url.Parse(opts.DevFrontendURL); err == nil {
			r.Handle("/*", httputil.NewSingleHostReverseProxy(u))
		} else {
			log.Warn("invalid dev frontend url", zap.String("url", opts.DevFrontendURL), zap.Error(err))
		}
	}
	return r
}
