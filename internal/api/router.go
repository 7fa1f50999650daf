package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/middleware"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/utils"
)

const maxBodyBytes = 1 << 20

// Catalog is the read-only view of configured positions the handlers need.
type Catalog interface {
	Positions() []models.Position
	DimensionName(d models.Dimension, locale, fallback string) string
}

// Router serves the questionnaire and results API.
type Router struct {
	sessions      *services.SessionService
	results       *services.ResultsService
	catalog       Catalog
	defaultLocale string
	limit         func(http.Handler) http.Handler
	logger        *zap.Logger
}

type RouterOptions struct {
	DefaultLocale string
	// RateLimit wraps state-changing routes when set.
	RateLimit func(http.Handler) http.Handler
	Logger    *zap.Logger
}

func NewRouter(sessions *services.SessionService, results *services.ResultsService, catalog Catalog, opts RouterOptions) *Router {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "de"
	}
	limit := opts.RateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Router{
		sessions:      sessions,
		results:       results,
		catalog:       catalog,
		defaultLocale: opts.DefaultLocale,
		limit:         limit,
		logger:        logger.WithFields(opts.Logger).Named("api"),
	}
}

func (rt *Router) Register(r chi.Router) {
	r.Route("/api/personality", func(r chi.Router) {
		r.Get("/questions", rt.handleQuestions)
		r.Get("/status", rt.handleStatus)
		r.Get("/result", rt.handleResult)

		r.Group(func(r chi.Router) {
			r.Use(rt.limit)
			r.Post("/start", rt.handleStart)
			r.Post("/progress", rt.handleProgress)
			r.Post("/answer", rt.handleAnswer)
			r.Post("/next", rt.handleNext)
			r.Post("/back", rt.handleBack)
			r.Post("/submit", rt.handleSubmit)
		})
	})

	r.Get("/api/positions", rt.handlePositions)

	r.Route("/api/results", func(r chi.Router) {
		r.Get("/", rt.handleResults)
		r.With(rt.limit).Post("/cv", rt.handleAnalyzeCV)
		r.Post("/clear", rt.handleClearResults)
	})
	r.Post("/clear-results", rt.handleClearResults)
}

func (rt *Router) locale(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context(), rt.defaultLocale)
}

func sessionID(r *http.Request) string {
	sid, _ := middleware.SessionIDFromContext(r.Context())
	return sid
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ok adds the success flag clients check before reading the payload.
func ok(payload map[string]any) map[string]any {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true
	return payload
}

func statusFor(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorUnprocessable:
		return http.StatusUnprocessableEntity
	case services.ErrorConflict:
		return http.StatusConflict
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorUnavailable:
		return http.StatusServiceUnavailable
	case services.ErrorBadGateway:
		return http.StatusBadGateway
	case services.ErrorTooManyRequests:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := services.CodeOf(err)
	status := statusFor(code)
	locale := rt.locale(r)
	body := map[string]any{
		"success": false,
		"code":    code,
		"error":   utils.T(locale, "error."+string(code)),
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable && status != http.StatusBadGateway {
		rt.logger.Error("request failed",
			zap.String("route", middleware.RoutePattern(r)),
			logger.SessionField(sessionID(r)),
			zap.Error(err),
		)
	} else {
		body["detail"] = err.Error()
	}

	var incomplete *services.IncompleteAnswersError
	if errors.As(err, &incomplete) {
		body["error"] = utils.T(locale, "error.incomplete")
		body["missing"] = incomplete.Missing
	}
	var missing *services.MissingProfileError
	if errors.As(err, &missing) {
		body["position_id"] = missing.PositionID
	}
	if errors.Is(err, services.ErrSessionRequired) {
		body["error"] = utils.T(locale, "error.session_required")
	}
	writeJSON(w, status, body)
}

// decodeBody reads an optional JSON body into v. An empty body is not an error.
func (rt *Router) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"code":    services.ErrorInvalid,
			"error":   utils.T(rt.locale(r), "error.bad_json"),
			"detail":  err.Error(),
		})
		return false
	}
	return true
}
