package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/ai/gemini"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/api"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/catalog"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/config"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/db"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/metrics"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/middleware"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

// app holds the wired server and the resources it must release.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	handler http.Handler
	store   api.Store
	limiter *middleware.RateLimiter
}

var analyzerLanguages = map[string]string{"de": "German", "en": "English"}

// loadCatalog loads the catalog and checks that every position can be
// scored. An incomplete default position is fatal; others only warn.
func loadCatalog(cfg *config.Config, log *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(catalog.Paths{
		Questions:       cfg.Catalog.Questions,
		Interpretations: cfg.Catalog.Interpretations,
		Positions:       cfg.Catalog.Positions,
	})
	if err != nil {
		return nil, err
	}
	def := cfg.Questionnaire.DefaultPosition
	if _, ok := cat.Position(def); !ok {
		return nil, &services.ConfigurationError{Source: "positions", Problems: []string{fmt.Sprintf("default position %q is not defined", def)}}
	}
	for _, p := range cat.Positions() {
		err := services.CheckProfile(p.ID, p.Personality)
		if err == nil {
			continue
		}
		if p.ID == def {
			return nil, &services.ConfigurationError{Source: "positions", Problems: []string{err.Error()}}
		}
		log.Warn("position cannot be scored", zap.String(logger.FieldPosition, p.ID), zap.Error(err))
	}
	return cat, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (api.Store, error) {
	if cfg.Store.Kind == config.StoreMemory {
		return api.NewMemoryStore(), nil
	}
	sqlDB, err := db.Open(ctx, cfg.SQLDriver(), cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	applied, err := db.RunMigrations(ctx, sqlDB, "")
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	store, err := db.NewSessionStore(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info("session store ready", zap.String("kind", cfg.Store.Kind), zap.Strings("migrations", applied))
	return store, nil
}

// sessionSecret returns the configured secret. In debug mode an unset secret
// is replaced by a random one, which invalidates cookies on restart.
func sessionSecret(cfg *config.Config, log *zap.Logger) (string, error) {
	secret, err := cfg.SessionSecret()
	if err == nil {
		return secret, nil
	}
	if cfg.Server.Mode == config.ModeRelease {
		return "", err
	}
	buf := make([]byte, 32)
	if _, rerr := rand.Read(buf); rerr != nil {
		return "", errors.Join(err, rerr)
	}
	log.Warn("session secret not configured, using an ephemeral one")
	return hex.EncodeToString(buf), nil
}

func newAnalyzer(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (services.CVAnalyzer, error) {
	if !cfg.AI.Enabled {
		log.Info("résumé analysis disabled")
		return nil, nil
	}
	key, err := cfg.GeminiAPIKey()
	if err != nil {
		return nil, err
	}
	gen, err := gemini.NewGenerator(ctx, key, cfg.AI.Gemini.Model)
	if err != nil {
		return nil, err
	}
	log.Info("résumé analysis enabled", logger.AIFields(cfg.AI.Provider, gen.Model())...)
	return gemini.NewAnalyzer(gen, gemini.Options{
		MaxRetries:        cfg.AI.Gemini.MaxRetries,
		RequestsPerMinute: cfg.AI.Gemini.RequestsPerMinute,
		MaxLogLength:      cfg.AI.Gemini.MaxLogLength,
		Language:          analyzerLanguages[cfg.Server.DefaultLocale],
		Observer:          m,
		Logger:            log,
	}), nil
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, build api.BuildInfo) (*app, error) {
	cat, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, err
	}
	bank, err := services.LoadQuestionBank(cat)
	if err != nil {
		return nil, err
	}
	interp, err := services.NewInterpreter(cat.Interpretations(), cfg.Server.DefaultLocale)
	if err != nil {
		return nil, err
	}
	q := services.NewQuestionnaire(bank, services.NewScoringEngine(bank, interp), services.NewFitCombiner(interp),
		services.QuestionnaireOptions{Shuffle: cfg.Questionnaire.Shuffle})

	secret, err := sessionSecret(cfg, log)
	if err != nil {
		return nil, err
	}
	sessions, err := middleware.NewSessions(secret, middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	analyzer, err := newAnalyzer(ctx, cfg, m, log)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	sessionStore := api.NewSessionStore(store, cfg.Session.TTL)
	sessionSvc := services.NewSessionService(sessionStore, q, cat, services.SessionServiceOptions{
		DefaultPositionID:       cfg.Questionnaire.DefaultPosition,
		RequireAnswerBeforeNext: cfg.Questionnaire.RequireAnswerBeforeNext,
		Observer:                m,
		Logger:                  log,
	})
	resultsSvc := services.NewResultsService(sessionStore, sessionSvc, analyzer, cat.Weights(), log)

	a := &app{cfg: cfg, log: log, store: store}
	routerOpts := api.RouterOptions{DefaultLocale: cfg.Server.DefaultLocale, Logger: log}
	if cfg.RateLimit.Enabled {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		routerOpts.RateLimit = a.limiter.Middleware
	}

	a.handler = api.NewHandler(api.ServerOptions{
		Router:         api.NewRouter(sessionSvc, resultsSvc, cat, routerOpts),
		Sessions:       sessions,
		Metrics:        m,
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		DefaultLocale:  cfg.Server.DefaultLocale,
		StaticDir:      strings.TrimSpace(cfg.Server.StaticDir),
		DevFrontendURL: strings.TrimSpace(cfg.Server.DevFrontendURL),
		RequestTimeout: cfg.Server.WriteTimeout,
		Build:          build,
	})
	return a, nil
}

// cleanup drops expired sessions and idle rate-limit entries.
func (a *app) cleanup(ctx context.Context, now time.Time) {
	n, err := a.store.CleanupBefore(ctx, now.Add(-a.cfg.Session.TTL))
	if err != nil {
		a.log.Warn("session cleanup failed", zap.Error(err))
	} else if n > 0 {
		a.log.Info("expired sessions removed", zap.Int("count", n))
	}
	if a.limiter != nil {
		a.limiter.Cleanup(now.Add(-a.cfg.Session.CleanupInterval))
	}
}

func (a *app) Close() error {
	return a.store.Close()
}
