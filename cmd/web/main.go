package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/config"
	"github.com/maber00/pixelabril/internal/detect"
	"github.com/maber00/pixelabril/internal/geo"
	"github.com/maber00/pixelabril/internal/handlers"
	"github.com/maber00/pixelabril/internal/i18n"
	"github.com/maber00/pixelabril/internal/inquiry"
	"github.com/maber00/pixelabril/internal/lang"
	mw "github.com/maber00/pixelabril/internal/middleware"
	"github.com/maber00/pixelabril/internal/observability"
	"github.com/maber00/pixelabril/internal/preference"
)

// app holds the wired dependencies shared by the HTTP handlers.
type app struct {
	logger       *zap.Logger
	publicDir    string
	maxRedirects int

	bundle    *i18n.Bundle
	catalog   *catalog.Catalog
	pages     *handlers.Pages
	renderer  *renderer
	inquiries *inquiry.Service
	prefs     preference.Provider
	detector  *detect.Detector
}

func main() {
	envFile := flag.String("env", ".env", "dotenv file with local overrides")
	flag.Parse()

	cfg, err := config.Load(config.WithEnvFile(*envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")

	site, err := config.LoadSite(cfg.Paths.SiteFile)
	if err != nil {
		logger.Fatal("failed to load site configuration", zap.Error(err))
	}

	bundle, err := i18n.Load(cfg.Paths.Locales, lang.Default, logger.Named("i18n"))
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}
	logger.Info("translations loaded", zap.Any("languages", bundle.Loaded()))

	cat := catalog.New(site, bundle)
	rend, err := newRenderer(cfg.Paths.Templates, cfg.Server.DevMode, bundle, cat)
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	storeOpts := []preference.Option{
		preference.WithLocation(cfg.Language.Location),
		preference.WithLogger(logger.Named("preference")),
	}
	prefs, closePrefs := newPreferenceProvider(cfg, storeOpts, logger)
	defer closePrefs()

	resolver := geo.NewResolver(cfg.Geo.Endpoint, cfg.Geo.APIKey, cfg.Geo.Timeout)
	if cfg.Geo.APIKey == "" {
		logger.Warn("geo lookup disabled; falling back to browser locale")
	} else {
		logger.Info("geo lookup enabled", zap.Duration("timeout", resolver.Timeout()))
	}
	classifier := geo.NewClassifier(site.CountryGroups.Spanish, site.CountryGroups.Chinese)

	relay := inquiry.NewFormspreeRelay(site.Formspree.Endpoints, cfg.Inquiry.RelayTimeout)

	a := &app{
		logger:       logger,
		publicDir:    cfg.Paths.Public,
		maxRedirects: cfg.Language.MaxRedirects,
		bundle:       bundle,
		catalog:      cat,
		pages:        handlers.NewPages(site, cat, bundle),
		renderer:     rend,
		inquiries: inquiry.NewService(relay, bundle, site,
			inquiry.WithLocation(cfg.Language.Location),
			inquiry.WithLogger(logger.Named("inquiry")),
		),
		prefs:    prefs,
		detector: detect.New(resolver, classifier, logger.Named("detect")),
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("pixel living web listening",
			zap.String("env", cfg.Server.Environment),
			zap.Bool("devMode", cfg.Server.DevMode),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newPreferenceProvider keeps language records in Redis when configured and
// reachable, and in cookies otherwise.
func newPreferenceProvider(cfg config.Config, storeOpts []preference.Option, logger *zap.Logger) (preference.Provider, func()) {
	cookie := preference.CookieOptions{Path: "/", TTL: cfg.Preference.TTL, Secure: cfg.Secure()}
	fallback := preference.CookieProvider{Cookie: cookie, StoreOptions: storeOpts}
	if !cfg.UseRedis() {
		return fallback, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Preference.RedisAddr,
		Password: cfg.Preference.RedisPassword,
		DB:       cfg.Preference.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable; storing preferences in cookies",
			zap.String("addr", cfg.Preference.RedisAddr),
			zap.Error(err),
		)
		_ = client.Close()
		return fallback, func() {}
	}
	logger.Info("storing preferences in redis", zap.String("addr", cfg.Preference.RedisAddr))
	return preference.RedisProvider{
			Client:       client,
			Prefix:       cfg.Preference.RedisPrefix,
			TTL:          cfg.Preference.TTL,
			Cookie:       preference.CookieOptions{Path: "/", TTL: cfg.Preference.VisitorTTL, Secure: cfg.Secure()},
			StoreOptions: storeOpts,
		}, func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}
}

// routes builds the router. Page routes sit behind the language middleware;
// API and asset routes do not.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	// "/en/" and "/zh/" would otherwise miss the language routes.
	r.Use(chimw.RedirectSlashes)
	r.Use(mw.RequestLogger(a.logger.Named("http")))
	r.Use(mw.Recovery)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(a.publicDir, "assets"), "/assets"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/language", a.getLanguage)
		r.Post("/language", a.setLanguage)
		r.Delete("/language", a.clearLanguage)
		r.Post("/inquiries", a.createInquiry)
		r.Get("/studios/{id}/gallery", a.studioGallery)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Language(mw.LanguageOptions{
			Detector:     a.detector,
			Preferences:  a.prefs,
			MaxRedirects: a.maxRedirects,
		}))
		r.Get("/", a.home)
		r.Get("/estudios/{id}", a.studio)
		for _, l := range lang.Supported {
			if p := l.Prefix(); p != "" {
				r.Get(p, a.home)
				r.Get(p+"/estudios/{id}", a.studio)
			}
		}
	})
	r.NotFound(a.notFound)
	return r
}
