package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"post-manager/domain/repository"
	"post-manager/infrastructure/cache"
	"post-manager/infrastructure/clients/linkedin"
	"post-manager/infrastructure/configuration"
	"post-manager/infrastructure/logger"
	"post-manager/infrastructure/persistence"
	"post-manager/infrastructure/realtime"
	httpHandler "post-manager/interfaces/http"
	"post-manager/server"
	"post-manager/usecase"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	loaded := configuration.LoadEnvFromFile("config.env", ".env")
	logger.GetLogger().WithField("files", loaded).Info("Environment files loaded")

	cfg, err := configuration.LoadConfig()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot load configuration")
		os.Exit(1)
	}
	logger.Configure(cfg.Logger.Format, cfg.Logger.Level)

	kv, closeStore := InitiateStore(ctx, cfg)
	defer closeStore()

	clock := clockwork.NewRealClock()
	li := cfg.LinkedIn
	oauthConfig := linkedin.NewOAuth2Config(li.ClientID, li.ClientSecret, li.RedirectURI, li.AuthEndpoint, li.TokenEndpoint, li.Scopes())

	var exchanger repository.ITokenExchanger
	switch li.ExchangeMode {
	case "backend":
		exchanger = linkedin.NewBackendExchanger(li.ExchangeURL, cfg.Cascade.AttemptTimeout)
	case "oauth2":
		exchanger = linkedin.NewOAuth2Exchanger(oauthConfig, clock)
	default:
		exchanger = linkedin.NewSimulatedExchanger(clock)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"exchangeMode": li.ExchangeMode,
		"redirectUri":  li.RedirectURI,
		"apiBaseUrl":   li.BaseURL(),
		"liveWrites":   li.LiveWrites,
	}).Info("LinkedIn configuration loaded")

	tokenStore := persistence.NewTokenStore(kv, cfg.Store.KeyPrefix)
	sessionManager := usecase.NewSessionManager(tokenStore, exchanger, oauthConfig, clock, usecase.SessionOptions{
		ManualTokenTTL: cfg.Session.ManualTokenTTL,
		DefaultExpiry:  cfg.Session.DefaultExpiry,
	})

	sessionHub := realtime.NewSessionHub()
	unsubscribe := sessionManager.Subscribe(sessionHub.Broadcast)
	defer unsubscribe()

	client := linkedin.NewClient(linkedin.Options{
		BaseURL:           li.BaseURL(),
		Timeout:           cfg.Cascade.AttemptTimeout,
		RequestsPerMinute: cfg.Cascade.RequestsPerMinute,
		Burst:             cfg.Cascade.Burst,
	})
	postUsecase := usecase.NewPostUsecase(
		sessionManager,
		client,
		linkedin.NewCatalog(cfg.Cascade.PostPriority, cfg.Cascade.ScheduledPriority),
		usecase.NewEndpointCascade(client, cfg.Cascade.AttemptTimeout),
		usecase.NewResponseNormalizer(clock, li.PreferredLocale),
		usecase.NewSimulation(clock, cfg.Simulation.Delay),
		clock,
		li.LiveWrites,
	)

	router := server.InitiateRouter(
		httpHandler.NewAuthHandler(sessionManager, sessionHub, cfg.App.SecretKey),
		httpHandler.NewPostHandler(postUsecase),
		httpHandler.NewHealthHandler(sessionManager),
		cfg.App.SecretKey,
		cfg.Cors.AllowOrigins,
	)

	// Pick up logins and logouts written to a shared store by other instances.
	g.Go(func() error {
		ticker := clock.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.Chan():
				sessionManager.Refresh(ctx)
			}
		}
	})

	app := cfg.App
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	httpServer := newHTTPServer(app, router)
	g.Go(func() error {
		return serveHTTP(httpServer, app)
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func newHTTPServer(app configuration.App, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serveHTTP blocks until srv is shut down. A clean shutdown returns nil.
func serveHTTP(srv *http.Server, app configuration.App) error {
	var err error
	switch {
	case app.TLSEnabled && (app.TLSCertFile == "" || app.TLSKeyFile == ""):
		logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
		err = srv.ListenAndServe()
	case app.TLSEnabled:
		logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
		err = srv.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
	default:
		err = srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// InitiateStore opens the configured session store. Any failure falls back to
// the in-memory store so the service still starts.
func InitiateStore(ctx context.Context, cfg *configuration.Config) (repository.IKeyValueStore, func()) {
	noop := func() {}
	lg := logger.GetLogger().WithField("driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case "disk":
		store, err := persistence.NewDiskStore(cfg.Store.DiskPath)
		if err != nil {
			lg.WithField("error", err).Error("Cannot open disk store, using memory")
			break
		}
		lg.WithField("path", cfg.Store.DiskPath).Info("Session store ready")
		return store, noop
	case "redis":
		rc := cfg.RedisClient
		client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, rc.DB)
		if err != nil {
			lg.WithField("error", err).Error("Cannot connect to Redis, using memory")
			break
		}
		lg.Info("Session store ready")
		return cache.NewRedisStore(client), func() { _ = client.Close() }
	case "postgres":
		db, err := persistence.NewPostgreSQLDB(cfg.Database.Psql)
		if err == nil {
			err = persistence.EnsureSessionStateSchema(db)
		}
		if err != nil {
			lg.WithField("error", err).Error("Cannot use PostgreSQL, using memory")
			closeDB(db)
			break
		}
		lg.Info("Session store ready")
		return persistence.NewSessionStateRepository(db), func() { closeDB(db) }
	case "mssql":
		db, err := persistence.NewMSSQLDB(cfg.Database.Mssql)
		if err == nil {
			err = persistence.EnsureSessionStateSchemaMSSQL(db)
		}
		if err != nil {
			lg.WithField("error", err).Error("Cannot use MSSQL, using memory")
			closeDB(db)
			break
		}
		lg.Info("Session store ready")
		return persistence.NewSessionStateRepositoryMSSQL(db), func() { closeDB(db) }
	case "", "memory":
	default:
		lg.Warn("Unknown store driver, using memory")
	}
	return persistence.NewMemoryStore(), noop
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}
