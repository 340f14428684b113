// Package api implements the VegaDeck HTTP API.
//
// The API exposes the normalizer pipeline and the saved-spec store over
// a small JSON surface:
//
//	POST   /v1/normalize            run the pipeline on the request body
//	POST   /v1/specs                save a raw specification
//	GET    /v1/specs                list saved specifications
//	GET    /v1/specs/{id}           fetch one saved specification
//	DELETE /v1/specs/{id}           delete one saved specification
//	POST   /v1/specs/{id}/normalize normalize a saved specification
//	GET    /healthz                 liveness probe
//
// Specification problems never produce a non-2xx status: the pipeline
// reports them through the error field of a 200 response. Non-2xx
// statuses are reserved for transport problems (unreadable bodies,
// missing resources, oversized payloads).
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/config"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/loaders/elasticsearch"
	"github.com/matzehuels/vegadeck/pkg/loaders/emsfile"
	"github.com/matzehuels/vegadeck/pkg/loaders/urlfetch"
	"github.com/matzehuels/vegadeck/pkg/store"
	"github.com/matzehuels/vegadeck/pkg/vegalite"
)

// Server holds the assembled API dependencies and serves the router.
type Server struct {
	cfg      config.Config
	logger   *log.Logger
	cache    cache.Cache
	store    store.Store
	loaders  *loaders.Registry
	compiler vegalite.Compiler
}

// New assembles a server from configuration: the cache and store
// backends, the url loader registry and the vega-lite compiler. The
// context bounds backend connection attempts (mongo ping).
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	backend, err := buildCache(&cfg.Cache)
	if err != nil {
		return nil, err
	}

	st, err := buildStore(ctx, &cfg.Store)
	if err != nil {
		backend.Close()
		return nil, err
	}

	registry, err := buildRegistry(&cfg.Loaders, backend)
	if err != nil {
		backend.Close()
		st.Close(ctx)
		return nil, err
	}

	return &Server{
		cfg:      *cfg,
		logger:   logger,
		cache:    backend,
		store:    st,
		loaders:  registry,
		compiler: vegalite.NewExecCompiler(cfg.Compiler.Command),
	}, nil
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/normalize", s.handleNormalize)

		r.Route("/specs", func(r chi.Router) {
			r.Post("/", s.handleCreateSpec)
			r.Get("/", s.handleListSpecs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSpec)
				r.Delete("/", s.handleDeleteSpec)
				r.Post("/normalize", s.handleNormalizeSpec)
			})
		})
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      s.cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout.Std())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if closeErr := s.Close(shutdownCtx); err == nil {
		err = closeErr
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close releases the cache and store backends.
func (s *Server) Close(ctx context.Context) error {
	err := s.cache.Close()
	if storeErr := s.store.Close(ctx); err == nil {
		err = storeErr
	}
	return err
}

// =============================================================================
// Backend Assembly
// =============================================================================

func buildCache(cfg *config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return nil, errors.New("unknown cache backend: " + cfg.Backend)
}

func buildStore(ctx context.Context, cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	}
	return nil, errors.New("unknown store backend: " + cfg.Backend)
}

func buildRegistry(cfg *config.LoadersConfig, backend cache.Cache) (*loaders.Registry, error) {
	registry := loaders.NewRegistry()
	if err := registry.Register(elasticsearch.New(cfg.Elasticsearch, backend)); err != nil {
		return nil, err
	}
	if err := registry.Register(emsfile.New(cfg.EMSManifest, backend)); err != nil {
		return nil, err
	}
	if cfg.AllowURLs {
		if err := registry.Register(urlfetch.New(backend)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
