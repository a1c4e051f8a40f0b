package app

import (
	"context"
	"time"

	"sharelink-service/internal/config"
	"sharelink-service/internal/http"
	"sharelink-service/internal/infra/cache"
	"sharelink-service/internal/repository/postgres"

	"github.com/rs/zerolog"
)

const (
	serverAddrPrefix = ":"
	cacheSweepPeriod = 5 * time.Minute
)

// Service is the assembled shared-link backend: configuration, database,
// caches, and the HTTP server.
type Service struct {
	config    *config.Config
	log       zerolog.Logger
	db        *postgres.DB
	cache     *cache.MetadataCache
	server    *http.Server
	sweepStop chan struct{}
}

// NewService creates and initializes a new Service instance.
// This is a convenience wrapper around InitializeService.
func NewService() (*Service, error) {
	return InitializeService()
}

// Config exposes the loaded configuration, mainly for shutdown timeouts.
func (s *Service) Config() *config.Config {
	return s.config
}

// Start starts the service and all background tasks. It blocks until the
// HTTP server stops.
func (s *Service) Start() error {
	go s.startCacheSweep()

	s.log.Info().Str("port", s.config.Server.Port).Msg("starting shared-link service")
	return s.server.Start(serverAddrPrefix + s.config.Server.Port)
}

// startCacheSweep periodically drops expired metadata cache entries
// until Shutdown signals it to stop.
func (s *Service) startCacheSweep() {
	ticker := time.NewTicker(cacheSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cache.Clear()
		case <-s.sweepStop:
			return
		}
	}
}

// Shutdown gracefully shuts down the service and its background tasks.
func (s *Service) Shutdown(ctx context.Context) error {
	defer s.db.Close()
	close(s.sweepStop)
	return s.server.Shutdown(ctx)
}
