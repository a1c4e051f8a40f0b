package app

import (
	"fmt"

	"sharelink-service/internal/audit"
	"sharelink-service/internal/auth"
	"sharelink-service/internal/config"
	"sharelink-service/internal/http"
	"sharelink-service/internal/infra/cache"
	"sharelink-service/internal/quota"
	"sharelink-service/internal/repository/postgres"
	"sharelink-service/internal/sharing"
	"sharelink-service/pkg/logger"
)

// InitializeService wires up all dependencies and returns a configured Service.
func InitializeService() (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	linkRepo := postgres.NewLinkRepository(db)
	quotaRepo := postgres.NewQuotaRepository(db)
	policyStore := postgres.NewPolicyStore(db)
	memberDirectory := postgres.NewMemberDirectory(db)
	namespace := postgres.NewNamespace(db)

	metadataCache := cache.NewMetadataCache(cfg.Sharing.MetadataCacheTTL)
	auditLogger := audit.NewLogger(db.Pool, log)

	enumerator := sharing.NewEnumerator(linkRepo, namespace, cfg.Sharing.PageSize)
	sharingService := sharing.NewService(
		linkRepo, policyStore, namespace, enumerator,
		metadataCache, auditLogger, log, cfg.Sharing.LinkBaseURL,
	)
	quotaService := quota.NewService(quotaRepo, memberDirectory, auditLogger)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)
	authMiddleware := auth.NewMiddleware(jwtService)

	server := http.NewServer(&http.ServerDependencies{
		Config:         cfg,
		SharingService: sharingService,
		QuotaService:   quotaService,
		AuthMiddleware: authMiddleware,
	})

	return &Service{
		config:    cfg,
		log:       log,
		db:        db,
		cache:     metadataCache,
		server:    server,
		sweepStop: make(chan struct{}),
	}, nil
}
