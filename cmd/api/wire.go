package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"catalogstudio/internal/adapter/repo"
	"catalogstudio/internal/catalog"
	"catalogstudio/internal/corpus"
	"catalogstudio/internal/domain"
	"catalogstudio/internal/enhancement"
	"catalogstudio/internal/fields"
	"catalogstudio/internal/history"
	"catalogstudio/internal/http/handlers"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/infra/credentials"
	"catalogstudio/internal/media"
	"catalogstudio/internal/observability"
	"catalogstudio/internal/products"
	"catalogstudio/internal/prompts"
	"catalogstudio/internal/providers/llm"
	"catalogstudio/internal/requestlog"
	"catalogstudio/internal/storage"
	"catalogstudio/internal/validation"
)

const (
	sessionIdleTTL    = 2 * time.Hour
	sessionSweepSpec  = "@every 10m"
	logRetentionSpec  = "@daily"
	credentialTimeout = 5 * time.Second
)

// backend is the document store plus the optional postgres pool behind it.
type backend struct {
	store domain.BlobStore
	pool  *pgxpool.Pool
	creds *credentials.Store
}

func (b *backend) close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

func openBackend(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*backend, error) {
	switch cfg.StoreBackend {
	case infra.StoreBackendMemory:
		return &backend{store: storage.NewMemoryStore()}, nil
	case infra.StoreBackendFile:
		fs, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return &backend{store: fs}, nil
	case infra.StoreBackendPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner := infra.NewSQLRunner(pool, logger)
		docs := repo.NewDocumentRepository(runner)
		if err := docs.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		creds := credentials.NewStore(runner)
		if err := creds.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{store: docs, pool: pool, creds: creds}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// services is everything the API and the maintenance jobs share.
type services struct {
	app      *handlers.App
	sessions *enhancement.MemoryStore
	logs     *requestlog.Logger
	redis    *redis.Client
}

func (s *services) close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

func buildServices(ctx context.Context, cfg *infra.Config, b *backend, metrics *observability.Metrics, logger infra.Logger) (*services, error) {
	cat := catalog.Empty()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	templates := prompts.MustDefault()
	if cfg.PromptsPath != "" {
		loaded, err := prompts.Load(cfg.PromptsPath)
		if err != nil {
			return nil, err
		}
		templates = loaded
	}

	regOpts := []fields.Option{fields.WithLogger(logger)}
	if cfg.FieldsPath != "" {
		path := cfg.FieldsPath
		regOpts = append(regOpts, fields.WithSeed(func() ([]domain.FieldConfig, error) {
			return fields.LoadFile(path)
		}))
	}
	registry := fields.NewRegistry(b.store, regOpts...)

	gold := corpus.NewGoldstandard(b.store)
	claims := corpus.NewClaims(b.store)
	ledger := history.NewLedger(b.store)
	logs := requestlog.New(b.store, requestlog.Options{Logger: &logger})
	prods, err := products.New(b.store, cat, products.Options{Goldstandard: gold, Logger: &logger})
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewCompleter(providerSettings(ctx, cfg, b, logger))
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.PromptProvider).Msg("language model unavailable, using static completer")
		completer = llm.NewStaticCompleter()
	}
	client := llm.NewClient(llm.ClientOptions{Completer: completer, Timeout: cfg.LLMTimeout, Metrics: metrics, Logger: &logger})

	analyzer := media.NewAnalyzer(media.Options{ProbeTimeout: cfg.MediaProbeTimeout, Logger: &logger})
	engine := validation.NewEngine(validation.Options{
		Analyzer:     analyzer,
		Judge:        client,
		Goldstandard: gold,
		Recorder:     logs,
		Templates:    templates,
		Metrics:      metrics,
		Logger:       &logger,
	})
	service := enhancement.NewService(enhancement.ServiceOptions{
		Generator:    client,
		Goldstandard: gold,
		Claims:       claims,
		History:      ledger,
		Recorder:     logs,
		Templates:    templates,
		Logger:       &logger,
	})

	svc := &services{sessions: enhancement.NewMemoryStore(), logs: logs}
	var guard enhancement.Guard
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		svc.redis = redis.NewClient(opt)
		guard = enhancement.NewRedisGuard(svc.redis, enhancement.DefaultGuardTTL)
	}
	wizard := enhancement.NewWizard(enhancement.WizardOptions{
		Service:      service,
		Validator:    engine,
		Fields:       registry,
		Products:     prods,
		Goldstandard: gold,
		Sessions:     svc.sessions,
		Guard:        guard,
		Metrics:      metrics,
		Logger:       &logger,
	})

	svc.app = &handlers.App{
		Fields:       registry,
		Products:     prods,
		Validator:    engine,
		Wizard:       wizard,
		Goldstandard: gold,
		Claims:       claims,
		History:      ledger,
		Logs:         logs,
		Logger:       logger,
	}
	return svc, nil
}

// providerSettings fills API keys missing from the environment with the
// ones stored in postgres.
func providerSettings(ctx context.Context, cfg *infra.Config, b *backend, logger infra.Logger) llm.Settings {
	s := llm.Settings{
		Provider:           cfg.PromptProvider,
		FallbackProvider:   cfg.FallbackProvider,
		OpenAIAPIKey:       cfg.OpenAIAPIKey,
		OpenAIModel:        cfg.OpenAIModel,
		OpenAIBaseURL:      cfg.OpenAIBaseURL,
		OpenAIOrganization: cfg.OpenAIOrg,
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
		GeminiBaseURL:      cfg.GeminiBaseURL,
		HTTPClient:         &http.Client{Timeout: cfg.LLMTimeout},
		Logger:             &logger,
	}
	if b.creds == nil {
		return s
	}
	ctx, cancel := context.WithTimeout(ctx, credentialTimeout)
	defer cancel()
	for provider, dst := range map[string]*string{
		credentials.ProviderOpenAI: &s.OpenAIAPIKey,
		credentials.ProviderGemini: &s.GeminiAPIKey,
	} {
		if strings.TrimSpace(*dst) != "" {
			continue
		}
		key, err := b.creds.APIKey(ctx, provider)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("stored api key unavailable")
			continue
		}
		*dst = key
	}
	return s
}

// newMaintenance schedules the idle session sweep and, when configured,
// request log retention.
func newMaintenance(cfg *infra.Config, svc *services, logger infra.Logger) *cron.Cron {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))
	_, _ = c.AddFunc(sessionSweepSpec, func() {
		if n := svc.sessions.Sweep(time.Now().Add(-sessionIdleTTL)); n > 0 {
			logger.Info().Int("removed", n).Msg("maintenance: swept idle sessions")
		}
	})
	if days := cfg.RequestLogRetentionDays; days > 0 {
		_, _ = c.AddFunc(logRetentionSpec, func() {
			cutoff := time.Now().AddDate(0, 0, -days)
			n, err := svc.logs.Prune(context.Background(), cutoff)
			if err != nil {
				logger.Error().Err(err).Msg("maintenance: prune request logs")
				return
			}
			logger.Info().Int("removed", n).Time("cutoff", cutoff).Msg("maintenance: pruned request logs")
		})
	}
	return c
}
