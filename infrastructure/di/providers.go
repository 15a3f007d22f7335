package di

import (
	"context"
	"fmt"

	"capsulehub/application/commands"
	"capsulehub/application/commands/bus"
	"capsulehub/application/ports"
	"capsulehub/application/queries"
	querybus "capsulehub/application/queries/bus"
	domainconfig "capsulehub/domain/config"
	"capsulehub/infrastructure/config"
	"capsulehub/infrastructure/messaging"
	"capsulehub/infrastructure/persistence/memory"
	"capsulehub/infrastructure/persistence/sqlite"
	pkgerrors "capsulehub/pkg/errors"

	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideDomainConfig maps the environment configuration onto the domain
// rule set, keeping the domain package free of env concerns.
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	dc := domainconfig.DefaultDomainConfig()
	dc.DefaultTraversalDepth = cfg.DefaultTraversalDepth
	dc.MaxSubgraphNodes = cfg.MaxSubgraphNodes
	dc.ConflictRetryBudget = cfg.ConflictRetryBudget
	dc.ConflictRetryBackoff = cfg.ConflictRetryBackoff
	dc.ScoreCacheTTL = cfg.ScoreCacheTTL
	return dc
}

// Stores bundles every persistence port served by the selected backend
type Stores struct {
	Registry    ports.CapsuleRegistry
	Provenance  ports.ProvenanceStore
	Versions    ports.VersionStore
	Relations   ports.RelationStore
	Citations   ports.CitationLedger
	Validations ports.ValidationLog
}

// ProvideStores opens the configured persistence backend. The returned
// cleanup closes the database handle for the sqlite backend.
func ProvideStores(cfg *config.Config, dc *domainconfig.DomainConfig, logger *zap.Logger) (*Stores, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		store := memory.NewStore()
		return &Stores{
			Registry:    store,
			Provenance:  store,
			Versions:    store,
			Relations:   store,
			Citations:   store,
			Validations: store,
		}, func() {}, nil

	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath, dc.ConflictRetryBudget, dc.ConflictRetryBackoff, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
		return &Stores{
			Registry:    store,
			Provenance:  store,
			Versions:    store,
			Relations:   store,
			Citations:   store,
			Validations: store,
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// ProvideEventPublisher creates the domain event publisher
func ProvideEventPublisher(logger *zap.Logger) ports.EventPublisher {
	return messaging.NewLogPublisher(logger)
}

// ProvideScoreCache creates the in-process score cache. The cleanup
// stops the cache's janitor goroutine.
func ProvideScoreCache() (ports.ScoreCache, func()) {
	cache := NewInMemoryScoreCache()
	return cache, cache.Stop
}

// ProvideErrorHandler creates the HTTP error mapper
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// CommandHandlerAdapter adapts typed command handlers to the bus interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) (interface{}, error)
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with every mutating operation
// registered.
func ProvideCommandBus(
	stores *Stores,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	registerHandler := commands.NewRegisterProvenanceHandler(stores.Registry, stores.Provenance, stores.Versions, publisher, logger)
	commandBus.Register(commands.RegisterProvenanceCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			registerCmd, ok := cmd.(commands.RegisterProvenanceCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return registerHandler.Handle(ctx, registerCmd)
		},
	})

	addVersionHandler := commands.NewAddVersionHandler(stores.Registry, stores.Versions, publisher, logger)
	commandBus.Register(commands.AddVersionCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			versionCmd, ok := cmd.(commands.AddVersionCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return addVersionHandler.Handle(ctx, versionCmd)
		},
	})

	addRelationHandler := commands.NewAddRelationHandler(stores.Registry, stores.Relations, publisher, logger)
	commandBus.Register(commands.AddRelationCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			relationCmd, ok := cmd.(commands.AddRelationCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return addRelationHandler.Handle(ctx, relationCmd)
		},
	})

	citeHandler := commands.NewCiteHandler(stores.Registry, stores.Citations, publisher, logger)
	commandBus.Register(commands.CiteCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			citeCmd, ok := cmd.(commands.CiteCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return citeHandler.Handle(ctx, citeCmd)
		},
	})

	validationHandler := commands.NewRecordValidationHandler(stores.Registry, stores.Validations, publisher, logger)
	commandBus.Register(commands.RecordValidationCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			validationCmd, ok := cmd.(commands.RecordValidationCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return validationHandler.Handle(ctx, validationCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts typed query handlers to the bus interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with every read operation registered
func ProvideQueryBus(
	stores *Stores,
	scoreCache ports.ScoreCache,
	dc *domainconfig.DomainConfig,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	historyHandler := queries.NewGetVersionHistoryHandler(stores.Registry, stores.Versions)
	queryBus.Register(queries.GetVersionHistoryQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			historyQuery, ok := query.(queries.GetVersionHistoryQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return historyHandler.Handle(ctx, historyQuery)
		},
	})

	evolutionHandler := queries.NewGetEvolutionHandler(stores.Registry, stores.Relations, dc.MaxSubgraphNodes)
	queryBus.Register(queries.GetEvolutionQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			evolutionQuery, ok := query.(queries.GetEvolutionQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return evolutionHandler.Handle(ctx, evolutionQuery)
		},
	})

	citationHandler := queries.NewGetCitationCountHandler(stores.Registry, stores.Citations)
	queryBus.Register(queries.GetCitationCountQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			citationQuery, ok := query.(queries.GetCitationCountQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return citationHandler.Handle(ctx, citationQuery)
		},
	})

	validationsHandler := queries.NewListValidationsHandler(stores.Registry, stores.Validations)
	queryBus.Register(queries.ListValidationsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			validationsQuery, ok := query.(queries.ListValidationsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return validationsHandler.Handle(ctx, validationsQuery)
		},
	})

	bundleHandler := queries.NewGetProvenanceBundleHandler(
		stores.Registry,
		stores.Provenance,
		stores.Versions,
		stores.Relations,
		stores.Citations,
		stores.Validations,
		scoreCache,
		int(dc.ScoreCacheTTL.Seconds()),
	)
	queryBus.Register(queries.GetProvenanceBundleQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			bundleQuery, ok := query.(queries.GetProvenanceBundleQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return bundleHandler.Handle(ctx, bundleQuery)
		},
	})

	overviewHandler := queries.NewGraphOverviewHandler(stores.Relations, stores.Citations, stores.Validations)
	queryBus.Register(queries.GraphOverviewQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			overviewQuery, ok := query.(queries.GraphOverviewQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return overviewHandler.Handle(ctx, overviewQuery)
		},
	})

	fullGraphHandler := queries.NewFullGraphHandler(stores.Relations)
	queryBus.Register(queries.FullGraphQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			fullQuery, ok := query.(queries.FullGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return fullGraphHandler.Handle(ctx, fullQuery)
		},
	})

	return queryBus
}
