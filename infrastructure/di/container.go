package di

import (
	"capsulehub/application/commands/bus"
	"capsulehub/application/ports"
	querybus "capsulehub/application/queries/bus"
	domainconfig "capsulehub/domain/config"
	"capsulehub/infrastructure/config"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Stores       *Stores
	ScoreCache   ports.ScoreCache
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	ErrorHandler *pkgerrors.ErrorHandler
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideStores,
	ProvideEventPublisher,
	ProvideScoreCache,
	ProvideErrorHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)
