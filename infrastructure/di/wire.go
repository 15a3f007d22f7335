//go:build wireinject
// +build wireinject

package di

import (
	"capsulehub/infrastructure/config"

	"github.com/google/wire"
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
