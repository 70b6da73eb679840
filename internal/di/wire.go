//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"linkspace/config"
	"linkspace/internal/api"
	"linkspace/internal/cache"
	"linkspace/internal/database"
)

// InitializeApp assembles the HTTP server from the externally constructed
// config, database and cache handles.
func InitializeApp(cfg *config.Config, db *database.Database, counters *cache.RedisCache) *api.Server {
	wire.Build(AppSet)
	return &api.Server{}
}
