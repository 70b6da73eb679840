package di

import (
	"github.com/google/wire"

	"linkspace/config"
	"linkspace/internal/api"
	"linkspace/internal/auth"
	"linkspace/internal/cache"
	"linkspace/internal/chat"
	"linkspace/internal/conversation"
	"linkspace/internal/presence"
	"linkspace/internal/ws"
	"linkspace/pkg/jwt"
)

var AppSet = wire.NewSet(
	ProvideJWT,
	presence.NewRegistry,
	chat.NewRepository,
	wire.Bind(new(chat.MessageStore), new(*chat.Repository)),
	wire.Bind(new(chat.UnreadStore), new(*cache.RedisCache)),
	ProvideUnreadCoordinator,
	ProvideRouter,
	ws.NewGateway,
	auth.NewService,
	auth.NewHandler,
	conversation.NewService,
	conversation.NewHandler,
	ProvideServer,
)

func ProvideJWT(cfg *config.Config) *jwt.JWT {
	return jwt.NewJWT(cfg.JWTSecret, cfg.JWTExpireSeconds)
}

func ProvideUnreadCoordinator(store chat.UnreadStore, registry *presence.Registry, cfg *config.Config) *chat.UnreadCoordinator {
	return chat.NewUnreadCoordinator(store, registry, cfg.PersistTimeout)
}

func ProvideRouter(store chat.MessageStore, registry *presence.Registry, unread *chat.UnreadCoordinator, cfg *config.Config) *chat.Router {
	return chat.NewRouter(store, registry, unread, cfg.PersistTimeout)
}

func ProvideServer(
	cfg *config.Config,
	tokens *jwt.JWT,
	authHandler *auth.Handler,
	conversationHandler *conversation.Handler,
	gateway *ws.Gateway,
) *api.Server {
	return api.NewServer(tokens, authHandler, conversationHandler, gateway, cfg.RateLimitRPS)
}
