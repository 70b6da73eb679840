package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"linkspace/internal/auth"
	"linkspace/internal/conversation"
	"linkspace/internal/ws"
	"linkspace/pkg/jwt"
)

type Server struct {
	router *mux.Router
}

func NewServer(
	tokens *jwt.JWT,
	authHandler *auth.Handler,
	conversationHandler *conversation.Handler,
	gateway *ws.Gateway,
	rateLimitRPS int,
) *Server {
	router := mux.NewRouter()
	router.Use(Logger)
	router.Use(CORS)
	router.Use(RateLimitMiddleware(rateLimitRPS))

	server := &Server{router: router}
	server.setupRoutes(tokens, authHandler, conversationHandler, gateway)
	return server
}

func (s *Server) setupRoutes(
	tokens *jwt.JWT,
	authHandler *auth.Handler,
	conversationHandler *conversation.Handler,
	gateway *ws.Gateway,
) {
	s.router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", gateway.HandleWebSocket)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.Middleware(tokens))
	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/friends/add", conversationHandler.AddFriend).Methods(http.MethodPost)
	protected.HandleFunc("/groups/create", conversationHandler.CreateGroup).Methods(http.MethodPost)
	protected.HandleFunc("/groups/join", conversationHandler.JoinGroup).Methods(http.MethodPost)
	protected.HandleFunc("/conversations", conversationHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/conversations/{id}/messages", conversationHandler.History).Methods(http.MethodGet)
	protected.HandleFunc("/conversations/{id}/read", conversationHandler.MarkRead).Methods(http.MethodPost)
}

// Handler exposes the assembled routes so the caller owns the http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
