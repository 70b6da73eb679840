package conversation

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"linkspace/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.AddFriend(r.Context(), userID, req.InviteCode)
	switch {
	case errors.Is(err, ErrInviteCodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSelfInvite), errors.Is(err, ErrAlreadyConnected):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Printf("conversation: add friend: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add friend")
	default:
		writeJSON(w, http.StatusCreated, view)
	}
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.CreateGroup(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.JoinGroup(r.Context(), userID, req.InviteCode)
	switch {
	case errors.Is(err, ErrInviteCodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyConnected):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Printf("conversation: join group: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to join group")
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	views, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Printf("conversation: list: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversations")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	conversationID := mux.Vars(r)["id"]

	messages, err := h.service.History(r.Context(), userID, conversationID)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotAParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case err != nil:
		log.Printf("conversation: history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load messages")
	default:
		writeJSON(w, http.StatusOK, messages)
	}
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	conversationID := mux.Vars(r)["id"]

	err := h.service.MarkRead(r.Context(), userID, conversationID)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotAParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case err != nil:
		log.Printf("conversation: mark read: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to mark as read")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("conversation: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
