package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"foodhive/internal/chat"
)

type renameChatRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

func writeChatError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "chat not found")
	case errors.Is(err, chat.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "recipe not found in this chat")
	case errors.Is(err, chat.ErrAwaitingReply):
		writeError(w, http.StatusConflict, "still looking for recipes, please wait")
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message is empty")
	default:
		internalError(w, msg, err)
	}
}

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions, err := s.deps.Chat.Sessions(ctx, UserID(ctx))
	if err != nil {
		writeChatError(w, "failed to load chats", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) createChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := s.deps.Chat.CreateSession(ctx, UserID(ctx))
	if err != nil {
		writeChatError(w, "failed to create chat", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) renameChat(w http.ResponseWriter, r *http.Request) {
	var req renameChatRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	if err := s.deps.Chat.RenameSession(ctx, UserID(ctx), chi.URLParam(r, "id"), req.Name); err != nil {
		writeChatError(w, "failed to rename chat", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.deps.Chat.DeleteSession(ctx, UserID(ctx), chi.URLParam(r, "id")); err != nil {
		writeChatError(w, "failed to delete chat", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := s.deps.Chat.EnsureWelcome(ctx, UserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeChatError(w, "failed to load messages", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	entries, err := s.deps.Chat.Send(ctx, UserID(ctx), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeChatError(w, "failed to send message", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func recipeParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "recipeId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return 0, false
	}
	return id, true
}

func (s *Server) addMissingIngredients(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := recipeParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	reply, err := s.deps.Chat.AddMissingIngredients(ctx, UserID(ctx), chi.URLParam(r, "id"), recipeID)
	if err != nil {
		writeChatError(w, "failed to add missing ingredients", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := recipeParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	reply, err := s.deps.Chat.AddToFavorites(ctx, UserID(ctx), chi.URLParam(r, "id"), recipeID)
	if err != nil {
		writeChatError(w, "failed to save favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
