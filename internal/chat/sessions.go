package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"foodhive/internal/docstore"
)

// Sessions lists the user's chats, oldest first. A user without chats gets
// the default session.
func (o *Orchestrator) Sessions(ctx context.Context, userID string) ([]Session, error) {
	docs, err := o.store.List(ctx, userID, chatsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	if len(docs) == 0 {
		s, err := o.createDefault(ctx, userID)
		if err != nil {
			return nil, err
		}
		return []Session{s}, nil
	}

	sessions := make([]Session, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, sessionFromDoc(d))
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt < sessions[j].CreatedAt
	})
	return sessions, nil
}

// CreateSession starts a new chat named after its short id.
func (o *Orchestrator) CreateSession(ctx context.Context, userID string) (Session, error) {
	id := uuid.NewString()[:6]
	s := Session{ID: id, Name: "Chat " + id, CreatedAt: o.now().UnixMilli()}
	if err := o.saveSession(ctx, userID, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// RenameSession changes the display name of a chat.
func (o *Orchestrator) RenameSession(ctx context.Context, userID, chatID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("chat name is empty")
	}
	err := o.store.Update(ctx, userID, chatsCollection, chatID, map[string]any{"name": name})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to rename chat: %w", err)
	}
	return nil
}

// DeleteSession removes a chat and its whole transcript.
func (o *Orchestrator) DeleteSession(ctx context.Context, userID, chatID string) error {
	if err := o.store.DeleteCollection(ctx, userID, docstore.Path(chatsCollection, chatID)); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if err := o.store.Delete(ctx, userID, chatsCollection, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// EnsureWelcome greets the user in an empty chat and returns the transcript.
func (o *Orchestrator) EnsureWelcome(ctx context.Context, userID, chatID string) ([]Entry, error) {
	if err := o.ensureSession(ctx, userID, chatID); err != nil {
		return nil, err
	}
	entries, err := o.Transcript(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}

	welcome, err := o.appendMessage(ctx, userID, chatID, BotSender, welcomeText)
	if err != nil {
		return nil, err
	}
	return []Entry{welcome}, nil
}

// ensureSession checks that the chat exists. The default chat is created on
// demand.
func (o *Orchestrator) ensureSession(ctx context.Context, userID, chatID string) error {
	_, err := o.store.Get(ctx, userID, chatsCollection, chatID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to get chat: %w", err)
	}
	if chatID != DefaultSessionID {
		return ErrSessionNotFound
	}
	_, err = o.createDefault(ctx, userID)
	return err
}

func (o *Orchestrator) createDefault(ctx context.Context, userID string) (Session, error) {
	s := Session{ID: DefaultSessionID, Name: DefaultSessionName, CreatedAt: o.now().UnixMilli()}
	if err := o.saveSession(ctx, userID, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (o *Orchestrator) saveSession(ctx context.Context, userID string, s Session) error {
	err := o.store.Set(ctx, userID, chatsCollection, s.ID, map[string]any{
		"name":      s.Name,
		"createdAt": s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}
	return nil
}
