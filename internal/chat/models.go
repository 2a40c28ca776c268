// Package chat runs the recipe chat: per-session transcripts in the document
// store and a bot that answers free-text requests with recipes.
package chat

import (
	"errors"

	"foodhive/internal/docstore"
	"foodhive/internal/recipe"
)

const (
	chatsCollection = "chats"

	DefaultSessionID   = "default"
	DefaultSessionName = "Default"

	UserSender = "user"
	BotSender  = "bot"

	EntryMessage = "message"
	EntryRecipe  = "recipe"

	welcomeText  = "Hi! I'm your recipe bot. Ask me anything!"
	apologyText  = "Sorry, an error occurred fetching recipes."
	noResultText = "I couldn't find recipes for that. Try another query!"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrRecipeNotFound  = errors.New("recipe not found in chat")
	ErrAwaitingReply   = errors.New("chat is waiting for a reply")
	ErrEmptyMessage    = errors.New("message is empty")
)

// Session is one named conversation.
type Session struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// Entry is one item of a transcript: a text message or a recipe card.
type Entry struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	User      string         `json:"user,omitempty"`
	Timestamp int64          `json:"timestamp"`
	Recipe    *recipe.Recipe `json:"recipe,omitempty"`
}

func messagesPath(chatID string) string {
	return docstore.Path(chatsCollection, chatID, "messages")
}

func recipePath(chatID, messageID string) string {
	return docstore.Path(chatsCollection, chatID, "messages", messageID, "recipe")
}

func (e Entry) toDoc() map[string]any {
	if e.Type == EntryRecipe && e.Recipe != nil {
		data := e.Recipe.Fields()
		data["type"] = EntryRecipe
		data["timestamp"] = e.Timestamp
		return data
	}
	return map[string]any{
		"text":      e.Text,
		"user":      e.User,
		"timestamp": e.Timestamp,
	}
}

func entryFromDoc(d docstore.Document) Entry {
	e := Entry{
		ID:        d.ID,
		Type:      docstore.String(d.Data, "type", EntryMessage),
		Timestamp: docstore.Int64(d.Data, "timestamp", 0),
	}
	if e.Type == EntryRecipe {
		r := recipe.FromFields(d.Data)
		e.Recipe = &r
		return e
	}
	e.Text = docstore.String(d.Data, "text", "")
	e.User = docstore.String(d.Data, "user", BotSender)
	return e
}

func sessionFromDoc(d docstore.Document) Session {
	return Session{
		ID:        d.ID,
		Name:      docstore.String(d.Data, "name", "Chat "+d.ID),
		CreatedAt: docstore.Int64(d.Data, "createdAt", d.CreatedAt.UnixMilli()),
	}
}
