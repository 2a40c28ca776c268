// Package telegram is the chat front-end of FoodHive: recipe chat, pantry
// and shopping overviews, and push notifications over a webhook bot.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-chi/chi/v5"

	"foodhive/internal/chat"
	"foodhive/internal/metrics"
	"foodhive/internal/notify"
	"foodhive/internal/pantry"
	"foodhive/internal/shopping"
)

// updateTimeout bounds the work triggered by one webhook update.
const updateTimeout = time.Minute

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options configure access to the bot.
type Options struct {
	// AllowedUserIDs restricts the bot to these users. Empty allows everyone.
	AllowedUserIDs []int64
	AdminID        int64
	// DatabasePath is the SQLite file reported by /metrics.
	DatabasePath string
}

// Bot wraps the Telegram API and the FoodHive services it fronts.
type Bot struct {
	api      sender
	chat     *chat.Orchestrator
	catalogs *pantry.Catalogs
	shopping *shopping.Repository
	metrics  *metrics.Store
	opts     Options

	mu      sync.Mutex
	current map[int64]string
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(token, webhookURL string, orch *chat.Orchestrator, catalogs *pantry.Catalogs, shop *shopping.Repository, store *metrics.Store, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, orch, catalogs, shop, store, opts), nil
}

func newBot(api sender, orch *chat.Orchestrator, catalogs *pantry.Catalogs, shop *shopping.Repository, store *metrics.Store, opts Options) *Bot {
	return &Bot{
		api:      api,
		chat:     orch,
		catalogs: catalogs,
		shopping: shop,
		metrics:  store,
		opts:     opts,
		current:  make(map[int64]string),
	}
}

// RegisterHandlers mounts the webhook on r.
func (b *Bot) RegisterHandlers(r chi.Router) {
	r.Post("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		b.handleUpdate(ctx, update)
	}()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if b.allowed(update.CallbackQuery.From) {
			b.handleCallbackQuery(ctx, update.CallbackQuery)
		}
	case update.Message != nil:
		if b.allowed(update.Message.From) {
			b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if len(b.opts.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.opts.AllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
	return false
}

func userID(from *tgbotapi.User) string {
	return strconv.FormatInt(from.ID, 10)
}

// session returns the chat session the user is talking in.
func (b *Bot) session(tgUser int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.current[tgUser]; ok {
		return id
	}
	return chat.DefaultSessionID
}

func (b *Bot) setSession(tgUser int64, id string) {
	b.mu.Lock()
	b.current[tgUser] = id
	b.mu.Unlock()
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "new":
		b.handleNewChat(ctx, msg)
	case "expiring":
		b.handleExpiring(msg)
	case "shopping":
		b.handleShopping(ctx, msg)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	default:
		b.handleChatMessage(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	entries, err := b.chat.EnsureWelcome(ctx, userID(msg.From), b.session(msg.From.ID))
	if err != nil {
		log.Printf("Error loading transcript: %v", err)
		b.reply(msg.Chat.ID, "❌ Something went wrong, please try again.")
		return
	}
	if len(entries) > 0 {
		b.sendEntry(msg.Chat.ID, entries[0])
	}
}

func (b *Bot) handleNewChat(ctx context.Context, msg *tgbotapi.Message) {
	session, err := b.chat.CreateSession(ctx, userID(msg.From))
	if err != nil {
		log.Printf("Error creating chat: %v", err)
		b.reply(msg.Chat.ID, "❌ Could not start a new chat.")
		return
	}
	b.setSession(msg.From.ID, session.ID)
	b.reply(msg.Chat.ID, fmt.Sprintf("🆕 Started *%s*. What would you like to cook?", escape(session.Name)))
}

func (b *Bot) handleExpiring(msg *tgbotapi.Message) {
	catalog, err := b.catalogs.For(userID(msg.From))
	if err != nil {
		log.Printf("Error loading catalog: %v", err)
		b.reply(msg.Chat.ID, "❌ Could not load your products.")
		return
	}
	b.reply(msg.Chat.ID, formatExpiring(catalog.Expired(), catalog.ExpiringSoon()))
}

func formatExpiring(expired, soon []pantry.Product) string {
	if len(expired) == 0 && len(soon) == 0 {
		return "✅ Nothing is about to expire."
	}
	var sb strings.Builder
	if len(soon) > 0 {
		sb.WriteString("⏰ *Expiring soon*\n")
		for _, p := range soon {
			sb.WriteString(fmt.Sprintf("• %s (%s)\n", escape(p.Name), p.ExpDate))
		}
	}
	if len(expired) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("🗑 *Expired*\n")
		for _, p := range expired {
			sb.WriteString(fmt.Sprintf("• %s (%s)\n", escape(p.Name), p.ExpDate))
		}
	}
	return sb.String()
}

func (b *Bot) handleShopping(ctx context.Context, msg *tgbotapi.Message) {
	items, err := b.shopping.List(ctx, userID(msg.From))
	if err != nil {
		log.Printf("Error loading shopping list: %v", err)
		b.reply(msg.Chat.ID, "❌ Could not load your shopping list.")
		return
	}
	b.reply(msg.Chat.ID, formatShopping(items))
}

func formatShopping(items []shopping.Item) string {
	if len(items) == 0 {
		return "🛒 Your shopping list is empty."
	}
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	for _, it := range items {
		mark := "•"
		if it.Bought {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s x%d\n", mark, escape(it.Name), it.Quantity))
	}
	return sb.String()
}

func (b *Bot) handleChatMessage(ctx context.Context, msg *tgbotapi.Message) {
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping))

	entries, err := b.chat.Send(ctx, userID(msg.From), b.session(msg.From.ID), msg.Text)
	switch {
	case errors.Is(err, chat.ErrAwaitingReply):
		b.reply(msg.Chat.ID, "⏳ Still looking for recipes, hang on.")
		return
	case errors.Is(err, chat.ErrSessionNotFound):
		b.setSession(msg.From.ID, chat.DefaultSessionID)
		b.reply(msg.Chat.ID, "This chat no longer exists, switched back to the default chat.")
		return
	case err != nil:
		log.Printf("Error sending chat message: %v", err)
		b.reply(msg.Chat.ID, "❌ Something went wrong, please try again.")
		return
	}

	for _, e := range entries {
		if e.User == chat.UserSender {
			continue
		}
		b.sendEntry(msg.Chat.ID, e)
	}
}

func (b *Bot) sendEntry(chatID int64, e chat.Entry) {
	if e.Type != chat.EntryRecipe || e.Recipe == nil {
		b.reply(chatID, escape(e.Text))
		return
	}

	m := tgbotapi.NewMessage(chatID, formatRecipe(e))
	m.ParseMode = tgbotapi.ModeMarkdown
	id := strconv.Itoa(e.Recipe.ID)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Add missing", "missing|"+id),
			tgbotapi.NewInlineKeyboardButtonData("❤️ Favorite", "fav|"+id),
		),
	)
	m.ReplyMarkup = keyboard
	if _, err := b.api.Send(m); err != nil {
		log.Printf("Failed to send recipe: %v", err)
	}
}

func formatRecipe(e chat.Entry) string {
	r := e.Recipe
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍽 *%s*\n", escape(r.Title)))
	if len(r.Ingredients) > 0 {
		sb.WriteString("\n*Ingredients*\n")
		for _, ing := range r.Ingredients {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(ing)))
		}
	}
	if r.SourceURL != "" {
		sb.WriteString("\n" + escape(r.SourceURL))
	}
	return sb.String()
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, rawID, ok := strings.Cut(query.Data, "|")
	recipeID, err := strconv.Atoi(rawID)
	if !ok || err != nil || query.Message == nil {
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		return
	}

	uid := userID(query.From)
	session := b.session(query.From.ID)

	var reply string
	switch action {
	case "missing":
		reply, err = b.chat.AddMissingIngredients(ctx, uid, session, recipeID)
	case "fav":
		reply, err = b.chat.AddToFavorites(ctx, uid, session, recipeID)
	default:
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		return
	}
	if errors.Is(err, chat.ErrRecipeNotFound) {
		reply, err = "This recipe is no longer in the current chat.", nil
	}
	if err != nil {
		log.Printf("Error handling %s callback: %v", action, err)
		reply = "❌ Something went wrong, please try again."
	}

	b.api.Request(tgbotapi.NewCallback(query.ID, reply))
	b.reply(query.Message.Chat.ID, escape(reply))
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if b.opts.AdminID == 0 || msg.From.ID != b.opts.AdminID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metrics.GetDailyUsage(7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	health, err := b.metrics.Health(ctx, b.opts.DatabasePath)
	if err != nil {
		log.Printf("Warning: incomplete health report: %v", err)
	}
	b.reply(msg.Chat.ID, formatMetrics(usage, health))
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.Health) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent API Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s* %s: %d calls, %d errors, %d tokens, %dms avg\n",
			d.Date, escape(d.Service), d.TotalCalls, d.TotalErrors, d.TotalTokens, d.AverageLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Heap) / %dMB (Sys)\n", health.HeapMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))

	sb.WriteString("\n🥫 *Stored Data*\n")
	sb.WriteString(fmt.Sprintf("• Users: %d\n", health.Users))
	names := make([]string, 0, len(health.Documents))
	for name := range health.Documents {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("• %s: %d\n", escape(name), health.Documents[name]))
	}
	return sb.String()
}

// Notify delivers a notification to a Telegram user. Users whose id is not
// a Telegram id are skipped.
func (b *Bot) Notify(_ context.Context, uid string, n notify.Notification) error {
	chatID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return nil
	}
	if len(b.opts.AllowedUserIDs) > 0 && !b.allowed(&tgbotapi.User{ID: chatID}) {
		return nil
	}

	m := tgbotapi.NewMessage(chatID, fmt.Sprintf("*%s*\n%s", escape(n.Title), escape(n.Body)))
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(m); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

// SendAdminAlert messages the admin, if one is configured. text is sent as
// plain text.
func (b *Bot) SendAdminAlert(text string) {
	if b.opts.AdminID == 0 {
		return
	}
	b.reply(b.opts.AdminID, "⚠️ *Alert*\n"+escape(text))
}

func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(m); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
