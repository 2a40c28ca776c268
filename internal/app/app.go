// Package app wires the FoodHive services together from configuration and
// implements the command line operations.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"foodhive/internal/api"
	"foodhive/internal/capture"
	"foodhive/internal/chat"
	"foodhive/internal/config"
	"foodhive/internal/database"
	"foodhive/internal/docstore"
	"foodhive/internal/history"
	"foodhive/internal/llm"
	"foodhive/internal/metrics"
	"foodhive/internal/notify"
	"foodhive/internal/pantry"
	"foodhive/internal/profile"
	"foodhive/internal/recipe"
	"foodhive/internal/shopping"
)

const (
	barcodeCacheSize = 256
	apiTimeout       = 15 * time.Second
)

// App holds the application's dependencies.
type App struct {
	cfg   *config.Config
	db    *database.DB
	mongo *docstore.MongoStore
	llm   llm.TextGenerator

	Store      *docstore.Observable
	Metrics    *metrics.Store
	History    *history.Repository
	Products   *pantry.Repository
	Catalogs   *pantry.Catalogs
	Shopping   *shopping.Repository
	Favorites  *recipe.Favorites
	Profiles   *profile.Repository
	Avatars    *profile.AvatarService
	Chat       *chat.Orchestrator
	Barcodes   *capture.OpenFoodFacts
	Vision     *capture.Vision
	Scheduler  *notify.Scheduler
	Dispatcher *notify.Dispatcher
	Reminders  *notify.ExpiryReminders
	Jobs       *notify.Jobs

	now func() time.Time
}

// New opens the stores and builds every service. Catalogs live until ctx is
// done. Optional integrations (Vision, avatars, LLM) are skipped when their
// configuration is missing.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &App{cfg: cfg, db: db, Metrics: metrics.NewStore(db.SQL), now: time.Now}

	var backend docstore.Store = docstore.NewSQLiteStore(db.SQL)
	if cfg.DocStoreDriver == "mongo" {
		a.mongo, err = docstore.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			db.Close()
			return nil, err
		}
		backend = a.mongo
	}
	a.Store = docstore.NewObservable(backend)

	a.History = history.NewRepository(a.Store)
	a.Products = pantry.NewRepository(a.Store, a.History)
	a.Catalogs = pantry.NewCatalogs(ctx, a.Products, a.Store)
	a.Shopping = shopping.NewRepository(a.Store, a.History)
	a.Favorites = recipe.NewFavorites(a.Store, a.History)
	a.Profiles = profile.NewRepository(a.Store)

	if cfg.AvatarStorageEnabled() {
		objects, err := profile.NewS3Store(ctx, profile.S3Options{
			Bucket:    cfg.AvatarBucket,
			Region:    cfg.AvatarRegion,
			Endpoint:  cfg.AvatarEndpoint,
			AccessKey: cfg.AvatarAccessKey,
			SecretKey: cfg.AvatarSecretKey,
			PublicURL: cfg.AvatarPublicURL,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Avatars = profile.NewAvatarService(objects, a.Profiles)
	}

	a.Barcodes, err = capture.NewOpenFoodFacts(cfg.OpenFoodFactsURL,
		metrics.NewHTTPClient("openfoodfacts", a.Metrics, apiTimeout), barcodeCacheSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.VisionAPIKey != "" {
		a.Vision, err = capture.NewVision(ctx, cfg.VisionAPIKey)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	var assistant *chat.Assistant
	switch {
	case cfg.GroqAPIKey != "":
		a.llm = llm.NewGroqClient(cfg.GroqAPIKey, 0.7, nil)
		assistant = chat.NewAssistant(a.llm, "groq", a.Metrics)
	case cfg.GeminiAPIKey != "":
		a.llm, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			a.Close()
			return nil, err
		}
		assistant = chat.NewAssistant(a.llm, "gemini", a.Metrics)
	default:
		log.Println("Warning: no LLM key configured, recipe replies will have no introduction")
	}

	spoonacular := recipe.NewSpoonacularClient(cfg.SpoonacularAPIKey, cfg.SpoonacularBaseURL,
		metrics.NewHTTPClient("spoonacular", a.Metrics, apiTimeout))
	a.Chat = chat.NewOrchestrator(a.Store, spoonacular, a.Profiles, a.Shopping, a.Favorites, assistant)

	a.Scheduler = notify.NewScheduler()
	a.Dispatcher = notify.NewDispatcher(&notify.LogNotifier{})
	a.Reminders = notify.NewExpiryReminders(a.Scheduler, a.Dispatcher)
	tips, err := notify.LoadTips()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Jobs = notify.NewJobs(a.Store, a.Products, a.Profiles, a.Dispatcher, tips)

	return a, nil
}

// APIDeps returns the services the HTTP API needs.
func (a *App) APIDeps() api.Deps {
	deps := api.Deps{
		Products:  a.Products,
		Shopping:  a.Shopping,
		Favorites: a.Favorites,
		History:   a.History,
		Profiles:  a.Profiles,
		Avatars:   a.Avatars,
		Chat:      a.Chat,
		Reminders: a.Reminders,
		Barcodes:  a.Barcodes,
		JWTSecret: a.cfg.JWTSecret,
	}
	// A nil *Vision must not become a non-nil interface.
	if a.Vision != nil {
		deps.Vision = a.Vision
	}
	return deps
}

// StartJobs plans the daily runs and the reminders of every stored product.
func (a *App) StartJobs(ctx context.Context) error {
	a.Jobs.ScheduleDaily(a.Scheduler, "expiry-check", notify.ExpiryCheckHour, a.Jobs.ExpiryCheck)
	a.Jobs.ScheduleDaily(a.Scheduler, "daily-tip", notify.DailyTipHour, a.Jobs.DailyTip)

	n, err := a.ScheduleReminders(ctx)
	if err != nil {
		return err
	}
	log.Printf("Scheduled %d expiry reminders", n)
	return nil
}

// ScheduleReminders plans expiry reminders for every user's products.
func (a *App) ScheduleReminders(ctx context.Context) (int, error) {
	users, err := a.Store.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	total := 0
	for _, uid := range users {
		products, err := a.Products.List(ctx, uid)
		if err != nil {
			log.Printf("Warning: skipping reminders for %s: %v", uid, err)
			continue
		}
		total += a.Reminders.ScheduleAll(uid, products)
	}
	return total, nil
}

// Summary writes a pantry and shopping overview of one user to w.
func (a *App) Summary(ctx context.Context, userID string, w io.Writer) error {
	products, err := a.Products.List(ctx, userID)
	if err != nil {
		return err
	}
	items, err := a.Shopping.List(ctx, userID)
	if err != nil {
		return err
	}

	today := a.now()
	s := pantry.Summarize(today, products)
	fmt.Fprintf(w, "=== PANTRY (%d products) ===\n", s.Total)
	fmt.Fprintf(w, "Expired: %d  Expiring soon: %d  Fresh: %d\n", s.Expired, s.ExpiringSoon, s.Remainder)
	for _, c := range s.Categories {
		fmt.Fprintf(w, "  %-12s %d\n", c.Category, c.Count)
	}

	b := pantry.Classify(today, products)
	if len(b.ExpiringSoon) > 0 {
		fmt.Fprintln(w, "\n=== EXPIRING SOON ===")
		for _, p := range b.ExpiringSoon {
			fmt.Fprintf(w, "- %s (%s)\n", p.Name, p.ExpDate)
		}
	}
	if len(b.Expired) > 0 {
		fmt.Fprintln(w, "\n=== EXPIRED ===")
		for _, p := range b.Expired {
			fmt.Fprintf(w, "- %s (%s)\n", p.Name, p.ExpDate)
		}
	}

	fmt.Fprintln(w, "\n=== SHOPPING LIST ===")
	if len(items) == 0 {
		fmt.Fprintln(w, "(empty)")
	}
	for _, it := range items {
		mark := " "
		if it.Bought {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s x%d\n", mark, it.Name, it.Quantity)
	}
	return nil
}

// ImportProducts reads a JSON array of products from r and adds them to the
// user's pantry. Entries without a name are skipped. It returns the number
// of products added.
func (a *App) ImportProducts(ctx context.Context, userID string, r io.Reader) (int, error) {
	var products []pantry.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return 0, fmt.Errorf("failed to decode products: %w", err)
	}

	today := a.now().Format(pantry.DateLayout)
	added := 0
	for i, p := range products {
		p.ID = ""
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			log.Printf("Warning: skipping product %d without a name", i)
			continue
		}
		if p.AddDate == "" {
			p.AddDate = today
		}
		if p.Source == "" {
			p.Source = pantry.SourceManual
		}
		if _, err := a.Products.Add(ctx, userID, p); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Close releases the stores and clients.
func (a *App) Close() error {
	var errs []error
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if c, ok := a.llm.(llm.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.mongo.Close(ctx))
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}
