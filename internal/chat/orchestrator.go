package chat

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"foodhive/internal/docstore"
	"foodhive/internal/profile"
	"foodhive/internal/recipe"
	"foodhive/internal/shopping"
)

// RecipeSource searches recipes and fetches their details.
type RecipeSource interface {
	Search(ctx context.Context, p recipe.SearchParams) ([]int, error)
	Information(ctx context.Context, id int) (*recipe.Recipe, error)
}

// PreferenceReader returns the dietary preferences of a user.
type PreferenceReader interface {
	Preferences(ctx context.Context, userID string) (profile.Preferences, error)
}

// Orchestrator turns user messages into recipe replies and keeps the
// transcript of every session.
type Orchestrator struct {
	store     docstore.Store
	recipes   RecipeSource
	prefs     PreferenceReader
	shopping  *shopping.Repository
	favorites *recipe.Favorites
	assistant *Assistant

	states *states
	now    func() time.Time
}

// NewOrchestrator creates a new chat orchestrator. assistant may be nil.
func NewOrchestrator(store docstore.Store, recipes RecipeSource, prefs PreferenceReader, shop *shopping.Repository, favs *recipe.Favorites, assistant *Assistant) *Orchestrator {
	return &Orchestrator{
		store:     store,
		recipes:   recipes,
		prefs:     prefs,
		shopping:  shop,
		favorites: favs,
		assistant: assistant,
		states:    newStates(),
		now:       time.Now,
	}
}

// State reports whether the session is waiting for recipe results.
func (o *Orchestrator) State(userID, chatID string) State {
	return o.states.get(stateKey(userID, chatID))
}

// Send appends the user's message and the bot's replies to the transcript
// and returns the new entries. Recipe lookup failures become an apology in
// the transcript, not an error.
func (o *Orchestrator) Send(ctx context.Context, userID, chatID, text string) ([]Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := o.ensureSession(ctx, userID, chatID); err != nil {
		return nil, err
	}

	key := stateKey(userID, chatID)
	if err := o.states.begin(key); err != nil {
		return nil, err
	}
	defer o.states.end(key)

	userMsg, err := o.appendMessage(ctx, userID, chatID, UserSender, text)
	if err != nil {
		return nil, err
	}
	entries := []Entry{userMsg}

	recipes, err := o.findRecipes(ctx, userID, text)
	if err != nil {
		log.Printf("Warning: recipe lookup for user %s failed: %v", userID, err)
		reply, err := o.appendMessage(ctx, userID, chatID, BotSender, apologyText)
		if err != nil {
			return entries, err
		}
		return append(entries, reply), nil
	}
	if len(recipes) == 0 {
		reply, err := o.appendMessage(ctx, userID, chatID, BotSender, noResultText)
		if err != nil {
			return entries, err
		}
		return append(entries, reply), nil
	}

	if o.assistant != nil {
		if intro, err := o.assistant.Intro(ctx, text, recipes); err != nil {
			log.Printf("Warning: assistant intro failed: %v", err)
		} else if intro != "" {
			reply, err := o.appendMessage(ctx, userID, chatID, BotSender, intro)
			if err != nil {
				return entries, err
			}
			entries = append(entries, reply)
		}
	}

	for _, r := range recipes {
		e, err := o.appendRecipe(ctx, userID, chatID, r)
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// findRecipes runs the search and fetches up to three details concurrently.
// Results keep the search order; any failure fails the whole lookup.
func (o *Orchestrator) findRecipes(ctx context.Context, userID, text string) ([]recipe.Recipe, error) {
	prefs, err := o.prefs.Preferences(ctx, userID)
	if err != nil {
		log.Printf("Warning: using default preferences for user %s: %v", userID, err)
		prefs = profile.DefaultPreferences()
	}

	query, exclusions := recipe.ExtractExclusions(text)
	ids, err := o.recipes.Search(ctx, recipe.SearchParams{
		Query:      query,
		Diet:       prefs.Diet,
		Exclusions: recipe.MergeExclusions(exclusions, prefs.Exclusions),
	})
	if err != nil {
		return nil, err
	}
	if len(ids) > 3 {
		ids = ids[:3]
	}

	results := make([]recipe.Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, id := range ids {
		g.Go(func() error {
			r, err := o.recipes.Information(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to fetch recipe %d: %w", id, err)
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) appendMessage(ctx context.Context, userID, chatID, sender, text string) (Entry, error) {
	e := Entry{Type: EntryMessage, Text: text, User: sender, Timestamp: o.now().UnixMilli()}
	id, err := o.store.Add(ctx, userID, messagesPath(chatID), e.toDoc())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save chat message: %w", err)
	}
	e.ID = id
	return e, nil
}

func (o *Orchestrator) appendRecipe(ctx context.Context, userID, chatID string, r recipe.Recipe) (Entry, error) {
	e := Entry{Type: EntryRecipe, Timestamp: o.now().UnixMilli(), Recipe: &r}
	id, err := o.store.Add(ctx, userID, messagesPath(chatID), e.toDoc())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save recipe entry: %w", err)
	}
	e.ID = id

	if err := o.store.Set(ctx, userID, recipePath(chatID, id), strconv.Itoa(r.ID), r.Fields()); err != nil {
		return Entry{}, fmt.Errorf("failed to save recipe details: %w", err)
	}
	return e, nil
}

// Transcript returns the entries of a session ordered by timestamp.
func (o *Orchestrator) Transcript(ctx context.Context, userID, chatID string) ([]Entry, error) {
	docs, err := o.store.List(ctx, userID, messagesPath(chatID))
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, entryFromDoc(d))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
	return entries, nil
}

// FindRecipe returns a recipe previously shown in the session.
func (o *Orchestrator) FindRecipe(ctx context.Context, userID, chatID string, recipeID int) (*recipe.Recipe, error) {
	entries, err := o.Transcript(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if r := entries[i].Recipe; r != nil && r.ID == recipeID {
			return r, nil
		}
	}
	return nil, ErrRecipeNotFound
}

// AddMissingIngredients puts the recipe's ingredients that are not already on
// the shopping list onto it and replies in the transcript.
func (o *Orchestrator) AddMissingIngredients(ctx context.Context, userID, chatID string, recipeID int) (string, error) {
	r, err := o.FindRecipe(ctx, userID, chatID, recipeID)
	if err != nil {
		return "", err
	}

	added, err := o.shopping.AddMissing(ctx, userID, r.Ingredients)
	if err != nil {
		return "", err
	}

	reply := "✅ You already have all the ingredients for this recipe!"
	if len(added) > 0 {
		reply = fmt.Sprintf("📞 Added %d missing item(s) to your shopping list!", len(added))
	}
	if _, err := o.appendMessage(ctx, userID, chatID, BotSender, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// AddToFavorites saves a recipe from the session as a favourite.
func (o *Orchestrator) AddToFavorites(ctx context.Context, userID, chatID string, recipeID int) (string, error) {
	r, err := o.FindRecipe(ctx, userID, chatID, recipeID)
	if err != nil {
		return "", err
	}
	if err := o.favorites.Save(ctx, userID, *r); err != nil {
		return "", err
	}

	reply := "❤️ Added to favorites: " + r.Title
	if _, err := o.appendMessage(ctx, userID, chatID, BotSender, reply); err != nil {
		return "", err
	}
	return reply, nil
}
