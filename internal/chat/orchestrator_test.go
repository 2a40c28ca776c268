package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"foodhive/internal/docstore"
	"foodhive/internal/llm"
	"foodhive/internal/profile"
	"foodhive/internal/recipe"
	"foodhive/internal/shopping"
	"foodhive/internal/testutil"
)

type fakeRecipes struct {
	mu        sync.Mutex
	ids       []int
	searchErr error
	infoErr   map[int]error
	params    recipe.SearchParams
	block     chan struct{}
	searching chan struct{}
}

func (f *fakeRecipes) Search(_ context.Context, p recipe.SearchParams) ([]int, error) {
	f.mu.Lock()
	f.params = p
	f.mu.Unlock()
	if f.searching != nil {
		close(f.searching)
	}
	if f.block != nil {
		<-f.block
	}
	return f.ids, f.searchErr
}

func (f *fakeRecipes) Information(_ context.Context, id int) (*recipe.Recipe, error) {
	if err := f.infoErr[id]; err != nil {
		return nil, err
	}
	return &recipe.Recipe{
		ID:           id,
		Title:        titles[id],
		Ingredients:  []string{"eggs", "milk"},
		Instructions: "Cook.",
	}, nil
}

var titles = map[int]string{1: "Omelette", 2: "Pancakes", 3: "Crepes", 4: "Waffles"}

type fakeGenerator struct {
	content string
	err     error
	prompt  string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	f.prompt = prompt
	return llm.ContentResponse{Content: f.content, Usage: llm.TokenUsage{PromptTokens: 3, CompletionTokens: 4}}, f.err
}

type fixture struct {
	orch     *Orchestrator
	store    docstore.Store
	prefs    *profile.Repository
	shopping *shopping.Repository
	favs     *recipe.Favorites
}

func newFixture(t *testing.T, src RecipeSource, assistant *Assistant) fixture {
	t.Helper()
	store := testutil.NewStore(t)
	f := fixture{
		store:    store,
		prefs:    profile.NewRepository(store),
		shopping: shopping.NewRepository(store, nil),
		favs:     recipe.NewFavorites(store, nil),
	}
	f.orch = NewOrchestrator(store, src, f.prefs, f.shopping, f.favs, assistant)

	var mu sync.Mutex
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.orch.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return f
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("RecipesInSearchOrder", func(t *testing.T) {
		src := &fakeRecipes{ids: []int{2, 1, 3, 4}}
		f := newFixture(t, src, nil)
		f.prefs.SavePreferences(ctx, "u1", profile.Preferences{Diet: "vegetarian", Exclusions: []string{"peanuts"}})

		entries, err := f.orch.Send(ctx, "u1", DefaultSessionID, "I want pancakes without nuts, dairy")
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if len(entries) != 4 {
			t.Fatalf("Expected user message plus 3 recipes, got %d", len(entries))
		}
		if entries[0].User != UserSender || entries[0].Text != "I want pancakes without nuts, dairy" {
			t.Errorf("unexpected first entry %+v", entries[0])
		}
		for i, want := range []string{"Pancakes", "Omelette", "Crepes"} {
			if got := entries[i+1].Recipe.Title; got != want {
				t.Errorf("entry %d: expected %s, got %s", i+1, want, got)
			}
		}

		if src.params.Query != "pancakes" || src.params.Diet != "vegetarian" {
			t.Errorf("unexpected search params %+v", src.params)
		}
		if strings.Join(src.params.Exclusions, ",") != "nuts,dairy,peanuts" {
			t.Errorf("unexpected exclusions %v", src.params.Exclusions)
		}

		transcript, _ := f.orch.Transcript(ctx, "u1", DefaultSessionID)
		if len(transcript) != 4 || transcript[1].Type != EntryRecipe {
			t.Fatalf("unexpected transcript %+v", transcript)
		}

		sub, err := f.store.Get(ctx, "u1", recipePath(DefaultSessionID, transcript[1].ID), "2")
		if err != nil {
			t.Fatalf("recipe sub-document missing: %v", err)
		}
		if docstore.String(sub.Data, "title", "") != "Pancakes" {
			t.Errorf("unexpected sub-document %+v", sub.Data)
		}

		if f.orch.State("u1", DefaultSessionID) != StateIdle {
			t.Error("Expected session to be idle after the reply")
		}
	})

	t.Run("DetailFailureApologises", func(t *testing.T) {
		src := &fakeRecipes{ids: []int{1, 2, 3}, infoErr: map[int]error{2: errors.New("402")}}
		f := newFixture(t, src, nil)

		entries, err := f.orch.Send(ctx, "u1", DefaultSessionID, "eggs")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(entries) != 2 || entries[1].Text != apologyText {
			t.Errorf("Expected a single apology, got %+v", entries)
		}
		transcript, _ := f.orch.Transcript(ctx, "u1", DefaultSessionID)
		for _, e := range transcript {
			if e.Type == EntryRecipe {
				t.Error("no partial recipe results expected")
			}
		}
	})

	t.Run("SearchFailureApologises", func(t *testing.T) {
		f := newFixture(t, &fakeRecipes{searchErr: errors.New("timeout")}, nil)
		entries, _ := f.orch.Send(ctx, "u1", DefaultSessionID, "eggs")
		if len(entries) != 2 || entries[1].Text != apologyText {
			t.Errorf("Expected apology, got %+v", entries)
		}
	})

	t.Run("NoResults", func(t *testing.T) {
		f := newFixture(t, &fakeRecipes{}, nil)
		entries, _ := f.orch.Send(ctx, "u1", DefaultSessionID, "gravel soup")
		if len(entries) != 2 || entries[1].Text != noResultText {
			t.Errorf("Expected no-results reply, got %+v", entries)
		}
	})

	t.Run("EmptyMessage", func(t *testing.T) {
		f := newFixture(t, &fakeRecipes{}, nil)
		if _, err := f.orch.Send(ctx, "u1", DefaultSessionID, "   "); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Expected ErrEmptyMessage, got %v", err)
		}
	})

	t.Run("UnknownSession", func(t *testing.T) {
		f := newFixture(t, &fakeRecipes{}, nil)
		if _, err := f.orch.Send(ctx, "u1", "nope", "eggs"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("RejectsWhileAwaiting", func(t *testing.T) {
		src := &fakeRecipes{ids: []int{1}, block: make(chan struct{}), searching: make(chan struct{})}
		f := newFixture(t, src, nil)

		done := make(chan error, 1)
		go func() {
			_, err := f.orch.Send(ctx, "u1", DefaultSessionID, "first")
			done <- err
		}()
		<-src.searching

		if f.orch.State("u1", DefaultSessionID) != StateAwaitingReply {
			t.Error("Expected awaiting-reply state")
		}
		if _, err := f.orch.Send(ctx, "u1", DefaultSessionID, "second"); !errors.Is(err, ErrAwaitingReply) {
			t.Errorf("Expected ErrAwaitingReply, got %v", err)
		}

		close(src.block)
		if err := <-done; err != nil {
			t.Fatalf("first send failed: %v", err)
		}
	})
}

func TestSendWithAssistant(t *testing.T) {
	ctx := context.Background()

	t.Run("Intro", func(t *testing.T) {
		gen := &fakeGenerator{content: "\"Here are some tasty ideas!\"\nextra"}
		f := newFixture(t, &fakeRecipes{ids: []int{1, 2}}, NewAssistant(gen, "groq", nil))

		entries, err := f.orch.Send(ctx, "u1", DefaultSessionID, "breakfast")
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if len(entries) != 4 || entries[1].Text != "Here are some tasty ideas!" {
			t.Errorf("unexpected entries %+v", entries)
		}
		if !strings.Contains(gen.prompt, "Omelette, Pancakes") {
			t.Errorf("prompt should list titles: %s", gen.prompt)
		}
	})

	t.Run("FailureIgnored", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("quota")}
		f := newFixture(t, &fakeRecipes{ids: []int{1}}, NewAssistant(gen, "groq", nil))

		entries, err := f.orch.Send(ctx, "u1", DefaultSessionID, "breakfast")
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if len(entries) != 2 || entries[1].Type != EntryRecipe {
			t.Errorf("unexpected entries %+v", entries)
		}
	})
}

func TestRecipeActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeRecipes{ids: []int{1}}, nil)
	if _, err := f.orch.Send(ctx, "u1", DefaultSessionID, "omelette"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	t.Run("MissingIngredients", func(t *testing.T) {
		f.shopping.Add(ctx, "u1", shopping.Item{Name: "Milk"})

		reply, err := f.orch.AddMissingIngredients(ctx, "u1", DefaultSessionID, 1)
		if err != nil {
			t.Fatalf("AddMissingIngredients failed: %v", err)
		}
		if reply != "📞 Added 1 missing item(s) to your shopping list!" {
			t.Errorf("unexpected reply %q", reply)
		}

		reply, _ = f.orch.AddMissingIngredients(ctx, "u1", DefaultSessionID, 1)
		if reply != "✅ You already have all the ingredients for this recipe!" {
			t.Errorf("unexpected reply %q", reply)
		}

		items, _ := f.shopping.List(ctx, "u1")
		if len(items) != 2 || items[1].Name != "eggs" || items[1].Quantity != 1 {
			t.Errorf("unexpected shopping list %+v", items)
		}
	})

	t.Run("Favorite", func(t *testing.T) {
		reply, err := f.orch.AddToFavorites(ctx, "u1", DefaultSessionID, 1)
		if err != nil {
			t.Fatalf("AddToFavorites failed: %v", err)
		}
		if reply != "❤️ Added to favorites: Omelette" {
			t.Errorf("unexpected reply %q", reply)
		}
		if _, err := f.favs.Get(ctx, "u1", 1); err != nil {
			t.Errorf("favorite not saved: %v", err)
		}
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		if _, err := f.orch.AddToFavorites(ctx, "u1", DefaultSessionID, 99); !errors.Is(err, ErrRecipeNotFound) {
			t.Errorf("Expected ErrRecipeNotFound, got %v", err)
		}
	})
}
