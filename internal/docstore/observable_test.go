package docstore

import (
	"context"
	"testing"
	"time"
)

func TestObservablePublishesWrites(t *testing.T) {
	ctx := context.Background()
	obs := NewObservable(newTestStore(t))

	events, cancel := obs.Subscribe("u1", "products")
	defer cancel()
	others, cancelOthers := obs.Subscribe("u2", "products")
	defer cancelOthers()

	id, err := obs.Add(ctx, "u1", "products", map[string]any{"name": "Eggs"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	obs.Add(ctx, "u1", "shoppingList", map[string]any{"name": "Bread"})
	obs.Delete(ctx, "u1", "products", id)

	want := []Op{OpSet, OpDelete}
	for _, op := range want {
		select {
		case ev := <-events:
			if ev.Op != op || ev.ID != id || ev.Collection != "products" {
				t.Errorf("unexpected event %+v, want op %s", ev, op)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", op)
		}
	}

	select {
	case ev := <-others:
		t.Errorf("subscriber of another user got %+v", ev)
	default:
	}
}

func TestObservableNestedAndWildcard(t *testing.T) {
	ctx := context.Background()
	obs := NewObservable(newTestStore(t))

	chatEvents, cancel := obs.Subscribe("u1", "chats/c1/messages")
	defer cancel()
	all, cancelAll := obs.Subscribe("", "products")
	defer cancelAll()

	obs.DeleteCollection(ctx, "u1", "chats/c1")
	obs.Add(ctx, "someone", "products", map[string]any{})

	select {
	case ev := <-chatEvents:
		if ev.Op != OpDelete {
			t.Errorf("Expected delete event, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("parent collection delete should reach nested subscribers")
	}

	select {
	case ev := <-all:
		if ev.UserID != "someone" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("wildcard subscriber should see every user")
	}
}

func TestObservableUnsubscribeClosesChannel(t *testing.T) {
	obs := NewObservable(newTestStore(t))
	events, cancel := obs.Subscribe("u1", "products")
	cancel()
	cancel()

	if _, ok := <-events; ok {
		t.Error("Expected closed channel after unsubscribe")
	}
	if _, err := obs.Add(context.Background(), "u1", "products", map[string]any{}); err != nil {
		t.Errorf("writes after unsubscribe should succeed: %v", err)
	}
}
