package docstore

import (
	"context"
	"sync"
)

// Op is the kind of change carried by an Event.
type Op string

const (
	OpSet    Op = "set"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes a write to the store.
type Event struct {
	UserID     string
	Collection string
	ID         string
	Op         Op
}

type subscription struct {
	userID     string
	collection string
	ch         chan Event
}

// Observable decorates a Store and publishes an Event after every
// successful write. Slow subscribers miss events rather than block writers,
// so consumers should treat an event as "something changed, re-read".
type Observable struct {
	Store

	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

// NewObservable wraps s.
func NewObservable(s Store) *Observable {
	return &Observable{Store: s, subs: make(map[int]subscription)}
}

// Subscribe returns events for one user's collection, including collections
// nested under it. An empty userID matches every user. The returned func
// unsubscribes and closes the channel.
func (o *Observable) Subscribe(userID, collection string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = subscription{userID: userID, collection: collection, ch: ch}
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
			close(ch)
		})
	}
}

func (o *Observable) publish(ev Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, sub := range o.subs {
		if sub.userID != "" && sub.userID != ev.UserID {
			continue
		}
		if !isNested(ev.Collection, sub.collection) && !isNested(sub.collection, ev.Collection) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (o *Observable) Set(ctx context.Context, userID, collection, id string, data map[string]any) error {
	if err := o.Store.Set(ctx, userID, collection, id, data); err != nil {
		return err
	}
	o.publish(Event{UserID: userID, Collection: collection, ID: id, Op: OpSet})
	return nil
}

func (o *Observable) Add(ctx context.Context, userID, collection string, data map[string]any) (string, error) {
	id, err := o.Store.Add(ctx, userID, collection, data)
	if err != nil {
		return "", err
	}
	o.publish(Event{UserID: userID, Collection: collection, ID: id, Op: OpSet})
	return id, nil
}

func (o *Observable) Update(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	if err := o.Store.Update(ctx, userID, collection, id, fields); err != nil {
		return err
	}
	o.publish(Event{UserID: userID, Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

func (o *Observable) Delete(ctx context.Context, userID, collection, id string) error {
	if err := o.Store.Delete(ctx, userID, collection, id); err != nil {
		return err
	}
	o.publish(Event{UserID: userID, Collection: collection, ID: id, Op: OpDelete})
	return nil
}

func (o *Observable) DeleteCollection(ctx context.Context, userID, collection string) error {
	if err := o.Store.DeleteCollection(ctx, userID, collection); err != nil {
		return err
	}
	o.publish(Event{UserID: userID, Collection: collection, Op: OpDelete})
	return nil
}
