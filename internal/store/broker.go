package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Operation is the kind of write that changed a document.
type Operation string

const (
	OperationSet    Operation = "set"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationAdd    Operation = "add"
)

// Change describes a single write to the store.
type Change struct {
	Operation Operation      `json:"operation"`
	Path      string         `json:"path"`
	Data      map[string]any `json:"data,omitempty"`
	Time      time.Time      `json:"time"`
}

// Broker distributes changes to subscriptions and listeners.
type Broker struct {
	mu        sync.Mutex
	watchers  map[string]map[*watcher]struct{}
	listeners []func(Change)
}

type watcher struct {
	notify chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

// Listen registers fn to be called synchronously for every change.
func (b *Broker) Listen(fn func(Change)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = append(b.listeners, fn)
}

// Publish notifies listeners and every subscription on the changed
// document or its collection.
func (b *Broker) Publish(c Change) {
	if c.Time.IsZero() {
		c.Time = time.Now().UTC()
	}

	b.mu.Lock()
	listeners := append([]func(Change){}, b.listeners...)

	paths := []string{c.Path}
	if i := strings.LastIndex(c.Path, "/"); i > 0 {
		paths = append(paths, c.Path[:i])
	}

	for _, p := range paths {
		for w := range b.watchers[p] {
			// Pending notifications are coalesced, the watcher always
			// loads the latest state
			select {
			case w.notify <- struct{}{}:
			default:
			}
		}
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// watch starts a goroutine that loads the state of path once immediately
// and after every published change.
func (b *Broker) watch(ctx context.Context, path string, snapshot func(context.Context) ([]Document, error), onChange func([]Document), onError func(error)) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{
		notify: make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	w.notify <- struct{}{}

	b.mu.Lock()
	if b.watchers[path] == nil {
		b.watchers[path] = make(map[*watcher]struct{})
	}
	b.watchers[path][w] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(w.done)

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.notify:
				docs, err := snapshot(ctx)
				if ctx.Err() != nil {
					return
				}

				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}

				onChange(docs)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers[path], w)
			if len(b.watchers[path]) == 0 {
				delete(b.watchers, path)
			}
			b.mu.Unlock()

			w.cancel()
			<-w.done
		})
	}
}

// Subscriptions returns the number of active subscriptions.
func (b *Broker) Subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, w := range b.watchers {
		n += len(w)
	}

	return n
}
