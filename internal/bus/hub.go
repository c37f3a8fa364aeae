package bus

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"meettimer/internal/core/message"
	"meettimer/internal/metrics"
)

type endpoint struct {
	id int
	ch chan message.Message
}

// Hub is an in-process message bus with a tab registry.
type Hub struct {
	mu        sync.Mutex
	endpoints map[Target][]endpoint
	taps      []func(Envelope)
	tabs      map[Target]string
	active    Target
	nextID    int
	metrics   metrics.Recorder
}

// NewHub creates an empty Hub.
func NewHub(recorder metrics.Recorder) *Hub {
	return &Hub{
		endpoints: make(map[Target][]endpoint),
		tabs:      make(map[Target]string),
		metrics:   metrics.OrNoop(recorder),
	}
}

// Subscribe registers an inbox for target. The returned cancel function
// closes the channel and is safe to call more than once.
func (hub *Hub) Subscribe(target Target, buffer int) (<-chan message.Message, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan message.Message, buffer)
	hub.mu.Lock()
	id := hub.nextID
	hub.nextID++
	hub.endpoints[target] = append(hub.endpoints[target], endpoint{id: id, ch: ch})
	hub.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			hub.mu.Lock()
			defer hub.mu.Unlock()
			endpoints := hub.endpoints[target]
			for i, ep := range endpoints {
				if ep.id == id {
					hub.endpoints[target] = append(endpoints[:i:i], endpoints[i+1:]...)
					break
				}
			}
			if len(hub.endpoints[target]) == 0 {
				delete(hub.endpoints, target)
			}
			close(ch)
		})
	}
}

// Tap registers an observer called for every send attempt. Observers must not block.
func (hub *Hub) Tap(observer func(Envelope)) {
	hub.mu.Lock()
	hub.taps = append(hub.taps, observer)
	hub.mu.Unlock()
}

// Send delivers msg to every inbox on target without blocking.
func (hub *Hub) Send(ctx context.Context, to Target, msg message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	hub.mu.Lock()
	endpoints := hub.endpoints[to]
	delivered := false
	for _, ep := range endpoints {
		select {
		case ep.ch <- msg:
			delivered = true
		default:
			hub.metrics.IncDropped(string(to))
		}
	}
	taps := slices.Clone(hub.taps)
	hub.mu.Unlock()

	envelope := Envelope{To: to, Message: msg, Delivered: delivered}
	for _, observer := range taps {
		observer(envelope)
	}

	if len(endpoints) == 0 {
		return ErrNoRecipient
	}
	return nil
}

// Open registers a new page and returns its target.
func (hub *Hub) Open(url string) Target {
	target := Target("page-" + uuid.NewString())
	hub.mu.Lock()
	hub.tabs[target] = url
	if hub.active == "" {
		hub.active = target
	}
	hub.mu.Unlock()
	return target
}

// Navigate records a new address for target.
func (hub *Hub) Navigate(target Target, url string) {
	hub.mu.Lock()
	if _, ok := hub.tabs[target]; ok {
		hub.tabs[target] = url
	}
	hub.mu.Unlock()
}

// Close forgets target.
func (hub *Hub) Close(target Target) {
	hub.mu.Lock()
	delete(hub.tabs, target)
	if hub.active == target {
		hub.active = ""
	}
	hub.mu.Unlock()
}

// Activate focuses target.
func (hub *Hub) Activate(target Target) bool {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if _, ok := hub.tabs[target]; !ok {
		return false
	}
	hub.active = target
	return true
}

// Active returns the focused page.
func (hub *Hub) Active() (Tab, bool) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.active == "" {
		return Tab{}, false
	}
	url, ok := hub.tabs[hub.active]
	if !ok {
		return Tab{}, false
	}
	return Tab{Target: hub.active, URL: url}, true
}

// Tabs lists every open page ordered by address.
func (hub *Hub) Tabs() []Tab {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	tabs := make([]Tab, 0, len(hub.tabs))
	for target, url := range hub.tabs {
		tabs = append(tabs, Tab{Target: target, URL: url})
	}
	sort.Slice(tabs, func(i, j int) bool {
		if tabs[i].URL != tabs[j].URL {
			return tabs[i].URL < tabs[j].URL
		}
		return tabs[i].Target < tabs[j].Target
	})
	return tabs
}
