package authstate

import (
	"sync"

	"github.com/orderdesk/go-chatbot-client/sessions"
)

// AuthState is the derived, observable view of whether a session is active.
// It is never persisted. Loading is true only during the startup restore.
type AuthState struct {
	IsAuthenticated bool
	User            *sessions.Session
	Loading         bool
}

// Subscriber receives state updates synchronously after each session
// mutation completes.
type Subscriber func(AuthState)

// Broadcaster holds the latest AuthState and fans updates out to explicit
// subscribers. Construct exactly one at application start with
// NewBroadcaster; it lives for the process lifetime and needs no teardown.
type Broadcaster struct {
	mu          sync.RWMutex
	state       AuthState
	subscribers map[int]Subscriber
	nextID      int
}

// NewBroadcaster creates a broadcaster whose initial state is
// {IsAuthenticated: false, User: nil, Loading: true} — loading stays true
// until the first restore publishes.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		state:       AuthState{Loading: true},
		subscribers: make(map[int]Subscriber),
	}
}

// Current returns the latest published state.
func (b *Broadcaster) Current() AuthState {
	b.ensure()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Subscribe registers a subscriber and returns its id for Unsubscribe.
// The subscriber is not called with the current state; read Current first.
func (b *Broadcaster) Subscribe(fn Subscriber) int {
	b.ensure()
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[b.nextID] = fn
	return b.nextID
}

// Unsubscribe removes a subscriber. Unknown ids are a no-op.
func (b *Broadcaster) Unsubscribe(id int) {
	b.ensure()
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Publish stores the new state and invokes every subscriber synchronously.
// Subscribers run outside the broadcaster's lock, so they may re-enter
// Current or Subscribe.
func (b *Broadcaster) Publish(state AuthState) {
	b.ensure()
	b.mu.Lock()
	b.state = state
	subs := make([]Subscriber, 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Token returns the bearer token of the current session, or an empty string
// when unauthenticated. Implements the HTTP client's TokenSource, so every
// outgoing request reads the token from the latest published state.
func (b *Broadcaster) Token() string {
	state := b.Current()
	if state.User == nil {
		return ""
	}
	return state.User.Token
}

// Using a zero-value or nil Broadcaster is a programming error, mirroring a
// consumer existing outside the initialized application root.
func (b *Broadcaster) ensure() {
	if b == nil || b.subscribers == nil {
		panic("authstate: Broadcaster must be created with NewBroadcaster at application start")
	}
}
