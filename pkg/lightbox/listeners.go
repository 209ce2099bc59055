package lightbox

import "sync"

// KeyListener receives key names as reported by the browser ("Escape", "Enter").
type KeyListener func(key string)

// KeyTarget is the window-wide key event source.
type KeyTarget interface {
	AddKeyListener(listener KeyListener) (remove func())
}

// Listeners is a KeyTarget that fans key events out to its subscribers.
type Listeners struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]KeyListener
}

func NewListeners() *Listeners {
	return &Listeners{
		listeners: map[int]KeyListener{},
	}
}

// AddKeyListener subscribes listener. The returned func removes it and is
// safe to call more than once.
func (l *Listeners) AddKeyListener(listener KeyListener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.listeners[id] = listener

	var once sync.Once

	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, id)
			l.mu.Unlock()
		})
	}
}

// Dispatch delivers key to every current listener. Listeners may unsubscribe
// while being called.
func (l *Listeners) Dispatch(key string) {
	l.mu.Lock()
	current := make([]KeyListener, 0, len(l.listeners))

	for _, listener := range l.listeners {
		current = append(current, listener)
	}

	l.mu.Unlock()

	for _, listener := range current {
		listener(key)
	}
}

// Count returns the number of subscribed listeners.
func (l *Listeners) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.listeners)
}
