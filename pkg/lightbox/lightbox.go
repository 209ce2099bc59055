package lightbox

import (
	"context"
	"sync"

	"github.com/adampresley/photoessays/pkg/presenter"
	"github.com/adampresley/photoessays/pkg/variants"
)

const (
	Sizes      = "100vw"
	defaultAlt = "Photo"
)

// Target is the element a pointer click landed on.
type Target int

const (
	TargetBackdrop Target = iota
	TargetPanel
	TargetCloseControl
)

type Photo struct {
	Src     string
	Caption string
}

// View is what the overlay renders. A closed lightbox renders nothing.
type View struct {
	Open    bool
	Src     string
	Caption string
	Image   presenter.View
}

type MachineConfig struct {
	// Keys is the window-wide key source. When nil no Escape listener is
	// subscribed and key handling is left to the page.
	Keys      KeyTarget
	Presenter presenter.Presenter

	// OnChange is called after every transition and every image update.
	OnChange func(View)
}

/*
Machine is the single-photo overlay. It is either closed or open on one
photo; opening another photo replaces the current one. The Escape key listener
is subscribed only while the overlay is open.
*/
type Machine struct {
	keys     KeyTarget
	onChange func(View)
	image    *presenter.Image

	mu          sync.Mutex
	open        bool
	photo       Photo
	unsubscribe func()
}

func NewMachine(config MachineConfig) *Machine {
	m := &Machine{
		keys:     config.Keys,
		onChange: config.OnChange,
	}

	m.image = config.Presenter.NewImage(func(presenter.View) {
		m.notify()
	})

	return m
}

// Activate opens the overlay on a photo, replacing any photo already shown.
func (m *Machine) Activate(ctx context.Context, src, caption string) {
	m.mu.Lock()

	if !m.open && m.keys != nil {
		m.unsubscribe = m.keys.AddKeyListener(m.handleKey)
	}

	m.open = true
	m.photo = Photo{Src: src, Caption: caption}
	m.mu.Unlock()

	alt := caption

	if alt == "" {
		alt = defaultAlt
	}

	m.image.Update(ctx, presenter.Props{
		Src:       src,
		Alt:       alt,
		Sizes:     Sizes,
		Intent:    variants.IntentInline,
		Loading:   presenter.LoadingEager,
		ClassName: "lightbox-img",
	})
}

// Click handles a pointer click inside the overlay. Clicks on the inner panel
// do not close it.
func (m *Machine) Click(target Target) {
	switch target {
	case TargetBackdrop, TargetCloseControl:
		m.Close()
	case TargetPanel:
	}
}

// Close closes the overlay and removes the Escape listener. Closing a closed
// overlay does nothing.
func (m *Machine) Close() {
	m.mu.Lock()

	if !m.open {
		m.mu.Unlock()
		return
	}

	unsubscribe := m.unsubscribe
	m.open = false
	m.photo = Photo{}
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	m.image.Reset()
	m.notify()
}

// State returns the open photo, and false when the overlay is closed.
func (m *Machine) State() (Photo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.photo, m.open
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return View{}
	}

	return View{
		Open:    true,
		Src:     m.photo.Src,
		Caption: m.photo.Caption,
		Image:   m.image.View(),
	}
}

// WaitForImage blocks until the open photo's image has been resolved.
func (m *Machine) WaitForImage(ctx context.Context) error {
	return m.image.Wait(ctx)
}

// ImageLoaded forwards the load notification of the enlarged image.
func (m *Machine) ImageLoaded() {
	m.image.Loaded()
}

func (m *Machine) handleKey(key string) {
	if key == "Escape" {
		m.Close()
	}
}

func (m *Machine) notify() {
	if m.onChange != nil {
		m.onChange(m.View())
	}
}
