package lightbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/adampresley/photoessays/pkg/presenter"
	"github.com/adampresley/photoessays/pkg/variants"
)

func newTestMachine() (*Machine, *Listeners) {
	registry := variants.NewRegistry(variants.NewManifestStore(variants.Manifest{
		variants.TierInline: {
			"assets/images/b.jpg": json.RawMessage(`{"sources":[{"mimeType":"image/jpeg","srcset":"/v/b-1200.jpg 1200w"}],"image":{"src":"/v/b-1200.jpg","width":1200,"height":900}}`),
		},
	}))

	p := presenter.NewPresenter(presenter.PresenterConfig{
		Resolver:     variants.NewResolver(registry),
		Placeholders: variants.NewPlaceholderLoader(registry),
	})

	keys := NewListeners()

	return NewMachine(MachineConfig{Keys: keys, Presenter: p}), keys
}

func TestActivateReplacesOpenPhoto(t *testing.T) {
	t.Parallel()

	m, keys := newTestMachine()
	ctx := context.Background()

	m.Activate(ctx, "/images/a.jpg", "A")
	m.Activate(ctx, "/images/b.jpg", "B")

	photo, open := m.State()
	if !open {
		t.Fatal("lightbox should be open")
	}

	if photo.Src != "/images/b.jpg" || photo.Caption != "B" {
		t.Errorf("state = %+v, want b.jpg", photo)
	}

	if keys.Count() != 1 {
		t.Errorf("expected exactly one key listener, got %d", keys.Count())
	}
}

func TestEscapeCloses(t *testing.T) {
	t.Parallel()

	m, keys := newTestMachine()
	m.Activate(context.Background(), "/images/a.jpg", "")

	keys.Dispatch("Enter")

	if _, open := m.State(); !open {
		t.Fatal("other keys should not close the lightbox")
	}

	keys.Dispatch("Escape")

	if _, open := m.State(); open {
		t.Error("Escape should close the lightbox")
	}

	if keys.Count() != 0 {
		t.Errorf("listener should be removed on close, %d left", keys.Count())
	}
}

func TestClickTargets(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		target     Target
		expectOpen bool
	}{
		{name: "panel click keeps the overlay open", target: TargetPanel, expectOpen: true},
		{name: "backdrop click closes", target: TargetBackdrop, expectOpen: false},
		{name: "close control closes", target: TargetCloseControl, expectOpen: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newTestMachine()
			m.Activate(context.Background(), "/images/a.jpg", "A")
			m.Click(tc.target)

			photo, open := m.State()
			if open != tc.expectOpen {
				t.Fatalf("open = %v, want %v", open, tc.expectOpen)
			}

			if open && photo.Src != "/images/a.jpg" {
				t.Errorf("panel click changed state: %+v", photo)
			}
		})
	}
}

func TestRepeatedOpenCloseLeavesNoListeners(t *testing.T) {
	t.Parallel()

	m, keys := newTestMachine()
	ctx := context.Background()

	for range 2 {
		m.Activate(ctx, "/images/a.jpg", "A")

		if keys.Count() != 1 {
			t.Fatalf("expected one listener while open, got %d", keys.Count())
		}

		m.Close()
	}

	if keys.Count() != 0 {
		t.Errorf("expected zero listeners, got %d", keys.Count())
	}

	m.Close()

	if keys.Count() != 0 {
		t.Errorf("closing a closed lightbox changed listeners: %d", keys.Count())
	}
}

func TestOpenViewPresentsEagerly(t *testing.T) {
	t.Parallel()

	m, _ := newTestMachine()
	m.Activate(context.Background(), "/images/b.jpg", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.WaitForImage(ctx); err != nil {
		t.Fatalf("WaitForImage error: %v", err)
	}

	view := m.View()

	if !view.Open {
		t.Fatal("view should be open")
	}

	if view.Image.Kind != presenter.KindPicture || view.Image.Src != "/v/b-1200.jpg" {
		t.Errorf("unexpected image view: %+v", view.Image)
	}

	if view.Image.Loading != presenter.LoadingEager || view.Image.Sizes != Sizes {
		t.Errorf("lightbox image should be eager and full width: %+v", view.Image)
	}

	if view.Image.Alt != "Photo" {
		t.Errorf("alt = %q, want Photo", view.Image.Alt)
	}

	m.Close()

	if m.View().Open {
		t.Error("closed view should render nothing")
	}
}

func TestOnChangeIsCalled(t *testing.T) {
	t.Parallel()

	keys := NewListeners()
	registry := variants.NewRegistry(variants.NewManifestStore(variants.Manifest{}))
	p := presenter.NewPresenter(presenter.PresenterConfig{
		Resolver:     variants.NewResolver(registry),
		Placeholders: variants.NewPlaceholderLoader(registry),
	})

	closed := make(chan struct{}, 1)

	m := NewMachine(MachineConfig{
		Keys:      keys,
		Presenter: p,
		OnChange: func(v View) {
			if !v.Open {
				select {
				case closed <- struct{}{}:
				default:
				}
			}
		},
	})

	m.Activate(context.Background(), "/images/a.jpg", "")
	keys.Dispatch("Escape")

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called with a closed view")
	}
}

func TestMachineWithoutKeyTarget(t *testing.T) {
	t.Parallel()

	m := NewMachine(MachineConfig{
		Presenter: presenter.NewPresenter(presenter.PresenterConfig{
			Resolver:     variants.NewResolver(variants.NewRegistry(variants.NewManifestStore(variants.Manifest{}))),
			Placeholders: variants.NewPlaceholderLoader(variants.NewRegistry(variants.NewManifestStore(variants.Manifest{}))),
		}),
	})

	m.Activate(context.Background(), "/images/a.jpg", "A")

	if _, open := m.State(); !open {
		t.Fatal("lightbox should open without a key target")
	}

	m.Close()

	if _, open := m.State(); open {
		t.Error("lightbox should close without a key target")
	}
}
