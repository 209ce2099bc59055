package presenter

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adampresley/photoessays/pkg/variants"
)

const (
	fujiSet   = `{"sources":[{"mimeType":"image/webp","srcset":"/v/fuji-480.webp 480w"},{"mimeType":"image/jpeg","srcset":"/v/fuji-480.jpg 480w"}],"image":{"src":"/v/fuji-1200.jpg","width":1200,"height":800}}`
	limaSet   = `{"sources":[{"mimeType":"image/jpeg","srcset":"/v/lima-480.jpg 480w"}],"image":{"src":"/v/lima-900.jpg","width":900,"height":600}}`
	sizesHint = "(max-width: 720px) 100vw, 30vw"
)

func newTestPresenter() Presenter {
	registry := variants.NewRegistry(variants.NewManifestStore(variants.Manifest{
		variants.TierInline: {
			"assets/images/japan/fuji.jpg": json.RawMessage(fujiSet),
			"assets/images/peru/lima.jpg":  json.RawMessage(limaSet),
		},
		variants.TierPlaceholder: {
			"assets/images/japan/fuji.jpg":  json.RawMessage(`"/v/fuji-240.jpg"`),
			"assets/images/peru/nowhere.jpg": json.RawMessage(`"/v/nowhere-240.jpg"`),
		},
	}))

	return NewPresenter(PresenterConfig{
		Resolver:     variants.NewResolver(registry),
		Placeholders: variants.NewPlaceholderLoader(registry),
		AssetBaseURL: "/",
	})
}

func TestPresent(t *testing.T) {
	t.Parallel()

	p := newTestPresenter()
	ctx := context.Background()

	testCases := []struct {
		name                string
		props               Props
		expectedKind        Kind
		expectedSrc         string
		expectedPlaceholder string
	}{
		{
			name:                "inline with variants",
			props:               Props{Src: "/images/japan/fuji.jpg", Sizes: sizesHint, Intent: variants.IntentInline},
			expectedKind:        KindPicture,
			expectedSrc:         "/v/fuji-1200.jpg",
			expectedPlaceholder: "/v/fuji-240.jpg",
		},
		{
			name:         "poster falls back to inline variants",
			props:        Props{Src: "public/images/peru/lima.jpg", Intent: variants.IntentPoster},
			expectedKind: KindPicture,
			expectedSrc:  "/v/lima-900.jpg",
		},
		{
			name:                "inline without variants renders the raw reference",
			props:               Props{Src: "/images/peru/nowhere.jpg", Intent: variants.IntentInline},
			expectedKind:        KindDirect,
			expectedSrc:         "/images/peru/nowhere.jpg",
			expectedPlaceholder: "/v/nowhere-240.jpg",
		},
		{
			name:         "inline vector image renders the raw reference",
			props:        Props{Src: "images/logo.svg", Intent: variants.IntentInline},
			expectedKind: KindDirect,
			expectedSrc:  "/images/logo.svg",
		},
		{
			name:         "poster without variants renders an empty block",
			props:        Props{Src: "/images/peru/nowhere.jpg", Intent: variants.IntentPoster},
			expectedKind: KindEmptyPoster,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			view := p.Present(ctx, tc.props)

			if view.Kind != tc.expectedKind {
				t.Fatalf("kind = %s, want %s", view.Kind, tc.expectedKind)
			}

			if view.Src != tc.expectedSrc {
				t.Errorf("src = %q, want %q", view.Src, tc.expectedSrc)
			}

			if view.Placeholder != tc.expectedPlaceholder {
				t.Errorf("placeholder = %q, want %q", view.Placeholder, tc.expectedPlaceholder)
			}
		})
	}
}

func TestPresentSourcesCarrySizes(t *testing.T) {
	t.Parallel()

	view := newTestPresenter().Present(context.Background(), Props{
		Src:    "/images/japan/fuji.jpg",
		Sizes:  sizesHint,
		Intent: variants.IntentInline,
	})

	if len(view.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(view.Sources))
	}

	if view.Sources[0].MimeType != variants.MimeTypeWebP || view.Sources[1].MimeType != variants.MimeTypeJPEG {
		t.Errorf("sources out of order: %+v", view.Sources)
	}

	for _, source := range view.Sources {
		if source.Sizes != sizesHint {
			t.Errorf("source sizes = %q, want %q", source.Sizes, sizesHint)
		}
	}

	if view.Width != 1200 || view.Height != 800 {
		t.Errorf("unexpected dimensions %dx%d", view.Width, view.Height)
	}

	if view.Loading != LoadingLazy || view.Layout != LayoutNatural {
		t.Errorf("unexpected defaults: loading %q, layout %q", view.Loading, view.Layout)
	}
}

func TestEquivalentReferencesRenderIdenticalSources(t *testing.T) {
	t.Parallel()

	p := newTestPresenter()
	ctx := context.Background()

	for _, intent := range []variants.Intent{variants.IntentInline, variants.IntentPoster} {
		a := p.Present(ctx, Props{Src: "/images/japan/fuji.jpg", Sizes: sizesHint, Intent: intent})
		b := p.Present(ctx, Props{Src: "public/images/japan/fuji.jpg", Sizes: sizesHint, Intent: intent})

		if a.Src != b.Src || len(a.Sources) != len(b.Sources) {
			t.Fatalf("intent %s: views differ: %+v vs %+v", intent, a, b)
		}

		for i := range a.Sources {
			if a.Sources[i] != b.Sources[i] {
				t.Errorf("intent %s: source %d differs: %+v vs %+v", intent, i, a.Sources[i], b.Sources[i])
			}
		}
	}
}

func TestViewStyle(t *testing.T) {
	t.Parallel()

	natural := View{Kind: KindPicture, Layout: LayoutNatural, Width: 1200, Height: 800, Placeholder: "/v/a'b.jpg"}
	style := string(natural.Style())

	if !strings.Contains(style, "aspect-ratio: 1200 / 800;") {
		t.Errorf("natural layout should reserve the aspect ratio: %s", style)
	}

	if !strings.Contains(style, "background-image: url('/v/a%27b.jpg');") {
		t.Errorf("placeholder should be escaped into the background: %s", style)
	}

	fill := View{Kind: KindPending, Layout: LayoutFill}
	style = string(fill.Style())

	if !strings.Contains(style, "height: 100%;") {
		t.Errorf("fill layout should stretch: %s", style)
	}

	if strings.Contains(style, "background-image") {
		t.Errorf("no placeholder should mean no background: %s", style)
	}
}

/*
gatedResolver blocks resolutions of selected keys until their gate is closed.
*/
type gatedResolver struct {
	mu    sync.Mutex
	sets  map[string]variants.Set
	gates map[string]chan struct{}
}

func (r *gatedResolver) Resolve(ctx context.Context, key string, intent variants.Intent) (variants.Set, bool) {
	r.mu.Lock()
	gate := r.gates[key]
	set, ok := r.sets[key]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}

	return set, ok
}

type staticPlaceholders map[string]string

func (s staticPlaceholders) Resolve(ctx context.Context, key string) string {
	return s[key]
}

func newGatedPresenter() (Presenter, *gatedResolver) {
	resolver := &gatedResolver{
		sets: map[string]variants.Set{
			"assets/images/a.jpg": {
				Sources: []variants.Source{{MimeType: variants.MimeTypeJPEG, Srcset: "/v/a-480.jpg 480w"}},
				Image:   variants.Image{Src: "/v/a-480.jpg", Width: 480, Height: 320},
			},
			"assets/images/b.jpg": {
				Sources: []variants.Source{{MimeType: variants.MimeTypeJPEG, Srcset: "/v/b-480.jpg 480w"}},
				Image:   variants.Image{Src: "/v/b-480.jpg", Width: 480, Height: 640},
			},
		},
		gates: map[string]chan struct{}{},
	}

	p := NewPresenter(PresenterConfig{
		Resolver: resolver,
		Placeholders: staticPlaceholders{
			"assets/images/a.jpg": "/v/a-240.jpg",
			"assets/images/b.jpg": "/v/b-240.jpg",
		},
	})

	return p, resolver
}

func waitFor(t *testing.T, img *Image) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := img.Wait(ctx); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
}

func TestImageShowsPlaceholderWhileResolving(t *testing.T) {
	t.Parallel()

	p, resolver := newGatedPresenter()
	gate := make(chan struct{})
	resolver.gates["assets/images/a.jpg"] = gate

	placeholderSeen := make(chan View, 1)

	img := p.NewImage(func(v View) {
		if v.Kind == KindPending && v.Placeholder != "" {
			select {
			case placeholderSeen <- v:
			default:
			}
		}
	})

	img.Update(context.Background(), Props{Src: "/images/a.jpg", Intent: variants.IntentInline, Layout: LayoutFill})

	select {
	case v := <-placeholderSeen:
		if v.Placeholder != "/v/a-240.jpg" {
			t.Errorf("placeholder = %q", v.Placeholder)
		}
		if v.Layout != LayoutFill {
			t.Errorf("layout = %q, want fill", v.Layout)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pending view with placeholder never rendered")
	}

	close(gate)
	waitFor(t, img)

	view := img.View()
	if view.Kind != KindPicture || view.Placeholder != "/v/a-240.jpg" {
		t.Errorf("expected picture composited over the placeholder, got %+v", view)
	}
}

func TestImageDiscardsStaleResolutions(t *testing.T) {
	t.Parallel()

	p, resolver := newGatedPresenter()
	gate := make(chan struct{})
	resolver.gates["assets/images/a.jpg"] = gate

	img := p.NewImage(nil)
	ctx := context.Background()

	img.Update(ctx, Props{Src: "/images/a.jpg", Intent: variants.IntentInline})

	img.mu.Lock()
	first := img.done
	img.mu.Unlock()

	img.Update(ctx, Props{Src: "/images/b.jpg", Intent: variants.IntentInline})
	waitFor(t, img)

	close(gate)
	<-first

	view := img.View()
	if view.Src != "/v/b-480.jpg" {
		t.Errorf("stale resolution overwrote newer state: src = %q", view.Src)
	}

	if view.Placeholder != "/v/b-240.jpg" {
		t.Errorf("stale placeholder overwrote newer state: %q", view.Placeholder)
	}
}

func TestImageIntentChangeReResolves(t *testing.T) {
	t.Parallel()

	p, _ := newGatedPresenter()
	img := p.NewImage(nil)
	ctx := context.Background()

	img.Update(ctx, Props{Src: "/images/missing.jpg", Intent: variants.IntentInline})
	waitFor(t, img)

	if img.View().Kind != KindDirect {
		t.Fatalf("expected direct image, got %s", img.View().Kind)
	}

	img.Update(ctx, Props{Src: "/images/missing.jpg", Intent: variants.IntentPoster})
	waitFor(t, img)

	if img.View().Kind != KindEmptyPoster {
		t.Errorf("expected empty poster after the intent changed, got %s", img.View().Kind)
	}
}

func TestImageLoadedFiresOnce(t *testing.T) {
	t.Parallel()

	p, _ := newGatedPresenter()

	var (
		mu    sync.Mutex
		calls int
	)

	img := p.NewImage(nil)
	img.Update(context.Background(), Props{
		Src:    "/images/a.jpg",
		Intent: variants.IntentInline,
		OnLoad: func() {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	})
	waitFor(t, img)

	img.Loaded()
	img.Loaded()

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("OnLoad called %d times, want 1", calls)
	}

	if img.View().Placeholder != "" {
		t.Error("placeholder should be dropped once the image has loaded")
	}
}

func TestImageLoadedIgnoredWithoutImageElement(t *testing.T) {
	t.Parallel()

	p, _ := newGatedPresenter()
	called := false

	img := p.NewImage(nil)
	img.Update(context.Background(), Props{
		Src:    "/images/missing.jpg",
		Intent: variants.IntentPoster,
		OnLoad: func() { called = true },
	})
	waitFor(t, img)

	img.Loaded()

	if called {
		t.Error("OnLoad should not fire for an empty poster")
	}
}

func TestImageReset(t *testing.T) {
	t.Parallel()

	p, resolver := newGatedPresenter()
	gate := make(chan struct{})
	resolver.gates["assets/images/a.jpg"] = gate

	img := p.NewImage(nil)
	img.Update(context.Background(), Props{Src: "/images/a.jpg", Intent: variants.IntentInline})

	img.mu.Lock()
	first := img.done
	img.mu.Unlock()

	img.Reset()
	close(gate)
	<-first

	view := img.View()
	if view.Kind != KindPending || view.Src != "" {
		t.Errorf("reset image should stay empty, got %+v", view)
	}
}
