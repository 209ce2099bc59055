package presenter

import (
	"context"
	"strings"
	"sync"

	"github.com/adampresley/photoessays/pkg/assetkey"
	"github.com/adampresley/photoessays/pkg/variants"
)

type VariantResolver interface {
	Resolve(ctx context.Context, key string, intent variants.Intent) (variants.Set, bool)
}

type PlaceholderResolver interface {
	Resolve(ctx context.Context, key string) string
}

// Props describes one image to present.
type Props struct {
	Src       string
	Alt       string
	Sizes     string
	Intent    variants.Intent
	Layout    LayoutMode
	Loading   Loading
	ClassName string

	// OnLoad is called once the chosen image element has finished loading.
	OnLoad func()
}

func (p Props) layout() LayoutMode {
	if p.Layout == "" {
		return LayoutNatural
	}

	return p.Layout
}

func (p Props) loading() Loading {
	if p.Loading == "" {
		return LoadingLazy
	}

	return p.Loading
}

type PresenterConfig struct {
	Resolver     VariantResolver
	Placeholders PlaceholderResolver

	// AssetBaseURL is joined with raw asset references for images that have no
	// managed variants. Defaults to "/".
	AssetBaseURL string
}

// Presenter turns asset references into renderable image views.
type Presenter struct {
	resolver     VariantResolver
	placeholders PlaceholderResolver
	assetBaseURL string
}

func NewPresenter(config PresenterConfig) Presenter {
	base := config.AssetBaseURL

	if base == "" {
		base = "/"
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return Presenter{
		resolver:     config.Resolver,
		placeholders: config.Placeholders,
		assetBaseURL: base,
	}
}

/*
Present resolves the variant set and the placeholder concurrently and returns
the final view. Failures never surface; they degrade to a direct image or, for
posters, an empty decorative block.
*/
func (p Presenter) Present(ctx context.Context, props Props) View {
	var (
		wg    sync.WaitGroup
		state imageState
	)

	key := assetkey.Normalize(props.Src)

	wg.Add(2)

	go func() {
		defer wg.Done()
		state.set, state.usable = p.resolver.Resolve(ctx, key, props.Intent)
	}()

	go func() {
		defer wg.Done()
		state.placeholder = p.placeholders.Resolve(ctx, key)
	}()

	wg.Wait()

	state.resolved = true
	return p.compose(props, state)
}
