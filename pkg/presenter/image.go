package presenter

import (
	"context"
	"sync"

	"github.com/adampresley/photoessays/pkg/assetkey"
	"github.com/adampresley/photoessays/pkg/generation"
)

/*
Image is the asynchronous form of Present. It follows a changing set of Props:
every change of asset key or intent starts a new resolution, and results of
superseded resolutions are discarded instead of overwriting newer state.
*/
type Image struct {
	presenter Presenter
	onChange  func(View)
	guard     generation.Guard

	mu      sync.Mutex
	props   Props
	key     string
	started bool
	state   imageState
	done    chan struct{}
}

// NewImage returns an Image that calls onChange with the new view after every
// committed state change. onChange may be nil.
func (p Presenter) NewImage(onChange func(View)) *Image {
	return &Image{
		presenter: p,
		onChange:  onChange,
	}
}

/*
Update applies new props. When the normalized key or the intent changed, the
variant set and placeholder are resolved again in the background. Other prop
changes (alt text, sizes) only re-render.
*/
func (i *Image) Update(ctx context.Context, props Props) {
	key := assetkey.Normalize(props.Src)

	i.mu.Lock()

	if i.started && key == i.key && props.Intent == i.props.Intent {
		i.props = props
		view := i.viewLocked()
		i.mu.Unlock()

		i.notify(view)
		return
	}

	token := i.guard.Next()
	done := make(chan struct{})

	i.props = props
	i.key = key
	i.started = true
	i.state = imageState{}
	i.done = done

	view := i.viewLocked()
	i.mu.Unlock()

	i.notify(view)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		set, ok := i.presenter.resolver.Resolve(ctx, key, props.Intent)

		i.commit(token, func(state *imageState) {
			state.set = set
			state.usable = ok
			state.resolved = true
		})
	}()

	go func() {
		defer wg.Done()

		placeholder := i.presenter.placeholders.Resolve(ctx, key)

		i.commit(token, func(state *imageState) {
			state.placeholder = placeholder
		})
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
}

/*
Loaded records that the rendered image element finished loading. The
placeholder background is dropped and OnLoad fires, once per resolution.
Views without an image element ignore the call.
*/
func (i *Image) Loaded() {
	i.mu.Lock()

	view := i.viewLocked()

	if i.state.loaded || (view.Kind != KindPicture && view.Kind != KindDirect) {
		i.mu.Unlock()
		return
	}

	i.state.loaded = true
	onLoad := i.props.OnLoad
	view = i.viewLocked()
	i.mu.Unlock()

	if onLoad != nil {
		onLoad()
	}

	i.notify(view)
}

// Reset discards in-flight resolutions and returns the image to its initial,
// empty state.
func (i *Image) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.guard.Invalidate()
	i.props = Props{}
	i.key = ""
	i.started = false
	i.state = imageState{}
	i.done = nil
}

// View returns the current view.
func (i *Image) View() View {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.viewLocked()
}

// Wait blocks until the resolutions of the current props have finished, or ctx
// is done.
func (i *Image) Wait(ctx context.Context) error {
	for {
		i.mu.Lock()
		done := i.done
		i.mu.Unlock()

		if done == nil {
			return nil
		}

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		i.mu.Lock()
		same := i.done == done
		i.mu.Unlock()

		if same {
			return nil
		}
	}
}

func (i *Image) commit(token generation.Token, apply func(state *imageState)) {
	i.mu.Lock()

	if !i.guard.Current(token) {
		i.mu.Unlock()
		return
	}

	apply(&i.state)
	view := i.viewLocked()
	i.mu.Unlock()

	i.notify(view)
}

func (i *Image) viewLocked() View {
	if !i.started {
		return View{Kind: KindPending, Layout: LayoutNatural, Loading: LoadingLazy}
	}

	return i.presenter.compose(i.props, i.state)
}

func (i *Image) notify(view View) {
	if i.onChange != nil {
		i.onChange(view)
	}
}
