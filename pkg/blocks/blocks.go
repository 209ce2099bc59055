package blocks

import (
	"context"
	"html/template"
	"strings"

	"github.com/adampresley/photoessays/pkg/models"
	"github.com/adampresley/photoessays/pkg/presenter"
	"github.com/adampresley/photoessays/pkg/variants"
)

/*
Sizes hints handed to the image presenter. Hero blocks stay near full width at
every breakpoint, other photos take roughly a third of wide viewports, and
cluster members use a slightly tighter hint regardless of the cluster.
*/
const (
	HeroSizes    = "(max-width: 720px) 100vw, (max-width: 1200px) 90vw, 90vw"
	DefaultSizes = "(max-width: 720px) 100vw, (max-width: 1200px) 45vw, 30vw"
	ClusterSizes = "(max-width: 720px) 100vw, (max-width: 1200px) 40vw, 28vw"
)

const (
	FieldNotesLabel = "Field notes"
	defaultAlt      = "Photo"
	pairClusterCSS  = "max-width: 800px; margin: 0 auto;"
)

// ActivateFunc opens the lightbox for a photo.
type ActivateFunc func(src, caption string)

type ImagePresenter interface {
	Present(ctx context.Context, props presenter.Props) presenter.View
}

type ItemKind int

const (
	ItemEmpty ItemKind = iota
	ItemText
	ItemPhoto
	ItemCluster
	ItemFieldNotes
)

// Item is the rendered form of one block. Unknown blocks produce an ItemEmpty
// so positions always line up with the source document.
type Item struct {
	Index     int
	Kind      ItemKind
	Hero      bool
	ClassName string
	Style     template.CSS
	Content   string
	Label     string
	Figure    *Figure
	Figures   []Figure
}

func (i Item) IsEmpty() bool      { return i.Kind == ItemEmpty }
func (i Item) IsText() bool       { return i.Kind == ItemText }
func (i Item) IsPhoto() bool      { return i.Kind == ItemPhoto }
func (i Item) IsCluster() bool    { return i.Kind == ItemCluster }
func (i Item) IsFieldNotes() bool { return i.Kind == ItemFieldNotes }

// FigureAt returns the photo at position photo within the item. A single photo
// item only has position 0.
func (i Item) FigureAt(photo int) (Figure, bool) {
	switch i.Kind {
	case ItemPhoto:
		if photo == 0 && i.Figure != nil {
			return *i.Figure, true
		}

	case ItemCluster:
		if photo >= 0 && photo < len(i.Figures) {
			return i.Figures[photo], true
		}
	}

	return Figure{}, false
}

// Figure is a photo that opens the lightbox on click, Enter or Space.
type Figure struct {
	Src       string
	Caption   string
	ClassName string
	Image     presenter.View

	activate ActivateFunc
}

// Click handles a pointer activation.
func (f Figure) Click() {
	if f.activate != nil {
		f.activate(f.Src, f.Caption)
	}
}

// KeyDown handles a key press on the focused figure. It returns true when the
// key activated the figure and the browser default (scrolling on Space) must
// be suppressed.
func (f Figure) KeyDown(key string) bool {
	switch key {
	case "Enter", " ", "Spacebar":
		f.Click()
		return true
	}

	return false
}

type RendererConfig struct {
	Presenter ImagePresenter
	Activate  ActivateFunc
}

// Renderer lays out an album's blocks.
type Renderer struct {
	presenter ImagePresenter
	activate  ActivateFunc
}

func NewRenderer(config RendererConfig) Renderer {
	return Renderer{
		presenter: config.Presenter,
		activate:  config.Activate,
	}
}

// HeroIndex returns the position of the first photo or photo cluster, or -1.
func HeroIndex(blocks models.Blocks) int {
	for index, block := range blocks {
		if models.IsVisual(block) {
			return index
		}
	}

	return -1
}

// Render returns exactly one Item per block, in document order.
func (r Renderer) Render(ctx context.Context, blocks models.Blocks) []Item {
	heroIndex := HeroIndex(blocks)
	result := make([]Item, 0, len(blocks))

	for index, block := range blocks {
		hero := index == heroIndex || models.SpanOf(block) == models.SpanWide
		result = append(result, r.renderBlock(ctx, index, block, hero))
	}

	return result
}

/*
RenderBlock renders only the block at index, with the same hero assignment it
gets in a full render. It reports false when index is out of range.
*/
func (r Renderer) RenderBlock(ctx context.Context, blocks models.Blocks, index int) (Item, bool) {
	if index < 0 || index >= len(blocks) {
		return Item{}, false
	}

	block := blocks[index]
	hero := index == HeroIndex(blocks) || models.SpanOf(block) == models.SpanWide

	return r.renderBlock(ctx, index, block, hero), true
}

func (r Renderer) renderBlock(ctx context.Context, index int, block models.Block, hero bool) Item {
	result := Item{
		Index: index,
		Kind:  ItemEmpty,
		Hero:  hero,
	}

	switch b := block.(type) {
	case models.TextBlock:
		result.Kind = ItemText
		result.ClassName = "masonry-item text-block full-span"
		result.Content = b.Content

	case models.FieldNotesBlock:
		result.Kind = ItemFieldNotes
		result.ClassName = "masonry-item fieldnotes full-span"
		result.Label = FieldNotesLabel
		result.Content = b.Content

	case models.PhotoBlock:
		sizes := DefaultSizes

		if hero {
			sizes = HeroSizes
		}

		figure := r.figure(ctx, b.Src, b.Caption, sizes, classNames("masonry-item photo-card clickable", hero, "hero"))

		result.Kind = ItemPhoto
		result.ClassName = figure.ClassName
		result.Figure = &figure

	case models.PhotoClusterBlock:
		if b.Photos == nil {
			return result
		}

		result.Kind = ItemCluster
		result.ClassName = classNames(
			classNames("masonry-item cluster-card", hero, "hero"),
			len(b.Photos) == 1, "single-cluster",
		)

		if len(b.Photos) == 2 {
			result.Style = template.CSS(pairClusterCSS)
		}

		for _, photo := range b.Photos {
			result.Figures = append(result.Figures, r.figure(ctx, photo.Src, photo.Caption, ClusterSizes, "photo-card nested clickable"))
		}

	default:
		// Unknown block types keep their slot and render nothing.
	}

	return result
}

func (r Renderer) figure(ctx context.Context, src, caption, sizes, className string) Figure {
	alt := caption

	if alt == "" {
		alt = defaultAlt
	}

	return Figure{
		Src:       src,
		Caption:   caption,
		ClassName: className,
		Image: r.presenter.Present(ctx, presenter.Props{
			Src:    src,
			Alt:    alt,
			Sizes:  sizes,
			Intent: variants.IntentInline,
		}),
		activate: r.activate,
	}
}

func classNames(base string, add bool, className string) string {
	if !add {
		return base
	}

	return strings.TrimSpace(base + " " + className)
}
