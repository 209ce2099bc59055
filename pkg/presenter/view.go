package presenter

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/adampresley/photoessays/pkg/variants"
)

// LayoutMode controls how the image occupies its container.
type LayoutMode string

const (
	// LayoutNatural keeps the image's own aspect ratio.
	LayoutNatural LayoutMode = "natural"

	// LayoutFill stretches the image over its container.
	LayoutFill LayoutMode = "fill"
)

type Loading string

const (
	LoadingLazy  Loading = "lazy"
	LoadingEager Loading = "eager"
)

// Kind says which visual a View renders.
type Kind int

const (
	// KindPending is shown while the variant set is still resolving.
	KindPending Kind = iota

	// KindPicture is a <picture> built from a usable variant set.
	KindPicture

	// KindDirect is a plain <img> pointing at the raw asset reference.
	KindDirect

	// KindEmptyPoster is a decorative box for posters without variants.
	KindEmptyPoster
)

func (k Kind) String() string {
	switch k {
	case KindPending:
		return "pending"
	case KindPicture:
		return "picture"
	case KindDirect:
		return "direct"
	case KindEmptyPoster:
		return "empty-poster"
	}

	return "unknown"
}

type PictureSource struct {
	MimeType string
	Srcset   string
	Sizes    string
}

// View is the renderable result of presenting an image.
type View struct {
	Kind        Kind
	Alt         string
	ClassName   string
	Layout      LayoutMode
	Loading     Loading
	Placeholder string
	Sizes       string
	Sources     []PictureSource
	Src         string
	Width       int
	Height      int
}

func (v View) IsPending() bool     { return v.Kind == KindPending }
func (v View) IsPicture() bool     { return v.Kind == KindPicture }
func (v View) IsDirect() bool      { return v.Kind == KindDirect }
func (v View) IsEmptyPoster() bool { return v.Kind == KindEmptyPoster }

// AspectRatio returns the CSS aspect-ratio value once dimensions are known.
func (v View) AspectRatio() string {
	if v.Width <= 0 || v.Height <= 0 {
		return ""
	}

	return fmt.Sprintf("%d / %d", v.Width, v.Height)
}

/*
Style returns the inline style for the image element or the placeholder
container. The placeholder is composited as a background until the chosen
image has loaded.
*/
func (v View) Style() template.CSS {
	b := strings.Builder{}
	b.WriteString("width: 100%; ")

	if v.Layout == LayoutFill {
		b.WriteString("height: 100%; ")
	} else {
		b.WriteString("height: auto; ")

		if ratio := v.AspectRatio(); ratio != "" {
			b.WriteString("aspect-ratio: " + ratio + "; ")
		}
	}

	b.WriteString("object-fit: cover; display: block;")

	if v.Placeholder != "" {
		b.WriteString(" background-image: url('" + cssURL(v.Placeholder) + "');")
		b.WriteString(" background-size: cover; background-position: center;")
	}

	return template.CSS(b.String())
}

var cssURLReplacer = strings.NewReplacer(
	`'`, "%27",
	`"`, "%22",
	`(`, "%28",
	`)`, "%29",
	`\`, "%5C",
	"\n", "",
	"\r", "",
)

func cssURL(u string) string {
	return cssURLReplacer.Replace(u)
}

type imageState struct {
	resolved    bool
	usable      bool
	set         variants.Set
	placeholder string
	loaded      bool
}

func (p Presenter) compose(props Props, state imageState) View {
	result := View{
		Alt:       props.Alt,
		ClassName: props.ClassName,
		Layout:    props.layout(),
		Loading:   props.loading(),
		Sizes:     props.Sizes,
	}

	if !state.resolved {
		result.Kind = KindPending
		result.Placeholder = state.placeholder
		return result
	}

	if !state.loaded {
		result.Placeholder = state.placeholder
	}

	if state.usable {
		result.Kind = KindPicture
		result.Src = state.set.Image.Src
		result.Width = state.set.Image.Width
		result.Height = state.set.Image.Height

		for _, source := range state.set.Sources {
			result.Sources = append(result.Sources, PictureSource{
				MimeType: source.MimeType,
				Srcset:   source.Srcset,
				Sizes:    props.Sizes,
			})
		}

		return result
	}

	if props.Intent == variants.IntentPoster {
		result.Kind = KindEmptyPoster
		result.Placeholder = ""
		return result
	}

	result.Kind = KindDirect
	result.Src = p.withBase(props.Src)
	return result
}

func (p Presenter) withBase(src string) string {
	return p.assetBaseURL + strings.TrimPrefix(src, "/")
}
