package variants

import "encoding/json"

// Intent says what an image is being resolved for, which decides the width
// ladder that applies.
type Intent string

const (
	IntentInline Intent = "inline"
	IntentPoster Intent = "poster"
)

// Tier names one of the registries generated by the variant pipeline.
type Tier string

const (
	TierInline      Tier = "inline"
	TierPoster      Tier = "poster"
	TierPlaceholder Tier = "placeholder"
)

// Tiers lists every registry tier, in the order the pipeline writes them.
var Tiers = []Tier{TierInline, TierPoster, TierPlaceholder}

/*
Width ladders produced by the variant pipeline. Poster images get a wider ladder
with a high-DPI option so album tiles stay crisp on large screens.
*/
var (
	InlineWidths = []int{480, 900, 1200}
	PosterWidths = []int{480, 900, 1400, 2400}
)

// PlaceholderWidth is the width of the low resolution stand-in image.
const PlaceholderWidth = 240

const (
	MimeTypeWebP = "image/webp"
	MimeTypeJPEG = "image/jpeg"
)

type Source struct {
	MimeType string `json:"mimeType"`
	Srcset   string `json:"srcset"`
}

type Image struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Set is the family of encoded images generated from one source photo.
type Set struct {
	Sources []Source `json:"sources"`
	Image   Image    `json:"image"`
}

// Usable reports whether the set can be rendered. Anything else is treated as
// if no set existed at all.
func (s Set) Usable() bool {
	return len(s.Sources) > 0 &&
		s.Image.Src != "" &&
		s.Image.Width > 0 &&
		s.Image.Height > 0
}

// ParseSet decodes a registry payload. Malformed or unusable payloads report
// false instead of an error.
func ParseSet(payload []byte) (Set, bool) {
	var result Set

	if len(payload) == 0 {
		return result, false
	}

	if err := json.Unmarshal(payload, &result); err != nil {
		return Set{}, false
	}

	if !result.Usable() {
		return Set{}, false
	}

	return result, true
}

// ParsePlaceholder decodes a placeholder payload, which is a JSON string URL.
func ParsePlaceholder(payload []byte) string {
	var result string

	if len(payload) == 0 {
		return ""
	}

	if err := json.Unmarshal(payload, &result); err != nil {
		return ""
	}

	return result
}
