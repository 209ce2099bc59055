package pipeline

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/adampresley/photoessays/pkg/variants"
)

// VariantFile is one encoded width of a source photo.
type VariantFile struct {
	Key    string
	URL    string
	Width  int
	Height int
}

/*
Ladder returns the widths of a ladder that do not upscale a source of the given
width. A source narrower than every rung gets a single rung at its own width.
*/
func Ladder(widths []int, sourceWidth int) []int {
	result := []int{}

	for _, w := range widths {
		if w <= sourceWidth {
			result = append(result, w)
		}
	}

	if len(result) == 0 && sourceWidth > 0 {
		result = append(result, sourceWidth)
	}

	return result
}

// Union merges ladders into one ascending list without duplicates.
func Union(ladders ...[]int) []int {
	seen := map[int]struct{}{}
	result := []int{}

	for _, ladder := range ladders {
		for _, w := range ladder {
			if _, ok := seen[w]; ok {
				continue
			}

			seen[w] = struct{}{}
			result = append(result, w)
		}
	}

	sort.Ints(result)
	return result
}

/*
VariantKey returns the object key of one encoded width. The source folder
structure is kept below the variant folder so keys never collide.
*/
func VariantKey(variantFolder, sourceKey string, width int, ext string) string {
	stem := strings.TrimSuffix(sourceKey, path.Ext(sourceKey))
	return path.Join(variantFolder, fmt.Sprintf("%s-%d%s", stem, width, ext))
}

func PlaceholderKey(variantFolder, sourceKey string) string {
	stem := strings.TrimSuffix(sourceKey, path.Ext(sourceKey))
	return path.Join(variantFolder, stem+"-placeholder.jpg")
}

func PublicURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// Srcset renders files as a srcset attribute value.
func Srcset(files []VariantFile) string {
	parts := make([]string, 0, len(files))

	for _, f := range files {
		parts = append(parts, fmt.Sprintf("%s %dw", f.URL, f.Width))
	}

	return strings.Join(parts, ", ")
}

/*
BuildSet assembles the variant set for one ladder. jpegs must be in ascending
width order. A webp source is only listed when every rung has a webp file, and
it is listed first so browsers that understand it prefer it. The fallback image
is the widest JPEG.
*/
func BuildSet(jpegs, webps []VariantFile) variants.Set {
	result := variants.Set{
		Sources: []variants.Source{},
	}

	if len(jpegs) == 0 {
		return result
	}

	if len(webps) > 0 && len(webps) == len(jpegs) {
		result.Sources = append(result.Sources, variants.Source{
			MimeType: variants.MimeTypeWebP,
			Srcset:   Srcset(webps),
		})
	}

	result.Sources = append(result.Sources, variants.Source{
		MimeType: variants.MimeTypeJPEG,
		Srcset:   Srcset(jpegs),
	})

	widest := jpegs[len(jpegs)-1]

	result.Image = variants.Image{
		Src:    widest.URL,
		Width:  widest.Width,
		Height: widest.Height,
	}

	return result
}

// Pick returns the files whose width is in ladder, keeping ladder order.
func Pick(files map[int]VariantFile, ladder []int) []VariantFile {
	result := []VariantFile{}

	for _, w := range ladder {
		if f, ok := files[w]; ok {
			result = append(result, f)
		}
	}

	return result
}
