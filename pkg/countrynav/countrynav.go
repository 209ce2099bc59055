package countrynav

import (
	"net/url"

	"github.com/adampresley/photoessays/pkg/models"
)

const Separator = " / "

type Link struct {
	Slug    string
	Label   string
	Href    string
	Current bool

	// Separator is set on every link except the last one.
	Separator string
}

// Nav lists the albums shot in the same country as the current one.
type Nav struct {
	Country string
	Links   []Link
}

/*
Build returns the navigation for the album identified by slug, or nil when the
album is not in the index or has no country. Links keep index order.
*/
func Build(slug string, index models.AlbumIndex) *Nav {
	current, ok := index.FindBySlug(slug)

	if !ok || current.Country == "" {
		return nil
	}

	result := &Nav{
		Country: current.Country,
	}

	for _, entry := range index {
		if entry.Country != current.Country {
			continue
		}

		result.Links = append(result.Links, Link{
			Slug:    entry.Slug,
			Label:   entry.Label(),
			Href:    "/albums/" + url.PathEscape(entry.Slug),
			Current: entry.Slug == slug,
		})
	}

	for i := 0; i < len(result.Links)-1; i++ {
		result.Links[i].Separator = Separator
	}

	return result
}
