package models

// AlbumIndexEntry is one album as listed in the album index.
type AlbumIndexEntry struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	PosterSrc string `json:"posterSrc"`
	Country   string `json:"country,omitempty"`
}

// Label is the display name of the album, falling back to its slug.
func (e AlbumIndexEntry) Label() string {
	if e.Title != "" {
		return e.Title
	}

	return e.Slug
}

// AlbumIndex is the ordered list of albums. Order is display order.
type AlbumIndex []AlbumIndexEntry

func (idx AlbumIndex) FindBySlug(slug string) (AlbumIndexEntry, bool) {
	for _, entry := range idx {
		if entry.Slug == slug {
			return entry, true
		}
	}

	return AlbumIndexEntry{}, false
}

// Album is an album document: a title and the ordered blocks of its photo
// essay.
type Album struct {
	AlbumTitle string `json:"albumTitle"`
	Blocks     Blocks `json:"blocks"`
}
