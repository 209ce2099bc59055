package viewmodels

import (
	"github.com/adampresley/photoessays/pkg/blocks"
	"github.com/adampresley/photoessays/pkg/countrynav"
	"github.com/adampresley/photoessays/pkg/lightbox"
)

type AlbumPage struct {
	BaseViewModel

	Slug       string
	AlbumTitle string
	Items      []blocks.Item
	CountryNav *countrynav.Nav
	NotFound   bool
}

type LightboxFragment struct {
	BaseViewModel

	Slug     string
	Lightbox lightbox.View
}
