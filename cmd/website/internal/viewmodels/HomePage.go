package viewmodels

import "github.com/adampresley/photoessays/pkg/presenter"

type HomePage struct {
	BaseViewModel
	Featured []AlbumTile
	Albums   []AlbumTile
}

type AlbumTile struct {
	Slug   string
	Title  string
	Href   string
	Poster presenter.View
}
