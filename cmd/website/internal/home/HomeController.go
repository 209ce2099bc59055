package home

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/photoessays/cmd/website/internal/configuration"
	"github.com/adampresley/photoessays/cmd/website/internal/viewmodels"
	"github.com/adampresley/photoessays/pkg/models"
	"github.com/adampresley/photoessays/pkg/presenter"
	"github.com/adampresley/photoessays/pkg/services"
	"github.com/adampresley/photoessays/pkg/variants"
)

const (
	PosterSizes = "(max-width: 720px) 100vw, (max-width: 1200px) 50vw, 33vw"
)

type HomeHandlers interface {
	HomePage(w http.ResponseWriter, r *http.Request)
	NotFoundPage(w http.ResponseWriter, r *http.Request)
}

type ImagePresenter interface {
	Present(ctx context.Context, props presenter.Props) presenter.View
}

type HomeControllerConfig struct {
	AlbumService services.AlbumServicer
	Config       *configuration.Config
	Presenter    ImagePresenter
	Renderer     rendering.TemplateRenderer
}

type HomeController struct {
	albumService services.AlbumServicer
	config       *configuration.Config
	presenter    ImagePresenter
	renderer     rendering.TemplateRenderer
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		albumService: config.AlbumService,
		config:       config.Config,
		presenter:    config.Presenter,
		renderer:     config.Renderer,
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		index models.AlbumIndex
	)

	if r.URL.Path != "/" {
		c.NotFoundPage(w, r)
		return
	}

	pageName := "pages/home"

	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			Message:            "",
			IsHtmx:             httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{},
			PhotographerName:   c.config.PhotographerName,
		},
		Featured: []viewmodels.AlbumTile{},
		Albums:   []viewmodels.AlbumTile{},
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()

	if index, err = c.albumService.GetAlbumIndex(ctx); err != nil {
		slog.Error("error getting album index", "error", err)
		viewData.IsError = true
		viewData.Message = "Unable to load albums right now."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	featured, others := SplitFeatured(index, c.config.FeaturedSlugs())

	viewData.Featured = c.tiles(ctx, featured)
	viewData.Albums = c.tiles(ctx, others)

	c.renderer.Render(pageName, viewData, w)
}

func (c HomeController) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.NotFoundPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:           httphelpers.IsHtmx(r),
			Message:          "Page not found.",
			PhotographerName: c.config.PhotographerName,
		},
	}

	w.WriteHeader(http.StatusNotFound)
	c.renderer.Render("pages/not-found", viewData, w)
}

func (c HomeController) tiles(ctx context.Context, entries models.AlbumIndex) []viewmodels.AlbumTile {
	return slices.Map(entries, func(entry models.AlbumIndexEntry, _ int) viewmodels.AlbumTile {
		return viewmodels.AlbumTile{
			Slug:  entry.Slug,
			Title: entry.Label(),
			Href:  "/albums/" + url.PathEscape(entry.Slug),
			Poster: c.presenter.Present(ctx, presenter.Props{
				Src:    entry.PosterSrc,
				Alt:    entry.Label(),
				Sizes:  PosterSizes,
				Intent: variants.IntentPoster,
				Layout: presenter.LayoutFill,
			}),
		}
	})
}

/*
SplitFeatured separates the albums named in featuredSlugs from the rest. Both
halves keep index order.
*/
func SplitFeatured(index models.AlbumIndex, featuredSlugs []string) (models.AlbumIndex, models.AlbumIndex) {
	featured := models.AlbumIndex{}
	others := models.AlbumIndex{}

	for _, entry := range index {
		if slices.IsInSlice(entry.Slug, featuredSlugs) {
			featured = append(featured, entry)
			continue
		}

		others = append(others, entry)
	}

	return featured, others
}
