package albums

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/photoessays/cmd/website/internal/configuration"
	"github.com/adampresley/photoessays/cmd/website/internal/viewmodels"
	"github.com/adampresley/photoessays/pkg/blocks"
	"github.com/adampresley/photoessays/pkg/countrynav"
	"github.com/adampresley/photoessays/pkg/lightbox"
	"github.com/adampresley/photoessays/pkg/models"
	"github.com/adampresley/photoessays/pkg/presenter"
	"github.com/adampresley/photoessays/pkg/services"
)

type AlbumHandlers interface {
	AlbumPage(w http.ResponseWriter, r *http.Request)
	LightboxFragment(w http.ResponseWriter, r *http.Request)
}

type AlbumControllerConfig struct {
	AlbumService services.AlbumServicer
	Config       *configuration.Config
	Presenter    presenter.Presenter
	Renderer     rendering.TemplateRenderer
}

type AlbumController struct {
	albumService services.AlbumServicer
	config       *configuration.Config
	presenter    presenter.Presenter
	renderer     rendering.TemplateRenderer
}

func NewAlbumController(config AlbumControllerConfig) AlbumController {
	return AlbumController{
		albumService: config.AlbumService,
		config:       config.Config,
		presenter:    config.Presenter,
		renderer:     config.Renderer,
	}
}

/*
GET /albums/{slug}
*/
func (c AlbumController) AlbumPage(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		album *models.Album
		index models.AlbumIndex
	)

	pageName := "pages/album"
	slug := httphelpers.GetFromRequest[string](r, "slug")

	viewData := viewmodels.AlbumPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/album.js"},
			},
			OnAlbumPage:      true,
			PhotographerName: c.config.PhotographerName,
		},
		Slug:  slug,
		Items: []blocks.Item{},
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()

	if album, err = c.albumService.GetAlbum(ctx, slug); err != nil {
		if !errors.Is(err, services.ErrAlbumNotFound) {
			slog.Error("error getting album", "error", err, "slug", slug)
		}

		viewData.NotFound = true
		viewData.IsError = true
		viewData.Message = "Album not found."

		w.WriteHeader(http.StatusNotFound)
		c.renderer.Render(pageName, viewData, w)
		return
	}

	renderer := blocks.NewRenderer(blocks.RendererConfig{
		Presenter: c.presenter,
	})

	viewData.AlbumTitle = album.AlbumTitle
	viewData.Items = renderer.Render(ctx, album.Blocks)

	if index, err = c.albumService.GetAlbumIndex(ctx); err != nil {
		slog.Error("error getting album index for country navigation", "error", err, "slug", slug)
	} else {
		viewData.CountryNav = countrynav.Build(slug, index)
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /albums/{slug}/lightbox?block=&photo=
*/
func (c AlbumController) LightboxFragment(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		album *models.Album
		block int
		photo int
	)

	pageName := "pages/lightbox"
	slug := httphelpers.GetFromRequest[string](r, "slug")

	if block, err = strconv.Atoi(httphelpers.GetFromRequest[string](r, "block")); err != nil {
		httphelpers.WriteText(w, http.StatusBadRequest, "invalid block")
		return
	}

	if photo, err = strconv.Atoi(httphelpers.GetFromRequest[string](r, "photo")); err != nil {
		httphelpers.WriteText(w, http.StatusBadRequest, "invalid photo")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()

	if album, err = c.albumService.GetAlbum(ctx, slug); err != nil {
		if !errors.Is(err, services.ErrAlbumNotFound) {
			slog.Error("error getting album for lightbox", "error", err, "slug", slug)
		}

		httphelpers.WriteText(w, http.StatusNotFound, "album not found")
		return
	}

	/*
	 * Key handling for the overlay lives in the page, so the machine gets no
	 * key target here.
	 */
	machine := lightbox.NewMachine(lightbox.MachineConfig{
		Presenter: c.presenter,
	})

	renderer := blocks.NewRenderer(blocks.RendererConfig{
		Presenter: c.presenter,
		Activate: func(src, caption string) {
			machine.Activate(ctx, src, caption)
		},
	})

	item, ok := renderer.RenderBlock(ctx, album.Blocks, block)

	if !ok {
		httphelpers.WriteText(w, http.StatusNotFound, "photo not found")
		return
	}

	figure, ok := item.FigureAt(photo)

	if !ok {
		httphelpers.WriteText(w, http.StatusNotFound, "photo not found")
		return
	}

	figure.Click()

	if err = machine.WaitForImage(ctx); err != nil {
		slog.Error("timed out resolving lightbox image", "error", err, "slug", slug, "block", block, "photo", photo)
	}

	viewData := viewmodels.LightboxFragment{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: true,
		},
		Slug:     slug,
		Lightbox: machine.View(),
	}

	c.renderer.Render(pageName, viewData, w)
}
