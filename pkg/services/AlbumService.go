package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adampresley/photoessays/pkg/models"
	"github.com/gosimple/slug"
)

const (
	albumIndexDocument = "albums.json"
	defaultTimeout     = time.Second * 5
)

var (
	ErrAlbumNotFound = fmt.Errorf("album not found")
)

type AlbumServicer interface {
	GetAlbum(ctx context.Context, albumSlug string) (*models.Album, error)
	GetAlbumIndex(ctx context.Context) (models.AlbumIndex, error)
}

type AlbumServiceConfig struct {
	Source  DocumentSource
	Timeout time.Duration
}

type AlbumService struct {
	source  DocumentSource
	timeout time.Duration
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return AlbumService{
		source:  config.Source,
		timeout: config.Timeout,
	}
}

/*
GetAlbum returns the album document for a slug. Slugs that are not URL-safe
never reach the document source and report ErrAlbumNotFound.
*/
func (s AlbumService) GetAlbum(ctx context.Context, albumSlug string) (*models.Album, error) {
	var (
		err error
	)

	result := &models.Album{}

	if !slug.IsSlug(albumSlug) {
		return nil, fmt.Errorf("%w: invalid slug '%s'", ErrAlbumNotFound, albumSlug)
	}

	if err = s.decode(ctx, albumSlug+".json", result); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAlbumNotFound, albumSlug)
		}

		return nil, fmt.Errorf("error getting album '%s': %w", albumSlug, err)
	}

	return result, nil
}

// GetAlbumIndex returns the album index in display order. Entries with a slug
// that is not URL-safe are skipped.
func (s AlbumService) GetAlbumIndex(ctx context.Context) (models.AlbumIndex, error) {
	var (
		err     error
		entries models.AlbumIndex
	)

	if err = s.decode(ctx, albumIndexDocument, &entries); err != nil {
		return nil, fmt.Errorf("error getting album index: %w", err)
	}

	result := make(models.AlbumIndex, 0, len(entries))

	for _, entry := range entries {
		if !slug.IsSlug(entry.Slug) {
			slog.Warn("skipping album index entry with invalid slug", "slug", entry.Slug, "title", entry.Title)
			continue
		}

		result = append(result, entry)
	}

	return result, nil
}

func (s AlbumService) decode(ctx context.Context, name string, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r, err := s.source.Open(ctx, name)

	if err != nil {
		return err
	}

	defer r.Close()

	if err = json.NewDecoder(r).Decode(dest); err != nil {
		return fmt.Errorf("error decoding '%s': %w", name, err)
	}

	return nil
}
