package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/getoptions"
)

var (
	ErrDocumentNotFound = fmt.Errorf("document not found")
)

// DocumentSource opens the JSON documents (album index, albums) by name.
type DocumentSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type S3DocumentSourceConfig struct {
	Bucket   string
	Folder   string
	S3Client s3.S3Client
}

// S3DocumentSource reads documents from a folder of an S3 bucket.
type S3DocumentSource struct {
	bucket   string
	folder   string
	s3Client s3.S3Client
}

func NewS3DocumentSource(config S3DocumentSourceConfig) S3DocumentSource {
	return S3DocumentSource{
		bucket:   config.Bucket,
		folder:   config.Folder,
		s3Client: config.S3Client,
	}
}

/*
Open returns the body of a document. The object is stat'ed first because a
missing key only surfaces from Get as a bare HTTP status.
*/
func (s S3DocumentSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var (
		err    error
		stat   *s3.ObjectMetadata
		object s3.GetObjectResponse
	)

	key := path.Join(s.folder, name)

	if stat, err = s.s3Client.StatObject(s.bucket, key); err != nil {
		return nil, fmt.Errorf("error checking document '%s' in bucket '%s': %w", key, s.bucket, err)
	}

	if stat == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}

	if object, err = s.s3Client.Get(s.bucket, key, getoptions.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("error getting document '%s' from bucket '%s': %w", key, s.bucket, err)
	}

	return object.Body, nil
}

// FSDocumentSource reads documents from a file system, usually os.DirFS of a
// local data directory.
type FSDocumentSource struct {
	fsys fs.FS
}

func NewFSDocumentSource(fsys fs.FS) FSDocumentSource {
	return FSDocumentSource{
		fsys: fsys,
	}
}

func (s FSDocumentSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fsys.Open(name)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
		}

		return nil, fmt.Errorf("error opening document '%s': %w", name, err)
	}

	return f, nil
}
