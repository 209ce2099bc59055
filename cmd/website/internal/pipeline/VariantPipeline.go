package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/getoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/s3/putoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/photoessays/pkg/assetkey"
	"github.com/adampresley/photoessays/pkg/services"
	"github.com/adampresley/photoessays/pkg/variants"
	"github.com/alitto/pond/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	"go.uber.org/multierr"
	_ "golang.org/x/image/webp"
)

const (
	jpegQuality        = 82
	webpQuality        = 80
	placeholderQuality = 60
)

var (
	validExt       = []string{".jpg", ".jpeg", ".png", ".webp"}
	decodableKinds = []string{"jpg", "png", "webp"}
)

type VariantPipeline interface {
	Run()
}

type RegistryRefresher interface {
	Refresh(ctx context.Context) error
}

type VariantPipelineConfig struct {
	AwsBucket         string
	AwsRegion         string
	MaxWorkers        int
	Registry          RegistryRefresher
	S3Client          s3.S3Client
	ShutdownCtx       context.Context
	SourceImageFolder string
	VariantBaseURL    string
	VariantFolder     string
	VariantService    services.VariantServicer
}

/*
VariantPipelineService generates the responsive variants of every source photo
in the bucket, records them in the variant store and refreshes the registry the
website resolves images from.
*/
type VariantPipelineService struct {
	awsBucket         string
	awsRegion         string
	maxWorkers        int
	registry          RegistryRefresher
	s3Client          s3.S3Client
	shutdownCtx       context.Context
	sourceImageFolder string
	variantBaseURL    string
	variantFolder     string
	variantService    services.VariantServicer
}

func NewVariantPipelineService(config VariantPipelineConfig) VariantPipelineService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}

	return VariantPipelineService{
		awsBucket:         config.AwsBucket,
		awsRegion:         config.AwsRegion,
		maxWorkers:        config.MaxWorkers,
		registry:          config.Registry,
		s3Client:          config.S3Client,
		shutdownCtx:       config.ShutdownCtx,
		sourceImageFolder: config.SourceImageFolder,
		variantBaseURL:    config.VariantBaseURL,
		variantFolder:     config.VariantFolder,
		variantService:    config.VariantService,
	}
}

func (p VariantPipelineService) Run() {
	var (
		err     error
		sources []s3.Object
		mu      sync.Mutex
		errs    error
	)

	logger := slog.With("runID", uuid.NewString())
	logger.Info("starting variant pipeline...")

	if err = p.ensureBucketExists(p.awsBucket); err != nil {
		logger.Error("error ensuring bucket exists. aborting", "bucket", p.awsBucket, "error", err)
		return
	}

	if sources, err = p.getSourceListing(); err != nil {
		logger.Error("error listing source images", "folder", p.sourceImageFolder, "error", err)
		return
	}

	logger.Info("checking source images for new variants...", "numImages", len(sources))

	pool := pond.NewPool(p.maxWorkers, pond.WithContext(p.shutdownCtx))

	for _, source := range sources {
		pool.Submit(func() {
			if err := p.processSource(logger, source); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		})
	}

	_ = pool.Stop().Wait()

	if errs != nil {
		logger.Error("variant pipeline finished with errors", "numErrors", len(multierr.Errors(errs)), "error", errs)
	}

	if err = p.registry.Refresh(p.shutdownCtx); err != nil {
		logger.Error("error refreshing variant registry", "error", err)
		return
	}

	logger.Info("variant pipeline finished")
}

func (p VariantPipelineService) ensureBucketExists(bucketName string) error {
	var (
		err    error
		exists bool
	)

	exists, err = p.s3Client.BucketExists(bucketName)

	if err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", bucketName, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", bucketName)

	err = p.s3Client.CreateBucket(
		bucketName,
		createbucketoptions.WithRegion(p.awsRegion),
	)

	if err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", bucketName, err)
	}

	return nil
}

func (p VariantPipelineService) getSourceListing() ([]s3.Object, error) {
	var (
		err      error
		response s3.ListResponse
	)

	response, err = p.s3Client.List(
		p.awsBucket,
		p.sourceImageFolder,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			key := aws.ToString(obj.Key)

			if strings.HasPrefix(key, p.variantFolder+"/") {
				return false
			}

			ext := strings.ToLower(filepath.Ext(key))
			return slices.IsInSlice(ext, validExt)
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing source images: %w", err)
	}

	return response.Objects, nil
}

func (p VariantPipelineService) processSource(logger *slog.Logger, source s3.Object) error {
	var (
		err        error
		modified   time.Time
		generated  bool
		original   s3.GetObjectResponse
		data       []byte
		img        image.Image
		jpegs      = map[int]VariantFile{}
		webps      = map[int]VariantFile{}
		payloads   = map[variants.Tier][]byte{}
		setPayload []byte
	)

	key := assetkey.Normalize(source.Key)

	if modified, generated, err = p.variantService.GetSourceModified(p.shutdownCtx, key); err != nil {
		return fmt.Errorf("error checking variants of '%s': %w", source.Key, err)
	}

	if generated && !modified.Before(source.LastModified.Truncate(time.Second)) {
		return nil
	}

	logger.Info("generating variants...", "key", source.Key)

	original, err = p.s3Client.Get(
		p.awsBucket,
		source.Key,
		getoptions.WithContext(p.shutdownCtx),
		getoptions.WithTimeout(time.Minute*2),
	)

	if err != nil {
		return fmt.Errorf("error retrieving source image '%s': %w", source.Key, err)
	}

	defer original.Body.Close()

	if data, err = io.ReadAll(original.Body); err != nil {
		return fmt.Errorf("error reading source image '%s': %w", source.Key, err)
	}

	kind, err := filetype.Match(data)

	if err != nil || !slices.IsInSlice(kind.Extension, decodableKinds) {
		logger.Warn("skipping source with unsupported content", "key", source.Key, "detected", kind.MIME.Value)
		return nil
	}

	if img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err != nil {
		return fmt.Errorf("error decoding source image '%s': %w", source.Key, err)
	}

	sourceWidth := img.Bounds().Dx()
	inlineLadder := Ladder(variants.InlineWidths, sourceWidth)
	posterLadder := Ladder(variants.PosterWidths, sourceWidth)

	for _, width := range Union(inlineLadder, posterLadder) {
		if jpegs[width], webps[width], err = p.putResized(img, source.Key, width); err != nil {
			return err
		}
	}

	ladders := map[variants.Tier][]int{
		variants.TierInline: inlineLadder,
		variants.TierPoster: posterLadder,
	}

	for tier, ladder := range ladders {
		set := BuildSet(Pick(jpegs, ladder), Pick(webps, ladder))

		if setPayload, err = json.Marshal(set); err != nil {
			return fmt.Errorf("error encoding %s variant set for '%s': %w", tier, source.Key, err)
		}

		payloads[tier] = setPayload
	}

	if payloads[variants.TierPlaceholder], err = p.putPlaceholder(img, source.Key); err != nil {
		return err
	}

	if err = p.variantService.SaveVariants(p.shutdownCtx, key, source.LastModified, payloads); err != nil {
		return fmt.Errorf("error saving variants of '%s': %w", source.Key, err)
	}

	return nil
}

/*
putResized uploads one rung of the ladder as a JPEG and as a lossy webp of the
same dimensions.
*/
func (p VariantPipelineService) putResized(img image.Image, sourceKey string, width int) (VariantFile, VariantFile, error) {
	var (
		err      error
		jpegFile VariantFile
		webpFile VariantFile
		jpegBuf  bytes.Buffer
		webpBuf  bytes.Buffer
	)

	resized := resize.Resize(uint(width), 0, img, resize.Lanczos3)

	if err = jpeg.Encode(&jpegBuf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return jpegFile, webpFile, fmt.Errorf("error encoding %dw jpeg variant of '%s': %w", width, sourceKey, err)
	}

	if err = webp.Encode(&webpBuf, resized, webp.Options{Quality: webpQuality}); err != nil {
		return jpegFile, webpFile, fmt.Errorf("error encoding %dw webp variant of '%s': %w", width, sourceKey, err)
	}

	if jpegFile, err = p.putVariant(resized, VariantKey(p.variantFolder, sourceKey, width, ".jpg"), variants.MimeTypeJPEG, &jpegBuf); err != nil {
		return jpegFile, webpFile, err
	}

	if webpFile, err = p.putVariant(resized, VariantKey(p.variantFolder, sourceKey, width, ".webp"), variants.MimeTypeWebP, &webpBuf); err != nil {
		return jpegFile, webpFile, err
	}

	return jpegFile, webpFile, nil
}

func (p VariantPipelineService) putVariant(resized image.Image, key, contentType string, body io.Reader) (VariantFile, error) {
	_, err := p.s3Client.Put(
		p.awsBucket,
		key,
		body,
		putoptions.WithContext(p.shutdownCtx),
		putoptions.WithContentType(contentType),
	)

	if err != nil {
		return VariantFile{}, fmt.Errorf("error uploading variant '%s': %w", key, err)
	}

	return VariantFile{
		Key:    key,
		URL:    PublicURL(p.variantBaseURL, key),
		Width:  resized.Bounds().Dx(),
		Height: resized.Bounds().Dy(),
	}, nil
}

func (p VariantPipelineService) putPlaceholder(img image.Image, sourceKey string) ([]byte, error) {
	var (
		err error
		buf bytes.Buffer
	)

	width := min(variants.PlaceholderWidth, img.Bounds().Dx())
	small := resize.Resize(uint(width), 0, img, resize.Bilinear)

	if err = jpeg.Encode(&buf, small, &jpeg.Options{Quality: placeholderQuality}); err != nil {
		return nil, fmt.Errorf("error encoding placeholder of '%s': %w", sourceKey, err)
	}

	key := PlaceholderKey(p.variantFolder, sourceKey)

	if _, err = p.s3Client.Put(p.awsBucket, key, &buf, putoptions.WithContext(p.shutdownCtx), putoptions.WithContentType(variants.MimeTypeJPEG)); err != nil {
		return nil, fmt.Errorf("error uploading placeholder '%s': %w", key, err)
	}

	return json.Marshal(PublicURL(p.variantBaseURL, key))
}
