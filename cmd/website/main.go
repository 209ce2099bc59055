package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/photoessays/cmd/website/internal/albums"
	"github.com/adampresley/photoessays/cmd/website/internal/configuration"
	"github.com/adampresley/photoessays/cmd/website/internal/home"
	"github.com/adampresley/photoessays/cmd/website/internal/pipeline"
	"github.com/adampresley/photoessays/pkg/presenter"
	"github.com/adampresley/photoessays/pkg/services"
	"github.com/adampresley/photoessays/pkg/variants"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "photoessays"

	//go:embed app
	appFS embed.FS

	//go:embed sql-migrations
	sqlMigrationsFs embed.FS

	config configuration.Config

	/* Services */
	albumService    services.AlbumServicer
	db              *sqlz.DB
	documentSource  services.DocumentSource
	imagePresenter  presenter.Presenter
	renderer        rendering.TemplateRenderer
	variantPipeline pipeline.VariantPipeline
	variantRegistry *variants.Registry
	variantService  services.VariantServicer

	/* Controllers */
	albumController albums.AlbumHandlers
	homeController  home.HomeHandlers
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
		slog.String("dataSource", config.DataSource),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	migrateDatabase()

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	documentSource = newDocumentSource(s3Client)

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		Source: documentSource,
	})

	variantService = services.NewVariantService(services.VariantServiceConfig{
		DB: db,
	})

	variantRegistry = variants.NewRegistry(newVariantStore())

	imagePresenter = presenter.NewPresenter(presenter.PresenterConfig{
		Resolver:     variants.NewResolver(variantRegistry),
		Placeholders: variants.NewPlaceholderLoader(variantRegistry),
		AssetBaseURL: config.AssetBaseURL,
	})

	variantPipeline = pipeline.NewVariantPipelineService(pipeline.VariantPipelineConfig{
		AwsBucket:         config.AwsBucket,
		AwsRegion:         config.AwsRegion,
		MaxWorkers:        config.MaxPipelineWorkers,
		Registry:          variantRegistry,
		S3Client:          s3Client,
		ShutdownCtx:       shutdownCtx,
		SourceImageFolder: config.SourceImageFolder,
		VariantBaseURL:    config.VariantBaseURL,
		VariantFolder:     config.VariantFolder,
		VariantService:    variantService,
	})

	/*
	 * Setup controllers
	 */
	albumController = albums.NewAlbumController(albums.AlbumControllerConfig{
		AlbumService: albumService,
		Config:       &config,
		Presenter:    imagePresenter,
		Renderer:     renderer,
	})

	homeController = home.NewHomeController(home.HomeControllerConfig{
		AlbumService: albumService,
		Config:       &config,
		Presenter:    imagePresenter,
		Renderer:     renderer,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	requestLogMiddleware := newRequestLogMiddleware(
		[]string{
			"/static",
			"/heartbeat",
		},
	)

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: homeController.HomePage, Middlewares: []mux.MiddlewareFunc{requestLogMiddleware}},
		{Path: "GET /albums/{slug}", HandlerFunc: albumController.AlbumPage, Middlewares: []mux.MiddlewareFunc{requestLogMiddleware}},
		{Path: "GET /albums/{slug}/lightbox", HandlerFunc: albumController.LightboxFragment, Middlewares: []mux.MiddlewareFunc{requestLogMiddleware}},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the variant pipeline job
	 */
	if config.VariantManifest == "" {
		setupVariantPipeline(quit)
	}

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func migrateDatabase() {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		panic(err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				panic(err)
			}

			if err = runSqlScript(b); err != nil {
				if !isIgnorableError(err) {
					panic(err)
				}
			}
		}
	}
}

func runSqlScript(script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	return false
}

func newDocumentSource(s3Client s3.S3Client) services.DocumentSource {
	if strings.EqualFold(config.DataSource, "local") {
		slog.Info("reading album documents from local directory", "dir", config.LocalDataDir)
		return services.NewFSDocumentSource(os.DirFS(config.LocalDataDir))
	}

	return services.NewS3DocumentSource(services.S3DocumentSourceConfig{
		Bucket:   config.AwsBucket,
		Folder:   config.DataFolder,
		S3Client: s3Client,
	})
}

func newVariantStore() variants.Store {
	if config.VariantManifest == "" {
		return variantService
	}

	f, err := os.Open(config.VariantManifest)

	if err != nil {
		panic(err)
	}

	defer f.Close()

	store, err := variants.ReadManifest(f)

	if err != nil {
		panic(err)
	}

	slog.Info("serving variants from manifest", "path", config.VariantManifest)
	return store
}

func setupVariantPipeline(quit chan os.Signal) {
	interval := time.Duration(max(config.PipelineInterval, 1)) * time.Minute

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		running := false

		runner := func() {
			running = true

			defer func() {
				running = false
			}()

			variantPipeline.Run()
		}

		runner()

		for {
			select {
			case <-quit:
				return

			case <-ticker.C:
				if running {
					slog.Info("variant pipeline already running. skipping...")
					continue
				}

				runner()
			}
		}
	}()
}
