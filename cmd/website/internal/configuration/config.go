package configuration

import (
	"log/slog"
	"strings"

	"github.com/adampresley/configinator"
	"github.com/joho/godotenv"
)

type Config struct {
	AssetBaseURL       string `flag:"assetbaseurl" env:"ASSET_BASE_URL" default:"/" description:"Base URL joined with raw asset references for images without generated variants"`
	AwsEndpointUrl     string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion          string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId     string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket          string `flag:"awsbucket" env:"AWS_BUCKET" default:"photoessays" description:"S3 bucket holding documents, source images and variants"`
	DataFolder         string `flag:"datafolder" env:"DATA_FOLDER" default:"data" description:"S3 folder holding albums.json and the album documents"`
	DataSource         string `flag:"datasource" env:"DATA_SOURCE" default:"s3" description:"Where album documents are read from. Valid values are 's3' and 'local'"`
	DSN                string `flag:"dsn" env:"DSN" default:"file:./data/photoessays.db" description:"Data source name"`
	FeaturedAlbums     string `flag:"featured" env:"FEATURED_ALBUMS" default:"a-moment-to-pause,japan-fuji,japan-snow" description:"Comma separated slugs shown in the featured section of the home page"`
	Host               string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LocalDataDir       string `flag:"localdatadir" env:"LOCAL_DATA_DIR" default:"./data" description:"Directory holding the album documents when the data source is 'local'"`
	LogLevel           string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxPipelineWorkers int    `flag:"mpw" env:"MAX_PIPELINE_WORKERS" default:"8" description:"Maximum number of concurrent variant pipeline workers"`
	PhotographerName   string `flag:"photographer" env:"PHOTOGRAPHER_NAME" default:"Akil Hashmi" description:"Name shown in the top bar"`
	PipelineInterval   int    `flag:"pipelineinterval" env:"PIPELINE_INTERVAL_MINUTES" default:"60" description:"Minutes between variant pipeline runs"`
	SourceImageFolder  string `flag:"sif" env:"SOURCE_IMAGE_FOLDER" default:"images" description:"S3 folder holding the source photos"`
	VariantBaseURL     string `flag:"variantbaseurl" env:"VARIANT_BASE_URL" default:"http://localhost:4566/photoessays" description:"Public URL prefix of the generated variants"`
	VariantManifest    string `flag:"variantmanifest" env:"VARIANT_MANIFEST" default:"" description:"Path to a JSON variant manifest. When set, variants are served from it and the pipeline does not run"`
	VariantFolder      string `flag:"vf" env:"VARIANT_FOLDER" default:"variants" description:"S3 folder the variant pipeline writes to"`
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := Config{}
	configinator.Behold(&config)
	return config
}

// FeaturedSlugs returns the configured featured album slugs, in order.
func (c Config) FeaturedSlugs() []string {
	result := []string{}

	for _, s := range strings.Split(c.FeaturedAlbums, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}

	return result
}
