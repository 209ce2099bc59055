package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/photoessays/pkg/models"
	"github.com/adampresley/photoessays/pkg/variants"
	"github.com/rfberaldo/sqlz"
)

/*
VariantServicer is the sqlite backed store of the variant registry. It
satisfies variants.Store for the read side and is written by the variant
pipeline.
*/
type VariantServicer interface {
	variants.Store
	GetSourceModified(ctx context.Context, assetKey string) (time.Time, bool, error)
	SaveVariants(ctx context.Context, assetKey string, sourceModified time.Time, payloads map[variants.Tier][]byte) error
}

type VariantServiceConfig struct {
	DB *sqlz.DB
}

type VariantService struct {
	db *sqlz.DB
}

func NewVariantService(config VariantServiceConfig) VariantService {
	return VariantService{
		db: config.DB,
	}
}

func (s VariantService) Keys(ctx context.Context, tier variants.Tier) ([]string, error) {
	var (
		err  error
		rows []models.AssetVariant
	)

	sql := `
SELECT
   v.asset_key
FROM asset_variants AS v
WHERE 1=1
   AND v.tier=?
ORDER BY v.asset_key
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &rows, sql, string(tier)); err != nil {
		return nil, fmt.Errorf("error querying for %s variant keys: %w", tier, err)
	}

	return slices.Map(rows, func(input models.AssetVariant, index int) string {
		return input.AssetKey
	}), nil
}

func (s VariantService) Payload(ctx context.Context, tier variants.Tier, key string) ([]byte, error) {
	var (
		err error
	)

	result := models.AssetVariant{}

	sql := `
SELECT
   v.asset_key
   , v.tier
   , v.payload
FROM asset_variants AS v
WHERE 1=1
   AND v.tier=?
   AND v.asset_key=?
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &result, sql, string(tier), key); err != nil {
		return nil, fmt.Errorf("error querying for %s variant '%s': %w", tier, key, err)
	}

	return []byte(result.Payload), nil
}

/*
GetSourceModified returns the modification time of the source image the
variants of assetKey were generated from. The second return value is false
when no variants were generated yet.
*/
func (s VariantService) GetSourceModified(ctx context.Context, assetKey string) (time.Time, bool, error) {
	var (
		err error
	)

	result := models.AssetVariant{}

	sql := `
SELECT
   v.asset_key
   , MIN(v.source_modified) AS source_modified
FROM asset_variants AS v
WHERE 1=1
   AND v.asset_key=?
GROUP BY v.asset_key
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &result, sql, assetKey); err != nil {
		if sqlz.IsNotFound(err) {
			return time.Time{}, false, nil
		}

		return time.Time{}, false, fmt.Errorf("error querying for source modification time of '%s': %w", assetKey, err)
	}

	return time.Unix(result.SourceModified, 0), true, nil
}

// SaveVariants inserts or replaces the payload of every tier given for
// assetKey.
func (s VariantService) SaveVariants(ctx context.Context, assetKey string, sourceModified time.Time, payloads map[variants.Tier][]byte) error {
	var (
		err error
	)

	sql := `
INSERT INTO asset_variants (
   asset_key,
   tier,
   payload,
   source_modified,
   updated_at
) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (asset_key, tier) DO UPDATE SET
   payload=excluded.payload,
   source_modified=excluded.source_modified,
   updated_at=excluded.updated_at
`

	now := time.Now().Unix()

	for _, tier := range variants.Tiers {
		payload, ok := payloads[tier]

		if !ok {
			continue
		}

		params := []any{
			assetKey,
			string(tier),
			string(payload),
			sourceModified.Unix(),
			now,
		}

		ctx, cancel := context.WithTimeout(ctx, time.Second*5)

		_, err = s.db.Exec(ctx, sql, params...)
		cancel()

		if err != nil {
			return fmt.Errorf("error saving %s variant for '%s': %w", tier, assetKey, err)
		}
	}

	return nil
}
