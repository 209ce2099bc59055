package models

/*
AssetVariant is one registry row written by the variant pipeline. Payload is
the JSON of a variant set (inline and poster tiers) or a JSON string URL
(placeholder tier). Times are unix seconds.
*/
type AssetVariant struct {
	AssetKey       string `db:"asset_key"`
	Tier           string `db:"tier"`
	Payload        string `db:"payload"`
	SourceModified int64  `db:"source_modified"`
	UpdatedAt      int64  `db:"updated_at"`
}
