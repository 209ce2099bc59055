package variants

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/adampresley/photoessays/pkg/assetkey"
)

// Manifest is the JSON form of the registries:
//
//	{"inline": {key: set}, "poster": {key: set}, "placeholder": {key: "url"}}
type Manifest map[Tier]map[string]json.RawMessage

// ManifestStore serves registry payloads from an in-memory Manifest.
type ManifestStore struct {
	manifest Manifest
}

// NewManifestStore normalizes every key of m so lookups by normalized key
// always match.
func NewManifestStore(m Manifest) *ManifestStore {
	normalized := Manifest{}

	for tier, entries := range m {
		normalized[tier] = make(map[string]json.RawMessage, len(entries))

		for key, payload := range entries {
			normalized[tier][assetkey.Normalize(key)] = payload
		}
	}

	return &ManifestStore{
		manifest: normalized,
	}
}

func ReadManifest(r io.Reader) (*ManifestStore, error) {
	var m Manifest

	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("error decoding variant manifest: %w", err)
	}

	return NewManifestStore(m), nil
}

func (s *ManifestStore) Keys(ctx context.Context, tier Tier) ([]string, error) {
	result := make([]string, 0, len(s.manifest[tier]))

	for key := range s.manifest[tier] {
		result = append(result, key)
	}

	sort.Strings(result)
	return result, nil
}

func (s *ManifestStore) Payload(ctx context.Context, tier Tier, key string) ([]byte, error) {
	payload, ok := s.manifest[tier][key]

	if !ok {
		return nil, fmt.Errorf("no %s variant for key '%s'", tier, key)
	}

	return payload, nil
}
