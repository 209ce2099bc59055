package variants

import "context"

// Resolver picks the best available variant set for a normalized key.
type Resolver struct {
	registry *Registry
}

func NewResolver(registry *Registry) Resolver {
	return Resolver{
		registry: registry,
	}
}

/*
Resolve returns the variant set for key. Posters prefer the poster ladder and
fall back to the inline ladder for the same key. Inline images only consult the
inline ladder. The second return value is false when nothing usable exists.
*/
func (r Resolver) Resolve(ctx context.Context, key string, intent Intent) (Set, bool) {
	if intent == IntentPoster {
		if set, ok := r.lookup(ctx, TierPoster, key); ok {
			return set, true
		}
	}

	return r.lookup(ctx, TierInline, key)
}

func (r Resolver) lookup(ctx context.Context, tier Tier, key string) (Set, bool) {
	payload, ok := r.registry.Load(ctx, tier, key)

	if !ok {
		return Set{}, false
	}

	return ParseSet(payload)
}

// PlaceholderLoader resolves the low resolution stand-in for a normalized key.
type PlaceholderLoader struct {
	registry *Registry
}

func NewPlaceholderLoader(registry *Registry) PlaceholderLoader {
	return PlaceholderLoader{
		registry: registry,
	}
}

// Resolve returns the placeholder URL for key, or an empty string.
func (l PlaceholderLoader) Resolve(ctx context.Context, key string) string {
	payload, ok := l.registry.Load(ctx, TierPlaceholder, key)

	if !ok {
		return ""
	}

	return ParsePlaceholder(payload)
}
