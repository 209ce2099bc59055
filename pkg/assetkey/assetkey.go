package assetkey

import "strings"

const (
	// Root is the canonical prefix every normalized asset key starts with.
	Root = "assets/"

	imagesSegment = "images/"
)

/*
Normalize canonicalizes a logical image reference into the key used to look up
pre-generated variants. "/japan/fuji.jpg", "public/images/japan/fuji.jpg",
"assets/japan/fuji.jpg" and "assets/images/japan/fuji.jpg" all become
"assets/images/japan/fuji.jpg". Normalizing an already normalized key returns
it unchanged.
*/
func Normalize(ref string) string {
	clean := strings.TrimPrefix(ref, "/")
	clean = strings.TrimPrefix(clean, "public/")

	if strings.HasPrefix(clean, Root+imagesSegment) {
		return clean
	}

	clean = strings.TrimPrefix(clean, Root)

	if !strings.HasPrefix(clean, imagesSegment) {
		clean = imagesSegment + clean
	}

	return Root + clean
}
