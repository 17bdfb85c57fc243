package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// FetchImage retrieves and decodes a scene image. PNG, JPEG, GIF, and WebP
// are accepted, the formats the scene generation services emit.
func (f *Fetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", ref, err)
	}
	return img, nil
}
