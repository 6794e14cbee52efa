package recipe

import (
	"context"
	"fmt"
)

// ImageGenerator turns an image description into a retrievable image URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, description string) (string, error)
}

// AttachImages requests one image per dish, strictly in list order, and
// returns copies of the dishes with ImageURL set and ImageDescription
// cleared. The first failure aborts the batch and no dishes are returned.
func AttachImages(ctx context.Context, dishes []Dish, gen ImageGenerator) ([]Dish, error) {
	out := make([]Dish, len(dishes))
	copy(out, dishes)

	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("image generation for dish %d aborted: %w", i, err)
		}

		url, err := gen.GenerateImage(ctx, out[i].ImageDescription)
		if err != nil {
			return nil, fmt.Errorf("failed to generate image for dish %d (%s): %w", i, out[i].Name, err)
		}

		out[i].ImageURL = url
		out[i].ImageDescription = ""
	}

	return out, nil
}
