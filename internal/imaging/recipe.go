package imaging

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Recipe is a fixed sequence of filters. Steps run in the order grayscale,
// contrast, brightness, sharpen, denoise; zero values skip a step.
type Recipe struct {
	Name       string
	Grayscale  bool
	Contrast   float64 // factor, 1 or 0 disables
	Brightness float64 // percent, 100 or 0 disables
	Sharpen    bool
	Denoise    bool
}

// Recipes are tried in this order when a photo does not decode as is.
var Recipes = []Recipe{
	{Name: "contrast-boost", Contrast: 1.5, Brightness: 110, Sharpen: true},
	{Name: "grayscale-strong", Grayscale: true, Contrast: 1.7, Brightness: 105, Sharpen: true, Denoise: true},
	{Name: "dark-max-contrast", Grayscale: true, Contrast: 1.8, Brightness: 95, Sharpen: true, Denoise: true},
}

// Apply runs r over src and returns a new bitmap.
func (r Recipe) Apply(src *Bitmap) *Bitmap {
	out := src
	if r.Grayscale {
		out = Grayscale(out)
	}
	if r.Contrast != 0 && r.Contrast != 1 {
		out = Contrast(out, r.Contrast)
	}
	if r.Brightness != 0 && r.Brightness != 100 {
		out = Brightness(out, r.Brightness)
	}
	if r.Sharpen {
		out = Sharpen(out)
	}
	if r.Denoise {
		out = Denoise(out)
	}
	if out == src {
		out = src.Clone()
	}
	return out
}

// Enhance builds one candidate per entry of Recipes. Candidates are computed
// concurrently and returned in recipe order.
func Enhance(ctx context.Context, src *Bitmap) ([]*Bitmap, error) {
	out := make([]*Bitmap, len(Recipes))

	g, ctx := errgroup.WithContext(ctx)
	for i, r := range Recipes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = r.Apply(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
