package artwork

import (
	"context"
	"image"

	"go.uber.org/zap"

	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/theme"
)

type ImageLoader interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Extractor turns an artwork URL into a theme sample.
type Extractor struct {
	logger   *zap.Logger
	loader   ImageLoader
	method   Method
	contrast colors.Contrast
}

func NewExtractor(logger *zap.Logger, loader ImageLoader, method Method, contrast colors.Contrast) *Extractor {
	if method == "" {
		method = MethodAverage
	}
	return &Extractor{
		logger:   logger,
		loader:   loader,
		method:   method,
		contrast: contrast,
	}
}

func (e *Extractor) Extract(ctx context.Context, url string) (theme.Sample, error) {
	img, err := e.loader.Fetch(ctx, url)
	if err != nil {
		return theme.Sample{}, err
	}
	return e.FromImage(img)
}

// FromImage derives the sample from an already decoded image.
func (e *Extractor) FromImage(img image.Image) (theme.Sample, error) {
	bg, err := Dominant(img, e.method)
	if err != nil {
		return theme.Sample{}, err
	}

	fg := e.contrast.Foreground(bg)
	e.logger.Debug("artwork color extracted",
		zap.String("method", string(e.method)),
		zap.String("background", bg.Hex()),
		zap.String("foreground", fg.Hex()),
		zap.Float64("luminance", colors.Luminance(bg)))

	return theme.Sample{
		Background:    bg,
		Foreground:    fg,
		HasForeground: true,
		Artwork:       img,
	}, nil
}
