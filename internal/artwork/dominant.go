package artwork

import (
	"errors"
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"

	"karolbroda.com/kraken/internal/colors"
)

var (
	ErrNoPixels = errors.New("image has no pixels")
	ErrExtract  = errors.New("color extraction failed")
)

type Method string

const (
	// MethodAverage reduces the image to one pixel with a box filter.
	MethodAverage Method = "average"
	// MethodKmeans picks the largest k-means cluster.
	MethodKmeans Method = "kmeans"
)

func (m Method) Valid() bool {
	return m == MethodAverage || m == MethodKmeans
}

const (
	kmeansClusters = 3
	thumbnailSize  = 128
)

// Dominant returns one representative color for img. The source image is
// never modified; both methods work on a derived copy.
func Dominant(img image.Image, method Method) (c colors.RGB, err error) {
	if img == nil {
		return colors.RGB{}, ErrNoPixels
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return colors.RGB{}, ErrNoPixels
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExtract, r)
		}
	}()

	switch method {
	case MethodKmeans:
		return kmeansColor(img)
	case MethodAverage, "":
		return averageColor(img), nil
	}
	return colors.RGB{}, fmt.Errorf("%w: unknown method %q", ErrExtract, method)
}

func averageColor(img image.Image) colors.RGB {
	px := imaging.Resize(img, 1, 1, imaging.Box).NRGBAAt(0, 0)
	return colors.RGB{R: px.R, G: px.G, B: px.B}
}

func kmeansColor(img image.Image) (colors.RGB, error) {
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Box)

	items, err := prominentcolor.KmeansWithAll(
		kmeansClusters,
		thumb,
		prominentcolor.ArgumentNoCropping,
		thumbnailSize,
		prominentcolor.GetDefaultMasks(),
	)
	if err != nil || len(items) == 0 {
		// masks can remove every pixel of a black or white cover; retry without them
		items, err = prominentcolor.KmeansWithAll(kmeansClusters, thumb, prominentcolor.ArgumentNoCropping, thumbnailSize, nil)
	}
	if err != nil {
		return colors.RGB{}, fmt.Errorf("%w: %w", ErrExtract, err)
	}
	if len(items) == 0 {
		return colors.RGB{}, fmt.Errorf("%w: no clusters", ErrExtract)
	}

	best := items[0]
	for _, it := range items[1:] {
		if it.Cnt > best.Cnt {
			best = it
		}
	}
	return colors.RGB{R: uint8(best.Color.R), G: uint8(best.Color.G), B: uint8(best.Color.B)}, nil
}
