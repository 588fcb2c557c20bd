package ioutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"net/http"

	"golang.org/x/image/draw"
)

// ErrUnsupportedImage is returned for cover art that is neither JPEG nor PNG.
var ErrUnsupportedImage = errors.New("unsupported image type")

// jpegQuality is used for every re-encoded cover.
const jpegQuality = 90

// ImageService prepares cover art before it is embedded into tags or saved
// next to the exported tracks.
//
// Example usage:
//
//	svc := NewImageService()
//	resized, _ := svc.ResizeImage(ctx, coverData, 1000, 1000)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage scales an image down to fit within maxWidth x maxHeight,
// preserving the aspect ratio, and returns it JPEG-encoded.
//
// Images already inside the bounds keep their size but are still re-encoded.
// The Catmull-Rom kernel is used for scaling.
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertToJPEG re-encodes an image (JPEG, PNG) as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FitWithin returns the largest size with the aspect ratio of width x height
// that fits inside maxWidth x maxHeight. Sizes already inside are returned as is.
//
//	FitWithin(1500, 1000, 1000, 1000) // 1000, 666
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	if width <= 0 || height <= 0 {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// height is the limiting side
		return max(int(float64(maxHeight)*ratio), 1), maxHeight
	}
	return maxWidth, max(int(float64(maxWidth)/ratio), 1)
}

// DetectImageMIME sniffs the content type of cover art bytes. Only JPEG and
// PNG are accepted since those are the types ID3 players display reliably.
func DetectImageMIME(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty data", ErrUnsupportedImage)
	}
	switch mime := http.DetectContentType(data); mime {
	case "image/jpeg", "image/png":
		return mime, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}
}
