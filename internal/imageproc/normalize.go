package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	// Registers WebP decoding; imaging itself registers JPEG, PNG and GIF.
	_ "golang.org/x/image/webp"
)

// Processing defaults, mirroring the product image contract.
const (
	DefaultMaxWidth   = 1920
	DefaultSmallWidth = 400
	DefaultQuality    = 80
)

// allowedFormats is the set of upload formats accepted for product images.
var allowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Sniff inspects the image header and returns the detected format. It fails
// on undecodable data and on formats outside the allowed set.
func Sniff(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unrecognized image data")
	}
	if !allowedFormats[format] {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	return format, nil
}

// Variants holds the re-encoded JPEG bytes of both image sizes.
type Variants struct {
	Full  []byte
	Small []byte
}

// Normalizer converts uploads into flattened, downscaled JPEGs.
type Normalizer struct {
	maxWidth   int
	smallWidth int
	quality    int
}

// NewNormalizer creates a normalizer. Zero values fall back to the defaults.
func NewNormalizer(maxWidth, smallWidth, quality int) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if smallWidth <= 0 {
		smallWidth = DefaultSmallWidth
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Normalizer{
		maxWidth:   maxWidth,
		smallWidth: smallWidth,
		quality:    quality,
	}
}

// Normalize decodes the upload, applies the EXIF orientation, flattens any
// alpha channel onto white, and produces the full and small JPEG variants.
// Neither variant is upscaled; encoding strips all metadata.
func (n *Normalizer) Normalize(data []byte) (*Variants, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	flat := flatten(img)

	full, err := n.encode(fit(flat, n.maxWidth))
	if err != nil {
		return nil, err
	}
	small, err := n.encode(fit(flat, n.smallWidth))
	if err != nil {
		return nil, err
	}

	return &Variants{Full: full, Small: small}, nil
}

func (n *Normalizer) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten composites the image onto a white background, discarding alpha.
func flatten(img image.Image) *image.NRGBA {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// fit downscales to the given width preserving aspect ratio. Images already
// narrower come back unchanged.
func fit(img *image.NRGBA, width int) *image.NRGBA {
	if img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}
