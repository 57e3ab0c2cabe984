package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
)

// DefaultBinarizeThreshold is the gray level below which a pixel becomes ink.
const DefaultBinarizeThreshold = 180

// ImageProcessor decodes uploads and prepares OCR variants of page images.
type ImageProcessor struct {
	threshold uint8
}

func NewImageProcessor(threshold uint8) *ImageProcessor {
	if threshold == 0 {
		threshold = DefaultBinarizeThreshold
	}
	return &ImageProcessor{threshold: threshold}
}

// Variant is one preprocessed rendition of a page.
type Variant struct {
	Name  string
	Image image.Image
}

// Decode reads JPEG, PNG, GIF and HEIC/HEIF data into a normalised NRGBA image.
func (ip *ImageProcessor) Decode(data []byte) (*image.NRGBA, error) {
	var img image.Image
	var err error
	if isHEIC(data) {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding HEIC/HEIF image: %v", dto.ErrUnreadableDocument, err)
		}
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding image: %v", dto.ErrUnreadableDocument, err)
		}
	}
	return imaging.Clone(img), nil
}

// Variants returns grayscale and binarized renditions of img, each upright
// and turned 90 and 270 degrees counter-clockwise.
func (ip *ImageProcessor) Variants(img image.Image) []Variant {
	gray := imaging.Grayscale(img)
	bw := ip.Binarize(gray)

	return []Variant{
		{Name: "gray", Image: gray},
		{Name: "gray/rot90", Image: imaging.Rotate90(gray)},
		{Name: "gray/rot270", Image: imaging.Rotate270(gray)},
		{Name: "binary", Image: bw},
		{Name: "binary/rot90", Image: imaging.Rotate90(bw)},
		{Name: "binary/rot270", Image: imaging.Rotate270(bw)},
	}
}

// Binarize maps every pixel to black or white around the threshold.
func (ip *ImageProcessor) Binarize(img image.Image) *image.NRGBA {
	th := ip.threshold
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		lum := uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
		if lum < th {
			return color.NRGBA{A: c.A}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
	})
}

// EncodePNG encodes img for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC checks for an ISO media ftyp box with a HEIC/HEIF brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}
