package client

import (
	"context"
	"regexp"
	"strconv"
)

// OCRConfig carries the OCR engine settings. It is passed to engines at
// construction; nothing reads the process environment.
type OCRConfig struct {
	EnginePath              string
	TessdataPrefix          string
	Languages               []string
	PageSegmentationConfigs []string
}

// OCRResult is recognized text with its mean word confidence on a 0-100 scale.
type OCRResult struct {
	Text       string
	Confidence float64
}

// OCREngine recognizes text in a PNG image for one language string (e.g.
// "ara+eng") and one segmentation config (e.g. "--oem 3 --psm 6").
type OCREngine interface {
	Name() string
	Available() bool
	Recognize(ctx context.Context, png []byte, lang, config string) (OCRResult, error)
}

// NewOCREngine picks the linked library engine or the external binary.
func NewOCREngine(engine string, cfg OCRConfig) OCREngine {
	if engine == "cli" {
		return NewTesseractCLI(cfg)
	}
	return NewTesseractClient(cfg)
}

var psmFlag = regexp.MustCompile(`--psm\s+(\d+)`)

// ParsePSM pulls the page segmentation mode out of a config string.
func ParsePSM(config string) (int, bool) {
	m := psmFlag.FindStringSubmatch(config)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 13 {
		return 0, false
	}
	return n, true
}
