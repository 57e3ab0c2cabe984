package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractClient runs OCR through the linked tesseract library.
type TesseractClient struct {
	cfg OCRConfig
}

func NewTesseractClient(cfg OCRConfig) *TesseractClient {
	return &TesseractClient{
		cfg: cfg,
	}
}

func (tc *TesseractClient) Name() string { return "tesseract-library" }

// Available is always true: the library is linked in.
func (tc *TesseractClient) Available() bool { return true }

// Recognize extracts text and the average word confidence from a PNG image
func (tc *TesseractClient) Recognize(ctx context.Context, png []byte, lang, config string) (OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return OCRResult{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if tc.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(tc.cfg.TessdataPrefix); err != nil {
			return OCRResult{}, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return OCRResult{}, fmt.Errorf("failed to set language: %w", err)
	}
	if psm, ok := ParsePSM(config); ok {
		if err := client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
			return OCRResult{}, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return OCRResult{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to extract text: %w", err)
	}

	// Get bounding boxes to calculate confidence
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return OCRResult{Text: text}, nil
	}

	var totalConf float64
	var count int
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		totalConf += box.Confidence
		count++
	}

	avgConf := 0.0
	if count > 0 {
		avgConf = totalConf / float64(count)
	}
	return OCRResult{Text: text, Confidence: avgConf}, nil
}
