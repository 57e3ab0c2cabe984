package client

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// MuPDFClient reads and renders PDFs with MuPDF.
type MuPDFClient struct{}

func NewMuPDFClient() *MuPDFClient {
	return &MuPDFClient{}
}

// PageTexts returns the plain text of every page.
func (m *MuPDFClient) PageTexts(pdfData []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("reading page %d text: %w", n+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// RenderPages rasterizes every page at dpi. 144 dpi is twice the PDF's
// native 72 points per inch.
func (m *MuPDFClient) RenderPages(pdfData []byte, dpi float64) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	images := make([]image.Image, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}
