package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/utils/columns"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type PDFProcessor interface {
	// ExtractText returns the document text, one line per text row.
	ExtractText(pdfData []byte, password string) (string, error)
	// ExtractWords returns the positioned words of every page.
	ExtractWords(pdfData []byte, password string) ([][]columns.Word, error)
	// ExtractImages returns the raster images embedded in the document.
	ExtractImages(pdfData []byte, password string) ([]image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func openReader(pdfData []byte, password string) (*pdf.Reader, error) {
	var r *pdf.Reader
	var err error
	if password == "" {
		r, err = pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	} else {
		tried := false
		r, err = pdf.NewReaderEncrypted(bytes.NewReader(pdfData), int64(len(pdfData)), func() string {
			if tried {
				return ""
			}
			tried = true
			return password
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrUnreadableDocument, err)
	}
	return r, nil
}

func (p *pdfProcessor) ExtractText(pdfData []byte, password string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := openReader(pdfData, password)
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

func (p *pdfProcessor) ExtractWords(pdfData []byte, password string) (pages [][]columns.Word, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := openReader(pdfData, password)
	if err != nil {
		return nil, err
	}

	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, glyphWords(page.Content().Text))
	}
	return pages, nil
}

// glyphWords joins the glyph runs of a page into words. A space glyph or a
// horizontal gap wider than a quarter of the font size ends a word. Y grows
// upwards in PDF space, so it is negated to give a top-down coordinate.
func glyphWords(glyphs []pdf.Text) []columns.Word {
	sorted := append([]pdf.Text(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > 1 {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var words []columns.Word
	var cur *columns.Word
	var curY float64
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			words = append(words, *cur)
		}
		cur = nil
	}

	for _, g := range sorted {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		gap := math.Max(g.FontSize*0.25, 1)
		if cur == nil || math.Abs(g.Y-curY) > 1 || g.X-cur.X1 > gap {
			flush()
			cur = &columns.Word{X0: g.X, X1: g.X, Top: -g.Y}
			curY = g.Y
		}
		cur.Text += g.S
		cur.X1 = g.X + g.W
	}
	flush()
	return words
}

func (p *pdfProcessor) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	// Create a temporary directory for extraction
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}

	// nil selects every page
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}
	// pdfcpu names images after their page, keep page order
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	var images []image.Image
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		imgFile, err := os.Open(filepath.Join(tempDir, file.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}

	return images, nil
}
