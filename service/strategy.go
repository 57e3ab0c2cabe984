package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/Aashish23092/statement-extraction/utils/columns"
	"github.com/Aashish23092/statement-extraction/utils/statement"
)

// ErrUnavailable marks a backend that cannot run for this document.
var ErrUnavailable = errors.New("backend unavailable")

// Strategy is one way of getting transactions out of a document.
type Strategy interface {
	Name() string
	// Available reports whether the backend's libraries or binaries are present.
	Available() bool
	Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error)
}

const (
	StrategyDigitalText  = "digital-text-tables"
	StrategyMuPDFText    = "mupdf-text"
	StrategyLayoutTables = "layout-tables"
	StrategyPoppler      = "poppler-tables"
	StrategyOCRPages     = "ocr-pages"
	StrategyOCRImage     = "ocr-image"
)

// digitalConfidence is the OCR-scale confidence given to text read from the
// PDF itself.
const digitalConfidence = 100

// PageTextEngine reads per-page text with an engine of its own.
type PageTextEngine interface {
	PageTexts(pdfData []byte) ([]string, error)
}

// PageRenderer rasterizes PDF pages.
type PageRenderer interface {
	RenderPages(pdfData []byte, dpi float64) ([]image.Image, error)
}

// LayoutEngine produces whitespace-aligned layout text.
type LayoutEngine interface {
	Available() bool
	LayoutText(ctx context.Context, pdfData []byte, password string) (string, error)
}

func parseTables(ctx context.Context, tables []statement.Table) []dto.Transaction {
	sink := logger.SinkFromContext(ctx)
	var out []dto.Transaction
	for _, t := range tables {
		txs, ok := statement.ParseTable(t)
		if !ok {
			logger.Warning(sink, "Table skipped without date or description column", map[string]any{
				"header":  t.Header,
				"columns": t.Columns(),
			})
			continue
		}
		logger.Info(sink, "Table parsed", map[string]any{
			"columns":      t.Columns(),
			"rows":         len(t.Rows),
			"transactions": len(txs),
		})
		out = append(out, txs...)
	}
	return out
}

type digitalTextStrategy struct {
	pdf PDFProcessor
}

// NewDigitalTextStrategy reads tables from the PDF's own text layer and falls
// back to its text rows.
func NewDigitalTextStrategy(pdf PDFProcessor) Strategy {
	return &digitalTextStrategy{pdf: pdf}
}

func (s *digitalTextStrategy) Name() string    { return StrategyDigitalText }
func (s *digitalTextStrategy) Available() bool { return s.pdf != nil }

func (s *digitalTextStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	pages, err := s.pdf.ExtractWords(doc.Data, doc.Password)
	if err != nil {
		return nil, fmt.Errorf("reading words: %w", err)
	}
	if txs := parseTables(ctx, HeaderTables(pages, columns.CellGap)); len(txs) > 0 {
		return txs, nil
	}

	text, err := s.pdf.ExtractText(doc.Data, doc.Password)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}
	return statement.ParseLines(text, digitalConfidence), nil
}

type muPDFTextStrategy struct {
	engine PageTextEngine
}

// NewMuPDFTextStrategy reads text with MuPDF. A nil engine disables it.
func NewMuPDFTextStrategy(engine PageTextEngine) Strategy {
	return &muPDFTextStrategy{engine: engine}
}

func (s *muPDFTextStrategy) Name() string    { return StrategyMuPDFText }
func (s *muPDFTextStrategy) Available() bool { return s.engine != nil }

func (s *muPDFTextStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	if doc.Password != "" {
		return nil, fmt.Errorf("%w: encrypted documents are read by the other engines", ErrUnavailable)
	}
	pages, err := s.engine.PageTexts(doc.Data)
	if err != nil {
		return nil, err
	}
	return statement.ParseLines(strings.Join(pages, "\n"), digitalConfidence), nil
}

type layoutTablesStrategy struct {
	pdf PDFProcessor
}

// NewLayoutTablesStrategy finds tables by column alignment of the glyphs.
func NewLayoutTablesStrategy(pdf PDFProcessor) Strategy {
	return &layoutTablesStrategy{pdf: pdf}
}

func (s *layoutTablesStrategy) Name() string    { return StrategyLayoutTables }
func (s *layoutTablesStrategy) Available() bool { return s.pdf != nil }

func (s *layoutTablesStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	pages, err := s.pdf.ExtractWords(doc.Data, doc.Password)
	if err != nil {
		return nil, fmt.Errorf("reading words: %w", err)
	}
	return parseTables(ctx, AlignedTables(pages, columns.CellGap)), nil
}

type popplerStrategy struct {
	engine LayoutEngine
}

// NewPopplerStrategy reads pdftotext layout output as tables, then as lines.
func NewPopplerStrategy(engine LayoutEngine) Strategy {
	return &popplerStrategy{engine: engine}
}

func (s *popplerStrategy) Name() string    { return StrategyPoppler }
func (s *popplerStrategy) Available() bool { return s.engine != nil && s.engine.Available() }

// layoutCellGap is in characters; layout columns are at least two spaces apart.
const layoutCellGap = 1

func (s *popplerStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	text, err := s.engine.LayoutText(ctx, doc.Data, doc.Password)
	if err != nil {
		return nil, err
	}
	if txs := parseTables(ctx, HeaderTables(LayoutWords(text), layoutCellGap)); len(txs) > 0 {
		return txs, nil
	}
	return statement.ParseLines(text, digitalConfidence), nil
}

type ocrPagesStrategy struct {
	sweep    *OCRSweep
	renderer PageRenderer
	pdf      PDFProcessor
	dpi      float64
}

// NewOCRPagesStrategy OCRs rendered pages. Without a renderer, or for
// encrypted documents, the images embedded in the PDF are used instead.
func NewOCRPagesStrategy(sweep *OCRSweep, renderer PageRenderer, pdf PDFProcessor, dpi float64) Strategy {
	return &ocrPagesStrategy{sweep: sweep, renderer: renderer, pdf: pdf, dpi: dpi}
}

func (s *ocrPagesStrategy) Name() string    { return StrategyOCRPages }
func (s *ocrPagesStrategy) Available() bool { return s.sweep != nil && s.sweep.Available() }

func (s *ocrPagesStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	text, conf, err := ocrPDF(ctx, s.sweep, s.renderer, s.pdf, s.dpi, doc)
	if err != nil {
		return nil, err
	}
	return statement.ParseLines(text, conf), nil
}

// ocrPDF rasterizes a PDF and runs the page sweep over it.
func ocrPDF(ctx context.Context, sweep *OCRSweep, renderer PageRenderer, pdf PDFProcessor, dpi float64, doc *dto.Document) (string, float64, error) {
	var pages []image.Image
	var err error
	if renderer != nil && doc.Password == "" {
		pages, err = renderer.RenderPages(doc.Data, dpi)
	}
	if renderer == nil || doc.Password != "" || err != nil {
		if pdf == nil {
			return "", 0, fmt.Errorf("%w: no page renderer", ErrUnavailable)
		}
		pages, err = pdf.ExtractImages(doc.Data, doc.Password)
	}
	if err != nil {
		return "", 0, fmt.Errorf("rasterizing pages: %w", err)
	}
	if len(pages) == 0 {
		return "", 0, errors.New("document has no page images")
	}
	return sweep.Pages(ctx, pages, doc.OCRLanguages(sweep.Languages()))
}

type ocrImageStrategy struct {
	sweep  *OCRSweep
	images *ImageProcessor
}

// NewOCRImageStrategy OCRs an uploaded photo or scan.
func NewOCRImageStrategy(sweep *OCRSweep, images *ImageProcessor) Strategy {
	return &ocrImageStrategy{sweep: sweep, images: images}
}

func (s *ocrImageStrategy) Name() string    { return StrategyOCRImage }
func (s *ocrImageStrategy) Available() bool { return s.sweep != nil && s.sweep.Available() }

func (s *ocrImageStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	img, err := s.images.Decode(doc.Data)
	if err != nil {
		return nil, err
	}
	res, err := s.sweep.Image(ctx, img, doc.OCRLanguages(s.sweep.Languages()))
	if err != nil {
		return nil, err
	}
	return statement.ParseLines(res.Text, res.Confidence), nil
}
