package service

import (
	"context"
	"errors"
	"image"
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/Aashish23092/statement-extraction/utils/receipt"
	"github.com/rs/zerolog"
)

// digitalReceiptConfidence is the parse confidence of receipts read from a
// PDF text layer.
const digitalReceiptConfidence = 0.9

// QRDecoder reads the payload of a QR code in an image.
type QRDecoder interface {
	Decode(img image.Image) (string, error)
}

type ReceiptService struct {
	pdf      PDFProcessor
	renderer PageRenderer
	sweep    *OCRSweep
	images   *ImageProcessor
	qr       QRDecoder
	store    RunStore
	dpi      float64
	log      zerolog.Logger
}

type ReceiptDeps struct {
	PDF      PDFProcessor
	Renderer PageRenderer
	Sweep    *OCRSweep
	Images   *ImageProcessor
	QR       QRDecoder
	Store    RunStore
	DPI      float64
}

func NewReceiptService(deps ReceiptDeps, log zerolog.Logger) *ReceiptService {
	return &ReceiptService{
		pdf:      deps.PDF,
		renderer: deps.Renderer,
		sweep:    deps.Sweep,
		images:   deps.Images,
		qr:       deps.QR,
		store:    deps.Store,
		dpi:      deps.DPI,
		log:      log,
	}
}

// Process reads a receipt PDF or image and prepares it as an invoice.
func (s *ReceiptService) Process(ctx context.Context, doc *dto.Document) (*dto.InvoiceResult, error) {
	if err := checkDocument(doc); err != nil {
		return nil, err
	}

	r := startRun(s.log, s.store, doc)
	ctx = logger.WithSink(ctx, r.sink)
	logger.Info(r.sink, "Processing started", map[string]any{"kind": string(doc.Kind)})

	var (
		text string
		conf float64
		qr   *receipt.QRInvoice
		err  error
	)
	if doc.Kind == dto.FileKindImage {
		text, conf, qr, err = s.readImage(ctx, doc)
	} else {
		text, conf, err = s.readPDF(ctx, doc)
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = errNoReceiptText
	}
	if err != nil {
		exErr := &ExtractionError{
			Document: doc.Name,
			Reason:   "no receipt text could be read",
			Attempts: []AttemptError{{Strategy: string(doc.Kind), Err: err}},
		}
		logger.Error(r.sink, "Receipt extraction failed", map[string]any{"error": err.Error()})
		result := &dto.InvoiceResult{
			RunID:       r.id,
			Document:    doc.Name,
			Invoice:     dto.Invoice{Currency: dto.DefaultCurrency, Status: dto.InvoiceFailed},
			Error:       exErr.Error(),
			Logs:        r.recorder.Entries(),
			ProcessedAt: timestamp(),
		}
		s.save(ctx, result)
		return result, exErr
	}

	parsed := receipt.Parse(text, conf)
	if qr != nil {
		qr.Enrich(&parsed)
	}
	inv := receipt.Prepare(parsed)
	logger.Info(r.sink, "Receipt parsed", map[string]any{
		"lines":            len(inv.Lines),
		"parse_confidence": inv.ParseConfidence,
		"status":           string(inv.Status),
	})

	result := &dto.InvoiceResult{
		RunID:       r.id,
		Document:    doc.Name,
		Invoice:     inv,
		Receipt:     parsed,
		Logs:        r.recorder.Entries(),
		ProcessedAt: timestamp(),
	}
	s.save(ctx, result)
	return result, nil
}

func (s *ReceiptService) save(ctx context.Context, result *dto.InvoiceResult) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveInvoice(ctx, result); err != nil {
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("failed to persist run")
	}
}

var errNoReceiptText = errors.New("no text found on receipt")

// readPDF prefers the PDF's own text layer and falls back to OCR of the
// rendered pages.
func (s *ReceiptService) readPDF(ctx context.Context, doc *dto.Document) (string, float64, error) {
	sink := logger.SinkFromContext(ctx)
	if s.pdf != nil {
		text, err := s.pdf.ExtractText(doc.Data, doc.Password)
		if err == nil && strings.TrimSpace(text) != "" {
			logger.Info(sink, "Receipt text read from PDF", nil)
			return text, digitalReceiptConfidence, nil
		}
		if err != nil {
			logger.Warning(sink, "PDF text extraction failed", map[string]any{"error": err.Error()})
		}
	}
	if s.sweep == nil || !s.sweep.Available() {
		return "", 0, ErrUnavailable
	}
	text, conf, err := ocrPDF(ctx, s.sweep, s.renderer, s.pdf, s.dpi, doc)
	if err != nil {
		return "", 0, err
	}
	return text, conf / 100, nil
}

// readImage OCRs the photo and decodes any e-invoice QR code on it.
func (s *ReceiptService) readImage(ctx context.Context, doc *dto.Document) (string, float64, *receipt.QRInvoice, error) {
	sink := logger.SinkFromContext(ctx)
	img, err := s.images.Decode(doc.Data)
	if err != nil {
		return "", 0, nil, err
	}

	var qr *receipt.QRInvoice
	if s.qr != nil {
		if payload, err := s.qr.Decode(img); err == nil {
			if q, err := receipt.DecodeQR(payload); err == nil {
				qr = &q
				logger.Info(sink, "E-invoice QR code decoded", map[string]any{"vat_number": q.VATNumber})
			}
		}
	}

	if s.sweep == nil || !s.sweep.Available() {
		return "", 0, qr, ErrUnavailable
	}
	res, err := s.sweep.Image(ctx, img, doc.OCRLanguages(s.sweep.Languages()))
	if err != nil {
		return "", 0, qr, err
	}
	return res.Text, res.Confidence / 100, qr, nil
}
