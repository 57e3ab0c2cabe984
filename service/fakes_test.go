package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aashish23092/statement-extraction/client"
	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/Aashish23092/statement-extraction/utils/columns"
	"github.com/shopspring/decimal"
)

type fakeStrategy struct {
	name      string
	available bool
	txs       []dto.Transaction
	err       error
	delay     time.Duration
	calls     atomic.Int32
}

func (f *fakeStrategy) Name() string    { return f.name }
func (f *fakeStrategy) Available() bool { return f.available }

func (f *fakeStrategy) Attempt(ctx context.Context, doc *dto.Document) ([]dto.Transaction, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.txs, f.err
}

// fakeEngine answers with a fixed reading per language and config.
type fakeEngine struct {
	available bool
	readings  map[string]client.OCRResult
	fail      map[string]bool
}

func engineKey(lang, config string) string { return lang + "|" + config }

func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Recognize(ctx context.Context, png []byte, lang, config string) (client.OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return client.OCRResult{}, err
	}
	key := engineKey(lang, config)
	if f.fail[key] {
		return client.OCRResult{}, errors.New("engine crashed")
	}
	return f.readings[key], nil
}

type fakePDF struct {
	text     string
	textErr  error
	words    [][]columns.Word
	wordsErr error
	images   []image.Image
}

func (f *fakePDF) ExtractText(pdfData []byte, password string) (string, error) {
	return f.text, f.textErr
}

func (f *fakePDF) ExtractWords(pdfData []byte, password string) ([][]columns.Word, error) {
	return f.words, f.wordsErr
}

func (f *fakePDF) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	return f.images, nil
}

type fakeRenderer struct {
	pages []image.Image
	err   error
}

func (f *fakeRenderer) RenderPages(pdfData []byte, dpi float64) ([]image.Image, error) {
	return f.pages, f.err
}

type fakeStore struct {
	mu         sync.Mutex
	statements []dto.StatementResult
	invoices   []dto.InvoiceResult
	logs       map[string][]dto.LogEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{logs: make(map[string][]dto.LogEntry)}
}

func (f *fakeStore) SaveStatement(ctx context.Context, res *dto.StatementResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements = append(f.statements, *res)
	return nil
}

func (f *fakeStore) SaveInvoice(ctx context.Context, res *dto.InvoiceResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, *res)
	return nil
}

type storeSink struct {
	store *fakeStore
	runID string
}

func (s storeSink) Write(e dto.LogEntry) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.logs[s.runID] = append(s.store.logs[s.runID], e)
}

func (f *fakeStore) Sink(runID string) logger.Sink {
	return storeSink{store: f, runID: runID}
}

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	return img
}

func amount(s string) *decimal.Decimal {
	return dto.DecimalPtr(decimal.RequireFromString(s))
}

func pdfDoc() *dto.Document {
	return &dto.Document{Name: "statement.pdf", Kind: dto.FileKindPDF, Data: []byte("%PDF-1.4")}
}
