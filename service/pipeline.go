package service

import (
	"github.com/Aashish23092/statement-extraction/client"
	"github.com/Aashish23092/statement-extraction/config"
	"github.com/Aashish23092/statement-extraction/utils/quality"
	"github.com/rs/zerolog"
)

// Pipeline is the statement and receipt services wired from configuration.
type Pipeline struct {
	Statements *StatementService
	Receipts   *ReceiptService
}

// NewPipeline builds the OCR engine, the extraction backends in priority
// order and both services. store may be nil.
func NewPipeline(cfg *config.Config, store RunStore, log zerolog.Logger) *Pipeline {
	engine := client.NewOCREngine(cfg.OCR.Engine, client.OCRConfig{
		EnginePath:              cfg.OCR.EnginePath,
		TessdataPrefix:          cfg.OCR.TessdataPrefix,
		Languages:               cfg.OCR.Languages,
		PageSegmentationConfigs: cfg.OCR.PageSegmentationConfigs,
	})
	images := NewImageProcessor(cfg.OCR.BinarizeThreshold)
	sweep := NewOCRSweep(engine, images, cfg.OCR.PageSegmentationConfigs, cfg.OCR.Workers)
	sweep.SetLanguages(cfg.OCR.Languages)

	pdf := NewPDFProcessor()

	// the strategies take interfaces, so a disabled MuPDF must stay a nil interface
	var pageText PageTextEngine
	var renderer PageRenderer
	if cfg.Extraction.MuPDF {
		mupdf := client.NewMuPDFClient()
		pageText, renderer = mupdf, mupdf
	}

	pdfStrategies := []Strategy{
		NewDigitalTextStrategy(pdf),
		NewMuPDFTextStrategy(pageText),
		NewLayoutTablesStrategy(pdf),
		NewPopplerStrategy(client.NewPopplerClient(cfg.Extraction.PdftotextPath)),
		NewOCRPagesStrategy(sweep, renderer, pdf, cfg.OCR.RenderDPI),
	}
	imageStrategies := []Strategy{NewOCRImageStrategy(sweep, images)}

	log.Info().
		Str("ocr_engine", engine.Name()).
		Bool("ocr_available", engine.Available()).
		Bool("mupdf", cfg.Extraction.MuPDF).
		Bool("parallel", cfg.Extraction.Parallel).
		Msg("Extraction pipeline ready")

	cascade := NewCascade(pdfStrategies, imageStrategies, cfg.Extraction.Parallel)
	categorizer := quality.NewCategorizer(quality.RulesFromMap(cfg.Categories))

	return &Pipeline{
		Statements: NewStatementService(cascade, categorizer, store, log),
		Receipts: NewReceiptService(ReceiptDeps{
			PDF:      pdf,
			Renderer: renderer,
			Sweep:    sweep,
			Images:   images,
			QR:       client.NewQRClient(),
			Store:    store,
			DPI:      cfg.OCR.RenderDPI,
		}, log),
	}
}
