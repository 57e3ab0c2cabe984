package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/Aashish23092/statement-extraction/utils/quality"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunStore persists processing runs and their logs.
type RunStore interface {
	SaveStatement(ctx context.Context, res *dto.StatementResult) error
	SaveInvoice(ctx context.Context, res *dto.InvoiceResult) error
	// Sink returns a log sink appending to the run's stored log.
	Sink(runID string) logger.Sink
}

type StatementService struct {
	cascade     *Cascade
	categorizer *quality.Categorizer
	store       RunStore
	log         zerolog.Logger
}

// NewStatementService wires the extraction cascade to the data quality
// layer. store may be nil.
func NewStatementService(cascade *Cascade, categorizer *quality.Categorizer, store RunStore, log zerolog.Logger) *StatementService {
	if categorizer == nil {
		categorizer = quality.NewCategorizer(nil)
	}
	return &StatementService{
		cascade:     cascade,
		categorizer: categorizer,
		store:       store,
		log:         log,
	}
}

// checkDocument enforces the input contract before any backend runs.
func checkDocument(doc *dto.Document) error {
	if _, err := dto.ParseFileKind(string(doc.Kind)); err != nil {
		return err
	}
	if len(doc.Data) == 0 {
		return fmt.Errorf("%w: %s is empty", dto.ErrUnreadableDocument, doc.Name)
	}
	return nil
}

type run struct {
	id       string
	recorder *logger.Recorder
	sink     logger.Sink
}

func startRun(base zerolog.Logger, store RunStore, doc *dto.Document) run {
	id := uuid.NewString()
	rec := logger.NewRecorder()
	runLog := logger.WithFields(base, map[string]any{"run_id": id, "document": doc.Name})

	sinks := logger.Multi{rec, logger.NewZerologSink(runLog)}
	if store != nil {
		sinks = append(sinks, store.Sink(id))
	}
	return run{id: id, recorder: rec, sink: sinks}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Process extracts, validates, de-duplicates and categorizes the
// transactions of one statement. On extraction failure the failed result is
// returned together with the error.
func (s *StatementService) Process(ctx context.Context, doc *dto.Document) (*dto.StatementResult, error) {
	if err := checkDocument(doc); err != nil {
		return nil, err
	}

	r := startRun(s.log, s.store, doc)
	ctx = logger.WithSink(ctx, r.sink)
	result := &dto.StatementResult{
		RunID:    r.id,
		Document: doc.Name,
		Status:   dto.StatusPending,
	}
	s.save(ctx, result)
	logger.Info(r.sink, "Processing started", map[string]any{"kind": string(doc.Kind), "languages": doc.Languages})
	result.Status = dto.StatusProcessing
	s.save(ctx, result)

	outcome, err := s.cascade.Run(ctx, doc)
	if err != nil {
		result.Status = dto.StatusFailed
		result.Summary.Message = err.Error()
		result.Logs = r.recorder.Entries()
		result.ProcessedAt = timestamp()
		s.save(ctx, result)
		return result, err
	}

	txs, summary, issues := s.refine(outcome.Transactions, r.sink)
	logger.Info(r.sink, summary.Message, map[string]any{
		"extracted":  summary.Extracted,
		"invalid":    summary.Invalid,
		"duplicates": summary.Duplicates,
	})

	result.Status = dto.StatusCompleted
	result.Transactions = txs
	result.Summary = summary
	result.Quality = dto.DocumentQuality{
		Backend:       outcome.Strategy,
		OcrConfidence: ocrConfidence(outcome),
		Issues:        issues,
	}
	result.Logs = r.recorder.Entries()
	result.ProcessedAt = timestamp()
	s.save(ctx, result)
	return result, nil
}

func (s *StatementService) save(ctx context.Context, result *dto.StatementResult) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveStatement(ctx, result); err != nil {
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("failed to persist run")
	}
}

// refine cleans descriptions, drops invalid records, keeps the first record
// of each duplicate group and assigns categories.
func (s *StatementService) refine(records []dto.Transaction, sink logger.Sink) ([]dto.Transaction, dto.ProcessingSummary, []string) {
	var summary dto.ProcessingSummary
	seen := make(map[string]struct{})
	var issues []string

	valid := make([]dto.Transaction, 0, len(records))
	for _, t := range records {
		t.Description = quality.CleanDescription(t.Description)
		if ok, errs := quality.Validate(t); !ok {
			summary.Invalid++
			logger.Warning(sink, "Invalid transaction", map[string]any{
				"raw_description": t.RawDescription,
				"errors":          errs,
			})
			for _, e := range errs {
				if _, dup := seen[e]; !dup {
					seen[e] = struct{}{}
					issues = append(issues, e)
				}
			}
			continue
		}
		valid = append(valid, t)
	}

	drop := make(map[int]bool)
	for _, i := range quality.DetectDuplicates(valid) {
		for j := 0; j < i; j++ {
			if quality.IsDuplicate(valid[j], valid[i]) {
				drop[i] = true
				break
			}
		}
	}
	summary.Duplicates = len(drop)

	out := make([]dto.Transaction, 0, len(valid)-len(drop))
	for i, t := range valid {
		if drop[i] {
			continue
		}
		t.Category = s.categorizer.Categorize(t.Description)
		out = append(out, t)
	}
	summary.Extracted = len(out)
	summary.Message = summaryMessage(summary)

	sort.Strings(issues)
	return out, summary, issues
}

func summaryMessage(s dto.ProcessingSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processing completed. %d transactions extracted.", s.Extracted)
	if s.Invalid > 0 {
		fmt.Fprintf(&b, " %d invalid transactions skipped.", s.Invalid)
	}
	if s.Duplicates > 0 {
		fmt.Fprintf(&b, " %d duplicates removed.", s.Duplicates)
	}
	return b.String()
}

// ocrConfidence reports the mean record confidence on the OCR 0-100 scale
// for OCR backends.
func ocrConfidence(o Outcome) float64 {
	if o.Strategy != StrategyOCRPages && o.Strategy != StrategyOCRImage || len(o.Transactions) == 0 {
		return 0
	}
	var total float64
	for _, t := range o.Transactions {
		total += t.ConfidenceScore
	}
	return total / float64(len(o.Transactions)) * 100
}
