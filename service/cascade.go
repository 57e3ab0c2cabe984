package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"golang.org/x/sync/errgroup"
)

var errNoTransactions = errors.New("no transactions found")

// AttemptError records why one backend did not produce transactions.
type AttemptError struct {
	Strategy string
	Err      error
}

func (a AttemptError) Error() string {
	return a.Strategy + ": " + a.Err.Error()
}

func (a AttemptError) Unwrap() error { return a.Err }

// ExtractionError is returned when every backend for a document failed.
type ExtractionError struct {
	Document string
	Reason   string
	Attempts []AttemptError
}

func (e *ExtractionError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("extraction failed for %s: %s", e.Document, e.Reason)
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("extraction failed for %s: %s (%s)", e.Document, e.Reason, strings.Join(parts, "; "))
}

// Unwrap exposes the unreadable-document sentinel and every attempt error.
func (e *ExtractionError) Unwrap() []error {
	errs := []error{dto.ErrUnreadableDocument}
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}

// Outcome is the result of the first backend that found transactions.
type Outcome struct {
	Strategy     string
	Transactions []dto.Transaction
}

// Cascade tries extraction backends in priority order.
type Cascade struct {
	pdf      []Strategy
	image    []Strategy
	parallel bool
}

// NewCascade takes the PDF and image backends in priority order. In parallel
// mode every available backend runs at once, but the winner is still the
// first success in priority order.
func NewCascade(pdf, image []Strategy, parallel bool) *Cascade {
	return &Cascade{pdf: pdf, image: image, parallel: parallel}
}

func (c *Cascade) strategies(kind dto.FileKind) []Strategy {
	if kind == dto.FileKindImage {
		return c.image
	}
	return c.pdf
}

type attemptResult struct {
	txs []dto.Transaction
	err error
}

// Run extracts transactions from doc, logging each backend's fate to the
// sink attached to ctx.
func (c *Cascade) Run(ctx context.Context, doc *dto.Document) (Outcome, error) {
	sink := logger.SinkFromContext(ctx)
	all := c.strategies(doc.Kind)

	var ready []Strategy
	for _, s := range all {
		if !s.Available() {
			logger.Info(sink, "Backend skipped", map[string]any{"backend": s.Name(), "reason": "not available"})
			continue
		}
		ready = append(ready, s)
	}

	results := make([]attemptResult, len(ready))
	if c.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, s := range ready {
			logger.Info(sink, "Backend attempted", map[string]any{"backend": s.Name()})
			g.Go(func() error {
				txs, err := s.Attempt(gctx, doc)
				results[i] = attemptResult{txs: txs, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}

	var failed []AttemptError
	for i, s := range ready {
		var res attemptResult
		if c.parallel {
			res = results[i]
		} else {
			if err := ctx.Err(); err != nil {
				return Outcome{}, err
			}
			logger.Info(sink, "Backend attempted", map[string]any{"backend": s.Name()})
			txs, err := s.Attempt(ctx, doc)
			res = attemptResult{txs: txs, err: err}
		}

		switch {
		case errors.Is(res.err, ErrUnavailable):
			logger.Info(sink, "Backend skipped", map[string]any{"backend": s.Name(), "reason": res.err.Error()})
			continue
		case res.err != nil:
		case len(res.txs) == 0:
			res.err = errNoTransactions
		default:
			logger.Info(sink, fmt.Sprintf("Backend succeeded with %d transactions", len(res.txs)), map[string]any{
				"backend": s.Name(),
				"count":   len(res.txs),
			})
			return Outcome{Strategy: s.Name(), Transactions: res.txs}, nil
		}

		logger.Warning(sink, "Backend failed", map[string]any{"backend": s.Name(), "reason": res.err.Error()})
		failed = append(failed, AttemptError{Strategy: s.Name(), Err: res.err})
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	exErr := &ExtractionError{
		Document: doc.Name,
		Reason:   "no backend extracted any transactions",
		Attempts: failed,
	}
	if len(ready) == 0 {
		exErr.Reason = "no extraction backend available"
	}
	logger.Error(sink, "Extraction failed", map[string]any{"document": doc.Name, "reason": exErr.Reason})
	return Outcome{}, exErr
}
