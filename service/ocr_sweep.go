package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/Aashish23092/statement-extraction/client"
	"github.com/Aashish23092/statement-extraction/logger"
	"golang.org/x/sync/errgroup"
)

var ErrNoOCRText = errors.New("no OCR attempt produced text")

// OCRSweep runs an OCR engine over every combination of image variant,
// language and segmentation config and keeps the most confident reading.
type OCRSweep struct {
	engine  client.OCREngine
	images  *ImageProcessor
	configs []string
	workers int
	langs   []string
}

func NewOCRSweep(engine client.OCREngine, images *ImageProcessor, configs []string, workers int) *OCRSweep {
	if len(configs) == 0 {
		configs = []string{""}
	}
	if workers < 1 {
		workers = 1
	}
	return &OCRSweep{engine: engine, images: images, configs: configs, workers: workers}
}

// SetLanguages sets the language preference for documents that declare none.
func (s *OCRSweep) SetLanguages(langs []string) {
	s.langs = langs
}

func (s *OCRSweep) Languages() []string {
	return s.langs
}

func (s *OCRSweep) Available() bool {
	return s.engine != nil && s.engine.Available()
}

// PageResult is the winning OCR reading of one image.
type PageResult struct {
	Text       string
	Confidence float64
	Variant    string
	Language   string
	Config     string
}

type sweepJob struct {
	variant int
	lang    string
	config  string
}

// Best recognizes every variant with every language and config. The highest
// confidence wins; ties go to the earliest combination.
func (s *OCRSweep) Best(ctx context.Context, variants []Variant, langs []string) (PageResult, error) {
	pngs := make([][]byte, len(variants))
	for i, v := range variants {
		data, err := EncodePNG(v.Image)
		if err != nil {
			return PageResult{}, err
		}
		pngs[i] = data
	}

	var jobs []sweepJob
	for i := range variants {
		for _, lang := range langs {
			for _, cfg := range s.configs {
				jobs = append(jobs, sweepJob{variant: i, lang: lang, config: cfg})
			}
		}
	}

	sink := logger.SinkFromContext(ctx)
	results := make([]*PageResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := s.engine.Recognize(gctx, pngs[job.variant], job.lang, job.config)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warning(sink, "OCR failed", map[string]any{
					"variant": variants[job.variant].Name,
					"lang":    job.lang,
					"config":  job.config,
					"error":   err.Error(),
				})
				return nil
			}
			results[i] = &PageResult{
				Text:       res.Text,
				Confidence: res.Confidence,
				Variant:    variants[job.variant].Name,
				Language:   job.lang,
				Config:     job.config,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PageResult{}, err
	}

	var best *PageResult
	for _, r := range results {
		if r == nil || strings.TrimSpace(r.Text) == "" {
			continue
		}
		if best == nil || r.Confidence > best.Confidence {
			best = r
		}
	}
	if best == nil {
		return PageResult{}, ErrNoOCRText
	}
	return *best, nil
}

// Pages OCRs rendered pages with the full variant sweep and returns their
// text joined in page order with the mean page confidence.
func (s *OCRSweep) Pages(ctx context.Context, pages []image.Image, langs []string) (string, float64, error) {
	sink := logger.SinkFromContext(ctx)

	var texts []string
	var total float64
	for i, page := range pages {
		res, err := s.Best(ctx, s.images.Variants(page), langs)
		if err != nil {
			if ctx.Err() != nil {
				return "", 0, ctx.Err()
			}
			logger.Warning(sink, "OCR produced no text for page", map[string]any{"page": i + 1, "error": err.Error()})
			continue
		}
		texts = append(texts, res.Text)
		total += res.Confidence
	}
	if len(texts) == 0 {
		return "", 0, fmt.Errorf("OCR over %d pages: %w", len(pages), ErrNoOCRText)
	}

	mean := total / float64(len(texts))
	logger.Info(sink, "OCR confidence achieved", map[string]any{"confidence": mean, "pages": len(texts)})
	return strings.Join(texts, "\n"), mean, nil
}

// Image OCRs a single uploaded image as is.
func (s *OCRSweep) Image(ctx context.Context, img image.Image, langs []string) (PageResult, error) {
	res, err := s.Best(ctx, []Variant{{Name: "original", Image: img}}, langs)
	if err != nil {
		return PageResult{}, err
	}
	logger.Info(logger.SinkFromContext(ctx), "OCR confidence achieved", map[string]any{
		"confidence": res.Confidence,
		"lang":       res.Language,
		"config":     res.Config,
	})
	return res, nil
}
