package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Aashish23092/statement-extraction/config"
	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/Aashish23092/statement-extraction/service"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := ff.NewFlagSet("extract")
	var (
		configPath = fs.StringLong("config", "", "path to a YAML config file")
		kind       = fs.StringLong("kind", "", "declared document kind: pdf or image (default: from the file extension)")
		languages  = fs.StringLong("languages", "", "comma separated OCR languages, e.g. ara+eng,eng")
		password   = fs.StringLong("password", "", "password of an encrypted PDF")
		receipt    = fs.BoolLong("receipt", "parse the document as a POS receipt")
		logLevel   = fs.StringLong("log-level", "", "log level override")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("EXTRACT")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	if len(fs.GetArgs()) != 1 {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return errors.New("exactly one input file is required")
	}
	path := fs.GetArgs()[0]

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	log := logger.New(level).Output(zerolog.ConsoleWriter{Out: stderr})

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fileKind, err := dto.ParseFileKind(kindOf(*kind, path))
	if err != nil {
		return err
	}
	req := dto.ExtractRequest{Languages: *languages}
	doc := &dto.Document{
		Name:      filepath.Base(path),
		Kind:      fileKind,
		Languages: req.LanguageList(),
		Password:  *password,
		Data:      data,
	}

	pipeline := service.NewPipeline(cfg, nil, log)

	var result any
	if *receipt {
		var res *dto.InvoiceResult
		res, err = pipeline.Receipts.Process(ctx, doc)
		if res != nil {
			result = res
		}
	} else {
		var res *dto.StatementResult
		res, err = pipeline.Statements.Process(ctx, doc)
		if res != nil {
			result = res
		}
	}
	if result != nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
	}
	return err
}

// kindOf returns the declared kind, else guesses it from the file extension.
func kindOf(declared, path string) string {
	if declared != "" {
		return declared
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return string(dto.FileKindPDF)
	}
	return string(dto.FileKindImage)
}
