package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Aashish23092/statement-extraction/config"
	"github.com/Aashish23092/statement-extraction/handler"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/Aashish23092/statement-extraction/service"
	"github.com/Aashish23092/statement-extraction/store"

	"github.com/gin-gonic/gin"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	configPath, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.New("info").Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithFormat(cfg.Log.Level, cfg.Log.Format)

	// Open the run store
	runs, err := store.NewBoltStore(cfg.Store.Path, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open run store")
	}
	defer runs.Close()

	// Initialize service layer
	pipeline := service.NewPipeline(cfg, runs, log)

	// Initialize handler layer
	maxSize := cfg.Server.MaxFileSize()
	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(
		log,
		handler.NewStatementHandler(pipeline.Statements, maxSize),
		handler.NewReceiptHandler(pipeline.Receipts, maxSize),
		handler.NewRunHandler(runs),
		maxSize,
	)

	// Start server
	log.Info().Str("port", cfg.Server.Port).Msg("Starting Statement Extraction Service")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Error().Err(err).Msg("Failed to start server")
		runs.Close()
		os.Exit(1)
	}
}

// parseFlags reads the server flags. STMT_CONFIG may stand in for --config.
func parseFlags(args []string, stderr io.Writer) (string, error) {
	fs := ff.NewFlagSet("statement-extraction")
	configPath := fs.StringLong("config", "", "path to a YAML config file")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("STMT")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return "", err
	}
	return *configPath, nil
}
