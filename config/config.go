package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// MaxFileSize is the upload limit in bytes.
func (s ServerConfig) MaxFileSize() int64 {
	return s.MaxUploadMB * 1024 * 1024
}

type OCRConfig struct {
	// Engine is "library" for the linked tesseract or "cli" for the binary at EnginePath.
	Engine                  string   `mapstructure:"engine"`
	EnginePath              string   `mapstructure:"engine_path"`
	TessdataPrefix          string   `mapstructure:"tessdata_prefix"`
	Languages               []string `mapstructure:"languages"`
	PageSegmentationConfigs []string `mapstructure:"page_segmentation_configs"`
	RenderDPI               float64  `mapstructure:"render_dpi"`
	BinarizeThreshold       uint8    `mapstructure:"binarize_threshold"`
	Workers                 int      `mapstructure:"workers"`
}

type ExtractionConfig struct {
	Parallel      bool   `mapstructure:"parallel"`
	MuPDF         bool   `mapstructure:"mupdf"`
	PdftotextPath string `mapstructure:"pdftotext_path"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server     ServerConfig        `mapstructure:"server"`
	OCR        OCRConfig           `mapstructure:"ocr"`
	Extraction ExtractionConfig    `mapstructure:"extraction"`
	Store      StoreConfig         `mapstructure:"store"`
	Log        LogConfig           `mapstructure:"log"`
	Categories map[string][]string `mapstructure:"categories"`
}

const (
	EngineLibrary = "library"
	EngineCLI     = "cli"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("ocr.engine", EngineLibrary)
	v.SetDefault("ocr.engine_path", "tesseract")
	v.SetDefault("ocr.tessdata_prefix", "/usr/share/tesseract-ocr/4.00/tessdata")
	v.SetDefault("ocr.languages", []string{"ara+eng", "ara", "eng"})
	v.SetDefault("ocr.page_segmentation_configs", []string{"--oem 3 --psm 6", "--oem 3 --psm 4", "--oem 3 --psm 3"})
	v.SetDefault("ocr.render_dpi", 144)
	v.SetDefault("ocr.binarize_threshold", 180)
	v.SetDefault("ocr.workers", 4)

	v.SetDefault("extraction.parallel", false)
	v.SetDefault("extraction.mupdf", true)
	v.SetDefault("extraction.pdftotext_path", "pdftotext")

	v.SetDefault("store.path", "statements.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatConsole)
}

// LoadConfig reads configuration from path, or from config.yaml in the
// working directory when path is empty. A missing default file is not an
// error. Environment variables such as STMT_OCR_ENGINE override file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("STMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.OCR.Engine {
	case EngineLibrary, EngineCLI:
	default:
		return fmt.Errorf("ocr.engine must be %q or %q, got %q", EngineLibrary, EngineCLI, c.OCR.Engine)
	}
	switch c.Log.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log.format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.Log.Format)
	}
	if c.OCR.Workers < 1 {
		c.OCR.Workers = 1
	}
	if len(c.OCR.Languages) == 0 {
		return errors.New("ocr.languages must not be empty")
	}
	return nil
}
