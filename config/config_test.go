package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, int64(10*1024*1024), c.Server.MaxFileSize())
	assert.Equal(t, EngineLibrary, c.OCR.Engine)
	assert.Equal(t, []string{"ara+eng", "ara", "eng"}, c.OCR.Languages)
	assert.Len(t, c.OCR.PageSegmentationConfigs, 3)
	assert.Equal(t, 144.0, c.OCR.RenderDPI)
	assert.Equal(t, uint8(180), c.OCR.BinarizeThreshold)
	assert.True(t, c.Extraction.MuPDF)
	assert.False(t, c.Extraction.Parallel)
	assert.Equal(t, LogFormatConsole, c.Log.Format)
	assert.Empty(t, c.Categories)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
ocr:
  engine: cli
  engine_path: /opt/tesseract/bin/tesseract
  languages: [eng]
extraction:
  parallel: true
categories:
  groceries: [panda, tamimi]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, EngineCLI, c.OCR.Engine)
	assert.Equal(t, "/opt/tesseract/bin/tesseract", c.OCR.EnginePath)
	assert.Equal(t, []string{"eng"}, c.OCR.Languages)
	assert.True(t, c.Extraction.Parallel)
	assert.Equal(t, []string{"panda", "tamimi"}, c.Categories["groceries"])
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STMT_SERVER_PORT", "7070")
	t.Setenv("STMT_OCR_WORKERS", "8")

	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "7070", c.Server.Port)
	assert.Equal(t, 8, c.OCR.Workers)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr:\n  engine: paddle\n"), 0o600))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "ocr.engine")
}

func TestLoadConfigLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: json\n"), 0o600))
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, LogFormatJSON, c.Log.Format)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o600))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "log.format")
}
