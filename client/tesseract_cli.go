package client

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// TesseractCLI runs the tesseract binary configured as the engine path.
type TesseractCLI struct {
	cfg OCRConfig
}

func NewTesseractCLI(cfg OCRConfig) *TesseractCLI {
	if cfg.EnginePath == "" {
		cfg.EnginePath = "tesseract"
	}
	return &TesseractCLI{cfg: cfg}
}

func (c *TesseractCLI) Name() string { return "tesseract-cli" }

func (c *TesseractCLI) Available() bool {
	_, err := exec.LookPath(c.cfg.EnginePath)
	return err == nil
}

// Recognize pipes the image through tesseract and reads its TSV output.
func (c *TesseractCLI) Recognize(ctx context.Context, png []byte, lang, config string) (OCRResult, error) {
	args := []string{"stdin", "stdout", "-l", lang}
	if c.cfg.TessdataPrefix != "" {
		args = append(args, "--tessdata-dir", c.cfg.TessdataPrefix)
	}
	args = append(args, strings.Fields(config)...)
	args = append(args, "tsv")

	cmd := exec.CommandContext(ctx, c.cfg.EnginePath, args...)
	cmd.Stdin = bytes.NewReader(png)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return OCRResult{}, fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseTSV(string(out)), nil
}

// ParseTSV rebuilds text from tesseract TSV rows, one output line per
// recognized text line, and averages the confidence of non-empty words.
func ParseTSV(tsv string) OCRResult {
	var b strings.Builder
	var lineKey string
	var words []string
	var totalConf float64
	var count int

	flush := func() {
		if len(words) > 0 {
			b.WriteString(strings.Join(words, " "))
			b.WriteByte('\n')
			words = nil
		}
	}

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 && strings.HasPrefix(row, "level") {
			continue
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		conf, err := strconv.ParseFloat(cols[10], 64)
		if text == "" || err != nil || conf < 0 {
			continue
		}

		// page, block, paragraph and line number identify a text line
		key := strings.Join(cols[1:5], ".")
		if key != lineKey {
			flush()
			lineKey = key
		}
		words = append(words, text)
		totalConf += conf
		count++
	}
	flush()

	res := OCRResult{Text: strings.TrimRight(b.String(), "\n")}
	if count > 0 {
		res.Confidence = totalConf / float64(count)
	}
	return res
}
