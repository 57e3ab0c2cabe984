package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PopplerClient shells out to poppler's pdftotext for layout-preserving text.
type PopplerClient struct {
	path string
}

func NewPopplerClient(path string) *PopplerClient {
	if path == "" {
		path = "pdftotext"
	}
	return &PopplerClient{path: path}
}

func (p *PopplerClient) Available() bool {
	_, err := exec.LookPath(p.path)
	return err == nil
}

// LayoutText returns the document text with columns kept aligned by spaces.
// Pages are separated by form feeds.
func (p *PopplerClient) LayoutText(ctx context.Context, pdfData []byte, password string) (string, error) {
	tempFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	args := []string{"-layout", "-enc", "UTF-8"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, tempFile.Name(), "-")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
