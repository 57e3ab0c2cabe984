package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer

	path, err := parseFlags([]string{"--config", "/etc/statements/config.yaml"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "/etc/statements/config.yaml", path)

	path, err = parseFlags(nil, &stderr)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, stderr.String())
}

func TestParseFlagsFromEnv(t *testing.T) {
	t.Setenv("STMT_CONFIG", "/srv/config.yaml")

	path, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "/srv/config.yaml", path)
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer

	_, err := parseFlags([]string{"--port", "9090"}, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "--config")
}
