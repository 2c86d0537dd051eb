package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/shepherd/internal/config"
)

func TestRun(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")

	t.Run("version", func(t *testing.T) {
		var stderr bytes.Buffer
		assert.Equal(t, 0, run(context.Background(), []string{"--version"}, &stderr))
		assert.Empty(t, stderr.String())
	})

	t.Run("unknown command", func(t *testing.T) {
		var stderr bytes.Buffer
		assert.Equal(t, 1, run(context.Background(), []string{"sermon"}, &stderr))
		assert.Contains(t, stderr.String(), `Error: unknown command "sermon"`)
	})
}
