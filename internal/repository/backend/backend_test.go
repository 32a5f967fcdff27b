package backend

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"alcyxob/ecofit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, logger)
	require.NoError(t, err)
	assert.NotNil(t, store.Profiles)
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, logger)
	assert.ErrorContains(t, err, `unknown database driver "sqlite"`)
}
