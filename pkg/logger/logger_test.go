package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/formio/formio.go/pkg/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	require.Contains(t, buff.String(), "Test")
}

func TestLogLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).WithLevel("warn").Make()
	require.NoError(t, err)

	templogger.Logger.Info().Msg("hidden")
	require.Equal(t, 0, buff.Len())

	templogger.Logger.Warn().Msg("shown")
	require.Contains(t, buff.String(), "shown")
}

func TestLogUnknownLevelFallsBackToInfo(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).WithLevel("chatty").Make()
	require.NoError(t, err)

	templogger.Logger.Debug().Msg("hidden")
	templogger.Logger.Info().Msg("shown")
	require.NotContains(t, buff.String(), "hidden")
	require.Contains(t, buff.String(), "shown")
}

func TestLogFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formio.log")
	templogger, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)

	templogger.Logger.Info().Msg("to file")
	require.NoError(t, templogger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}
