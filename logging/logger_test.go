// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	require := require.New(t)

	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "trust.log")
	log, err := NewLogger("trustctl", Options{
		Level:      "info",
		File:       file,
		MaxSizeMB:  1,
		MaxBackups: 1,
		Console:    &console,
	})
	require.NoError(err)

	log.Debug("Dropped below level")
	log.Info("Validated trust content")
	require.NoError(log.Sync())

	var entry map[string]any
	require.NoError(json.Unmarshal(console.Bytes(), &entry))
	require.Equal("info", entry["level"])
	require.Equal("trustctl", entry["logger"])
	require.Equal("Validated trust content", entry["msg"])

	written, err := os.ReadFile(file)
	require.NoError(err)
	require.Equal(console.String(), string(written))
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger("trustctl", Options{Level: "chatty"})
	require.Error(t, err)
}
