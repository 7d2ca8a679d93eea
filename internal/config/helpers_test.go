// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

type logBuffer struct {
	bytes.Buffer
	logger zerolog.Logger
}

func newLogBuffer(t *testing.T) *logBuffer {
	t.Helper()
	b := &logBuffer{}
	b.logger = zerolog.New(&b.Buffer)
	return b
}
