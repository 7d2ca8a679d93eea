// SPDX-License-Identifier: MIT

package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Symbiot01/medsight/internal/log"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.Configure(log.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { log.Configure(log.Config{}) })
	return &buf
}

// logEntries returns the decoded log lines whose event matches.
func logEntries(t *testing.T, buf *bytes.Buffer, event string) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry[log.FieldEvent] == event {
			out = append(out, entry)
		}
	}
	return out
}
