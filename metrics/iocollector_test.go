// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOCollectorRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "io")
	content := "rchar: 10\nwchar: 20\nsyscr: 3\nsyscw: 4\nread_bytes: 4096\nwrite_bytes: bad\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c := NewIOCollector()
	c.path = path

	stats, err := c.read()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"syscr": 3, "syscw": 4, "read_bytes": 4096}, stats)

	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)
	assert.Len(t, ch, 3)
}

func TestIOCollectorMissingFile(t *testing.T) {
	c := NewIOCollector()
	c.path = filepath.Join(t.TempDir(), "absent")

	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)
	assert.Empty(t, ch)
}
