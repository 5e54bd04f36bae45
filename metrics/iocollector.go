// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ioFields maps /proc/self/io keys to exported counter names.
var ioFields = map[string]struct{ name, help string }{
	"syscr":       {"read_syscalls_total", "Read syscalls issued by the process."},
	"syscw":       {"write_syscalls_total", "Write syscalls issued by the process."},
	"read_bytes":  {"read_bytes_total", "Bytes fetched from the storage layer."},
	"write_bytes": {"write_bytes_total", "Bytes sent to the storage layer."},
}

// IOCollector exports process storage I/O counters, which the default
// prometheus process collector does not cover.
type IOCollector struct {
	path  string
	descs map[string]*prometheus.Desc
}

// NewIOCollector creates a collector reading the io stats of the current process.
func NewIOCollector() *IOCollector {
	descs := make(map[string]*prometheus.Desc, len(ioFields))
	for key, f := range ioFields {
		descs[key] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", f.name), f.help, nil, nil)
	}
	return &IOCollector{path: "/proc/self/io", descs: descs}
}

// Describe implements prometheus.Collector.
func (c *IOCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *IOCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.read()
	if err != nil {
		return
	}
	for key, v := range stats {
		ch <- prometheus.MustNewConstMetric(c.descs[key], prometheus.CounterValue, float64(v))
	}
}

func (c *IOCollector) read() (map[string]int64, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stats := make(map[string]int64, len(c.descs))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		if _, known := c.descs[key]; !known {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			logger.Warn("unable to parse io value", "key", key, "err", err)
			continue
		}
		stats[key] = n
	}
	return stats, scanner.Err()
}

var ioRegistered atomic.Bool

func registerIOCollector() {
	if ioRegistered.CompareAndSwap(false, true) {
		prometheus.MustRegister(NewIOCollector())
	}
}
