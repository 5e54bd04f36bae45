// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"time"

	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/xenv"
)

var (
	metricExecutionDuration = metrics.LazyLoadHistogramVec(
		"runtime_execution_duration_ms", []string{"result"}, metrics.Bucket10s,
	)
	metricEventCount  = metrics.LazyLoadCounterVec("runtime_event_count", []string{"name"})
	metricTotalStaked = metrics.LazyLoadGaugeVec("pool_total_staked", []string{"pool"})
)

func observeExecution(result string, start time.Time) {
	metricExecutionDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"result": result})
}

func observeEvents(events []*xenv.Event) {
	if metrics.NoOp() {
		return
	}
	for _, ev := range events {
		metricEventCount().AddWithLabel(1, map[string]string{"name": ev.Name})

		if len(ev.Values) == 0 || !ev.Values[0].IsInt64() {
			continue
		}
		labels := map[string]string{"pool": ev.Address.String()}
		switch ev.Name {
		case "Staked":
			metricTotalStaked().AddWithLabel(ev.Values[0].Int64(), labels)
		case "Unstaked":
			metricTotalStaked().AddWithLabel(-ev.Values[0].Int64(), labels)
		}
	}
}
