// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noopMetrics struct{}

func defaultNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) CounterVec(string, []string) CountVecMeter                 { return noopMeter{} }
func (noopMetrics) GaugeVec(string, []string) GaugeVecMeter                   { return noopMeter{} }
func (noopMetrics) HistogramVec(string, []string, []int64) HistogramVecMeter { return noopMeter{} }
func (noopMetrics) Handler() http.Handler                                     { return nil }

// noopMeter drops every measurement.
type noopMeter struct{}

func (noopMeter) AddWithLabel(int64, map[string]string)      {}
func (noopMeter) SetWithLabel(int64, map[string]string)      {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
