// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/xenv"
)

func get(t *testing.T, url string) (int, []byte) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestAPIServer(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gene := genesis.NewDevnet()
	rt := runtime.New(state.NewStater(db, 0), nil, xenv.NewManualClock(gene.LaunchTime()))
	_, err = gene.Apply(context.Background(), rt)
	require.NoError(t, err)

	url, closeFunc, err := StartAPIServer("localhost:0", rt, api.Options{GenesisID: gene.ID(), Timeout: time.Second})
	require.NoError(t, err)

	code, body := get(t, url+"/status")
	assert.Equal(t, http.StatusOK, code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, gene.ID().String(), status["genesisId"])

	closeFunc()
	_, err = http.Get(url + "/status") //#nosec G107
	assert.Error(t, err)
}

func TestAPIServerBadAddr(t *testing.T) {
	_, _, err := StartAPIServer("bad:address:1", nil, api.Options{})
	assert.Error(t, err)
}

func TestMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()

	metrics.CounterVec("httpserver_test_count", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "test"})

	url, closeFunc, err := StartMetricsServer("localhost:0")
	require.NoError(t, err)
	defer closeFunc()

	code, body := get(t, url)
	assert.Equal(t, http.StatusOK, code)

	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)
	m := families["stakepool_httpserver_test_count"].GetMetric()
	require.Len(t, m, 1)
	assert.Equal(t, float64(1), m[0].GetCounter().GetValue())
}
