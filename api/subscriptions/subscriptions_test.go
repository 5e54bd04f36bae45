// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

type testEnv struct {
	rt   *runtime.Runtime
	ts   *httptest.Server
	subs *Subscriptions
}

func newTestEnv(t *testing.T, backtraceLimit uint64) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(logDB.Close)

	rt := runtime.New(state.NewStater(db, 0), logDB, xenv.NewManualClock(1_700_000_000))
	_, err = rt.Bootstrap(context.Background(), thor.Bytes32{1}, 1_700_000_000, func(c *runtime.Contracts) error {
		return c.Token.Mint(alice, big.NewInt(1000))
	})
	require.NoError(t, err)

	subs := New(rt, logDB, []string{"*"}, backtraceLimit)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testEnv{rt, ts, subs}
}

func (env *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/subscriptions/event?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (env *testEnv) transfer(t *testing.T, from, to thor.Address, amount int64) {
	_, err := env.rt.Execute(context.Background(), from, func(c *runtime.Contracts) error {
		return c.Token.Transfer(from, to, big.NewInt(amount))
	})
	require.NoError(t, err)
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.FilteredEvent {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev events.FilteredEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	return &ev
}

func TestSubscribeNewEvents(t *testing.T) {
	env := newTestEnv(t, 10)
	conn := env.dial(t, "")

	env.transfer(t, alice, bob, 10)

	ev := readEvent(t, conn)
	assert.Equal(t, "Transfer", ev.Name)
	assert.Equal(t, builtin.Token.Address, ev.Address)
	assert.Equal(t, uint64(2), ev.Meta.Seq)
	assert.Equal(t, alice, ev.Meta.Origin)
	assert.Equal(t, big.NewInt(10), (*big.Int)(ev.Values[0]))
}

func TestSubscribeFromPosition(t *testing.T) {
	env := newTestEnv(t, 10)
	env.transfer(t, alice, bob, 1)
	env.transfer(t, bob, alice, 1)

	// only transfers sent by bob
	topic := xenv.AddressTopic(bob)
	conn := env.dial(t, "pos=0&name=Transfer&t0="+topic.String())

	ev := readEvent(t, conn)
	assert.Equal(t, uint64(3), ev.Meta.Seq)
	assert.Equal(t, bob, ev.Meta.Origin)

	env.transfer(t, alice, bob, 1)
	env.transfer(t, bob, alice, 2)
	ev = readEvent(t, conn)
	assert.Equal(t, uint64(5), ev.Meta.Seq)
	assert.Equal(t, big.NewInt(2), (*big.Int)(ev.Values[0]))
}

func TestSubscribeBadRequests(t *testing.T) {
	env := newTestEnv(t, 1)
	env.transfer(t, alice, bob, 1)
	env.transfer(t, alice, bob, 1)

	for _, tt := range []struct {
		query  string
		status int
	}{
		{"pos=abc", http.StatusBadRequest},
		{"addr=0x01", http.StatusBadRequest},
		{"t1=zz", http.StatusBadRequest},
		{"pos=0", http.StatusForbidden},
	} {
		u := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/subscriptions/event?" + tt.query
		_, resp, err := websocket.DefaultDialer.Dial(u, nil)
		assert.Error(t, err, tt.query)
		require.NotNil(t, resp, tt.query)
		assert.Equal(t, tt.status, resp.StatusCode, tt.query)
	}
}

func TestCloseSubscriptions(t *testing.T) {
	env := newTestEnv(t, 10)
	conn := env.dial(t, "")

	done := make(chan struct{})
	go func() {
		env.subs.Close()
		close(done)
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not return")
	}
}

func TestEventReaderBatches(t *testing.T) {
	env := newTestEnv(t, 1000)
	for range readBatch + 5 {
		env.transfer(t, alice, bob, 1)
	}

	reader := newEventReader(env.rt.LogDB(), 0, &logdb.EventCriteria{})
	msgs, hasMore, err := reader.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Len(t, msgs, readBatch)

	msgs, hasMore, err = reader.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Len(t, msgs, 6)

	msgs, hasMore, err = reader.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Empty(t, msgs)
}
