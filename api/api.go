// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/accounts"
	"github.com/vechain/stakepool/api/clock"
	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/api/pools"
	"github.com/vechain/stakepool/api/registry"
	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	BacktraceLimit       uint64
	Timeout              time.Duration
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	LogsLimit            uint64
	GenesisID            thor.Bytes32
}

// New return api router and a func closing the websocket subscriptions.
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	registry.New(rt).
		Mount(router, "/registry")
	pools.New(rt).
		Mount(router, "/pools")
	accounts.New(rt).
		Mount(router, "/accounts")
	clock.New(rt.Clock()).
		Mount(router, "/clock")
	closeFunc := func() {}
	if rt.LogDB() != nil {
		events.New(rt.LogDB(), opts.LogsLimit).
			Mount(router, "/logs/events")
		subs := subscriptions.New(rt, rt.LogDB(), origins, opts.BacktraceLimit)
		subs.Mount(router, "/subscriptions")
		closeFunc = subs.Close
	}

	router.Path("/status").
		Methods(http.MethodGet).
		Name("GET /status").
		HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			seq, err := rt.Seq()
			if err != nil {
				return err
			}
			return utils.WriteJSON(w, utils.M{
				"genesisId": opts.GenesisID,
				"seq":       seq,
				"time":      rt.Clock().Now(),
			})
		}))

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("x-genesis-id", opts.GenesisID.String())
			next.ServeHTTP(w, r)
		})
	})

	var handler http.Handler = router
	if opts.Timeout > 0 {
		handler = handleAPITimeout(handler, opts.Timeout)
	}
	handler = handlers.CompressHandler(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold)(handler)
	}

	return handler.ServeHTTP, closeFunc
}

// handleAPITimeout bounds the request context, websocket subscriptions are long lived and left alone.
func handleAPITimeout(next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/subscriptions") {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
