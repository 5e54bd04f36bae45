// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/runtime"
)

// StartAPIServer serves the ledger API.
func StartAPIServer(addr string, rt *runtime.Runtime, opts api.Options) (string, func(), error) {
	listener, err := listen("API", addr)
	if err != nil {
		return "", nil, err
	}
	handler, closeSubs := api.New(rt, opts)
	url, closeSrv := serve("API", listener, handler)
	return url, func() {
		// hijacked websocket conns are not closed by the server
		closeSubs()
		closeSrv()
	}, nil
}
