// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clock

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/xenv"
)

type Time struct {
	Now uint64 `json:"now"`
}

type AdvanceRequest struct {
	Seconds uint64 `json:"seconds"`
}

// Clock exposes the operation clock. Advancing is only possible with a manual clock.
type Clock struct {
	clock xenv.Clock
}

func New(clock xenv.Clock) *Clock {
	return &Clock{clock}
}

func (c *Clock) handleGetTime(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Time{Now: c.clock.Now()})
}

func (c *Clock) handleAdvance(w http.ResponseWriter, req *http.Request) error {
	manual, ok := c.clock.(*xenv.ManualClock)
	if !ok {
		return utils.Forbidden(errors.New("clock is not adjustable"))
	}
	var body AdvanceRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.Join(errors.New("body"), err))
	}
	return utils.WriteJSON(w, &Time{Now: manual.Advance(body.Seconds)})
}

func (c *Clock) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /clock").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetTime))
	sub.Path("/advance").
		Methods(http.MethodPost).
		Name("POST /clock/advance").
		HandlerFunc(utils.WrapHandlerFunc(c.handleAdvance))
}
