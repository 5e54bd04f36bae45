// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/stakingpool"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "bad"},
		{"no cause", HTTPError(nil, http.StatusTeapot), http.StatusTeapot, ""},
		{"revert", reverts.ErrNotOwner, http.StatusForbidden, "Ownable: caller is not the owner"},
		{"wrapped revert", reverts.ErrTransferFailed.WithCause(reverts.ErrInsufficientAllowance), http.StatusForbidden, "StakingPool: Transfer failed: ERC20: insufficient allowance"},
		{"pool not found", stakingpool.ErrPoolNotFound, http.StatusNotFound, "pool not found"},
		{"internal", pkgerrors.Wrap(errors.New("disk"), "commit state"), http.StatusInternalServerError, "commit state: disk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, tt.body, strings.TrimSpace(rr.Body.String()))
		})
	}
}

func TestParseJSONStrict(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}
