// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	var resp *Token
	if err := a.rt.View(func(c *runtime.Contracts) error {
		meta, err := c.Token.Meta()
		if err != nil {
			return err
		}
		supply, err := c.Token.TotalSupply()
		if err != nil {
			return err
		}
		resp = &Token{
			Address:     c.Token.Address(),
			Name:        meta.Name,
			Symbol:      meta.Symbol,
			Decimals:    meta.Decimals,
			TotalSupply: utils.Amount(supply),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var balance *big.Int
	if err := a.rt.View(func(c *runtime.Contracts) (err error) {
		balance, err = c.Token.BalanceOf(addr)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{Balance: utils.Amount(balance)})
}

func (a *Accounts) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(req, "spender")
	if err != nil {
		return err
	}
	var amount *big.Int
	if err := a.rt.View(func(c *runtime.Contracts) (err error) {
		amount, err = c.Token.Allowance(owner, spender)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{Owner: owner, Spender: spender, Amount: utils.Amount(amount)})
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.Join(errors.New("body"), err))
	}
	caller, err := utils.RequireCaller(body.Caller)
	if err != nil {
		return err
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("to: required"))
	}
	amount, err := utils.RequireAmount("amount", body.Amount)
	if err != nil {
		return err
	}
	return a.execute(w, req, caller, func(c *runtime.Contracts) error {
		return c.Token.Transfer(caller, *body.To, amount)
	})
}

func (a *Accounts) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.Join(errors.New("body"), err))
	}
	caller, err := utils.RequireCaller(body.Caller)
	if err != nil {
		return err
	}
	if body.Spender == nil {
		return utils.BadRequest(errors.New("spender: required"))
	}
	amount, err := utils.RequireAmount("amount", body.Amount)
	if err != nil {
		return err
	}
	return a.execute(w, req, caller, func(c *runtime.Contracts) error {
		return c.Token.Approve(caller, *body.Spender, amount)
	})
}

func (a *Accounts) execute(w http.ResponseWriter, req *http.Request, caller thor.Address, fn func(c *runtime.Contracts) error) error {
	receipt, err := a.rt.Execute(req.Context(), caller, fn)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/token").
		Methods(http.MethodGet).
		Name("GET /accounts/token").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetToken))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /accounts/transfer").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /accounts/approve").
		HandlerFunc(utils.WrapHandlerFunc(a.handleApprove))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/allowance/{spender}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}/allowance/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAllowance))
}
