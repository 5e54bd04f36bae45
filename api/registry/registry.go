// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/builtin/poolfactory"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

type Registry struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Registry {
	return &Registry{rt}
}

func (r *Registry) handleGetRegistry(w http.ResponseWriter, _ *http.Request) error {
	var resp Summary
	err := r.rt.View(func(c *runtime.Contracts) (err error) {
		resp.Address = c.Registry.Address()
		if resp.Owner, err = c.Registry.Owner(); err != nil {
			return
		}
		if resp.Operator, err = c.Registry.Operator(); err != nil {
			return
		}
		if resp.Token, err = c.Registry.Token(); err != nil {
			return
		}
		reserve, err := c.Registry.ReserveBalance()
		if err != nil {
			return
		}
		resp.Reserve = utils.Amount(reserve)
		pools, err := c.Registry.GetAllPools()
		resp.Pools = len(pools)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &resp)
}

func (r *Registry) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	var pools []thor.Address
	if err := r.rt.View(func(c *runtime.Contracts) (err error) {
		pools, err = c.Registry.GetAllPools()
		return
	}); err != nil {
		return err
	}
	if pools == nil {
		pools = []thor.Address{}
	}
	return utils.WriteJSON(w, pools)
}

func (r *Registry) handleCreatePool(w http.ResponseWriter, req *http.Request) error {
	var body CreatePool
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.Join(errors.New("body"), err))
	}
	caller, err := utils.RequireCaller(body.Caller)
	if err != nil {
		return err
	}
	params := &poolfactory.PoolParams{
		MinStakingPeriod: body.MinStakingPeriod,
		MaxStakingPeriod: body.MaxStakingPeriod,
	}
	if params.MaxStakeAmount, err = utils.RequireAmount("maxStakeAmount", body.MaxStakeAmount); err != nil {
		return err
	}
	if params.Capacity, err = utils.RequireAmount("capacity", body.Capacity); err != nil {
		return err
	}
	if params.HourlyRewardRate, err = utils.RequireAmount("hourlyRewardRate", body.HourlyRewardRate); err != nil {
		return err
	}

	var pool thor.Address
	receipt, err := r.rt.Execute(req.Context(), caller, func(c *runtime.Contracts) (err error) {
		pool, err = c.Registry.CreatePool(caller, params)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PoolCreated{Pool: pool, Receipt: utils.ConvertReceipt(receipt)})
}

func (r *Registry) amountHandler(op func(c *runtime.Contracts, caller thor.Address, amount *big.Int) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body AmountRequest
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.Join(errors.New("body"), err))
		}
		caller, err := utils.RequireCaller(body.Caller)
		if err != nil {
			return err
		}
		amount, err := utils.RequireAmount("amount", body.Amount)
		if err != nil {
			return err
		}
		receipt, err := r.rt.Execute(req.Context(), caller, func(c *runtime.Contracts) error {
			return op(c, caller, amount)
		})
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
	}
}

func (r *Registry) addressHandler(op func(c *runtime.Contracts, caller, addr thor.Address) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body AddressRequest
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.Join(errors.New("body"), err))
		}
		caller, err := utils.RequireCaller(body.Caller)
		if err != nil {
			return err
		}
		if body.Address == nil {
			return utils.BadRequest(errors.New("address: required"))
		}
		receipt, err := r.rt.Execute(req.Context(), caller, func(c *runtime.Contracts) error {
			return op(c, caller, *body.Address)
		})
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
	}
}

func (r *Registry) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /registry").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRegistry))
	sub.Path("/pools").
		Methods(http.MethodGet).
		Name("GET /registry/pools").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetPools))
	sub.Path("/pools").
		Methods(http.MethodPost).
		Name("POST /registry/pools").
		HandlerFunc(utils.WrapHandlerFunc(r.handleCreatePool))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /registry/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(r.amountHandler(func(c *runtime.Contracts, caller thor.Address, amount *big.Int) error {
			return c.Registry.WithdrawTokens(caller, amount)
		})))
	sub.Path("/fund").
		Methods(http.MethodPost).
		Name("POST /registry/fund").
		HandlerFunc(utils.WrapHandlerFunc(r.amountHandler(func(c *runtime.Contracts, caller thor.Address, amount *big.Int) error {
			return c.Registry.FundReserve(caller, amount)
		})))
	sub.Path("/operator").
		Methods(http.MethodPost).
		Name("POST /registry/operator").
		HandlerFunc(utils.WrapHandlerFunc(r.addressHandler(func(c *runtime.Contracts, caller, addr thor.Address) error {
			return c.Registry.SetOperator(caller, addr)
		})))
	sub.Path("/owner").
		Methods(http.MethodPost).
		Name("POST /registry/owner").
		HandlerFunc(utils.WrapHandlerFunc(r.addressHandler(func(c *runtime.Contracts, caller, addr thor.Address) error {
			return c.Registry.TransferOwnership(caller, addr)
		})))
}
