// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/builtin/stakingpool"
	"github.com/vechain/stakepool/runtime"
)

type Pools struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pools {
	return &Pools{rt}
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var resp *Pool
	if err := p.rt.View(func(c *runtime.Contracts) error {
		pool := c.Pool(addr)
		cfg, err := pool.Config()
		if err != nil {
			return err
		}
		total, err := pool.TotalStaked()
		if err != nil {
			return err
		}
		resp = &Pool{
			Address:          addr,
			Token:            cfg.Token,
			Reserve:          cfg.Reserve,
			MinStakingPeriod: cfg.MinStakingPeriod,
			MaxStakingPeriod: cfg.MaxStakingPeriod,
			MaxStakeAmount:   utils.Amount(cfg.MaxStakeAmount),
			Capacity:         utils.Amount(cfg.Capacity),
			HourlyRewardRate: utils.Amount(cfg.HourlyRewardRate),
			TotalStaked:      utils.Amount(total),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (p *Pools) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	staker, err := utils.AddressVar(req, "staker")
	if err != nil {
		return err
	}
	resp := &Stake{}
	if err := p.rt.View(func(c *runtime.Contracts) error {
		pool := c.Pool(addr)
		reward, err := pool.PendingReward(staker)
		if err != nil {
			return err
		}
		rec, err := pool.GetStake(staker)
		if err != nil {
			return err
		}
		resp.PendingReward = utils.Amount(reward)
		if rec == nil {
			resp.Amount = utils.Amount(nil)
			return nil
		}
		resp.Active = true
		resp.Amount = utils.Amount(rec.Amount)
		resp.StartTime = rec.StartTime
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (p *Pools) handleStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body StakeRequest
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
	receipt, err := p.rt.Execute(req.Context(), caller, func(c *runtime.Contracts) error {
		return c.Pool(addr).Stake(caller, amount)
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
}

func (p *Pools) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.Join(errors.New("body"), err))
	}
	caller, err := utils.RequireCaller(body.Caller)
	if err != nil {
		return err
	}
	var payout *stakingpool.Payout
	receipt, err := p.rt.Execute(req.Context(), caller, func(c *runtime.Contracts) (err error) {
		payout, err = c.Pool(addr).Unstake(caller)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Unstaked{
		Principal: utils.Amount(payout.Principal),
		Reward:    utils.Amount(payout.Reward),
		Receipt:   utils.ConvertReceipt(receipt),
	})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /pools/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{address}/stakes/{staker}").
		Methods(http.MethodGet).
		Name("GET /pools/{address}/stakes/{staker}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStake))
	sub.Path("/{address}/stake").
		Methods(http.MethodPost).
		Name("POST /pools/{address}/stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("POST /pools/{address}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
}
