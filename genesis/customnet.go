// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"errors"
	"fmt"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/poolfactory"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/runtime"
)

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.LaunchTime == 0 {
		return nil, errors.New("launchTime must be set")
	}
	if gen.Registry.Owner.IsZero() {
		return nil, errors.New("registry owner must be set")
	}
	for _, a := range gen.Accounts {
		if a.Address.IsZero() {
			return nil, errors.New("account address must not be zero")
		}
		if a.Balance.Int().Sign() < 1 {
			return nil, fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
	}
	for i, p := range gen.Pools {
		if p.MaxStakingPeriod < p.MinStakingPeriod {
			return nil, fmt.Errorf("pool %d: maxStakingPeriod is less than minStakingPeriod", i)
		}
	}

	operator := gen.Registry.Owner
	if gen.Registry.Operator != nil {
		operator = *gen.Registry.Operator
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		ExtraData([]byte(gen.ExtraData)).
		Setup(func(c *runtime.Contracts) error {
			if err := c.Token.SetMeta(&token.Meta{
				Name:     gen.Token.Name,
				Symbol:   gen.Token.Symbol,
				Decimals: gen.Token.Decimals,
			}); err != nil {
				return err
			}
			for _, a := range gen.Accounts {
				if err := c.Token.Mint(a.Address, a.Balance.Int()); err != nil {
					return fmt.Errorf("%s: %w", a.Address, err)
				}
			}
			return nil
		}).
		Setup(func(c *runtime.Contracts) error {
			if err := c.Registry.Initialize(gen.Registry.Owner, operator, builtin.Token.Address); err != nil {
				return err
			}
			if reserve := gen.Registry.Reserve.Int(); reserve.Sign() > 0 {
				return c.Token.Mint(builtin.Registry.Address, reserve)
			}
			return nil
		}).
		Setup(func(c *runtime.Contracts) error {
			for _, a := range gen.Approvals {
				if err := c.Token.Approve(a.Owner, a.Spender, a.Amount.Int()); err != nil {
					return fmt.Errorf("approve %s for %s: %w", a.Spender, a.Owner, err)
				}
			}
			for i, p := range gen.Pools {
				if _, err := c.Registry.CreatePool(gen.Registry.Owner, &poolfactory.PoolParams{
					MinStakingPeriod: p.MinStakingPeriod,
					MaxStakingPeriod: p.MaxStakingPeriod,
					MaxStakeAmount:   p.MaxStakeAmount.Int(),
					Capacity:         p.Capacity.Int(),
					HourlyRewardRate: p.HourlyRewardRate.Int(),
				}); err != nil {
					return fmt.Errorf("pool %d: %w", i, err)
				}
			}
			return nil
		})

	return builder.Build("customnet")
}
