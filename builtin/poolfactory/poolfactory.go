// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package poolfactory implements the registry creating staking pools and custodying their reward reserve.
package poolfactory

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/builtin/stakingpool"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var (
	logger = log.WithContext("pkg", "poolfactory")

	ownerKey    = thor.Bytes32(crypto.Keccak256Hash([]byte("owner")))
	operatorKey = thor.Bytes32(crypto.Keccak256Hash([]byte("operator")))
	tokenKey    = thor.Bytes32(crypto.Keccak256Hash([]byte("token")))
	poolsKey    = thor.Bytes32(crypto.Keccak256Hash([]byte("pools")))
)

// PoolParams are the owner supplied parameters of a new pool.
type PoolParams struct {
	MinStakingPeriod uint64
	MaxStakingPeriod uint64
	MaxStakeAmount   *big.Int
	Capacity         *big.Int
	HourlyRewardRate *big.Int
}

// Registry creates pools and holds the reserve they are rewarded from.
type Registry struct {
	context  *solidity.Context
	token    stakingpool.TokenMover
	owner    *solidity.Address
	operator *solidity.Address
	tokenAdr *solidity.Address
	pools    *solidity.Array[thor.Address]
}

// New create a new instance.
func New(addr thor.Address, env *xenv.Environment, token stakingpool.TokenMover) *Registry {
	ctx := solidity.NewContext(addr, env)
	return &Registry{
		context:  ctx,
		token:    token,
		owner:    solidity.NewAddress(ctx, ownerKey),
		operator: solidity.NewAddress(ctx, operatorKey),
		tokenAdr: solidity.NewAddress(ctx, tokenKey),
		pools:    solidity.NewArray[thor.Address](ctx, poolsKey),
	}
}

func (r *Registry) Address() thor.Address {
	return r.context.Address()
}

// Initialize sets up the registry, owner becomes the deployer.
func (r *Registry) Initialize(owner, operator, token thor.Address) error {
	cur, err := r.owner.Get()
	if err != nil {
		return err
	}
	if !cur.IsZero() {
		return errors.Errorf("registry %v already initialized", r.Address())
	}
	if owner.IsZero() {
		return reverts.ErrInvalidAddress
	}
	r.owner.Set(owner)
	r.operator.Set(operator)
	r.tokenAdr.Set(token)
	r.context.Emit("OwnershipTransferred", []thor.Address{{}, owner})
	return nil
}

func (r *Registry) Owner() (thor.Address, error) {
	return r.owner.Get()
}

func (r *Registry) Operator() (thor.Address, error) {
	return r.operator.Get()
}

func (r *Registry) Token() (thor.Address, error) {
	return r.tokenAdr.Get()
}

// ReserveBalance returns the token balance held in custody.
func (r *Registry) ReserveBalance() (*big.Int, error) {
	return r.token.BalanceOf(r.Address())
}

// Pool binds the pool at addr to the same environment.
func (r *Registry) Pool(addr thor.Address) *stakingpool.Pool {
	return stakingpool.New(addr, r.context.Env(), r.token)
}

func (r *Registry) onlyOwner(caller thor.Address) error {
	owner, err := r.owner.Get()
	if err != nil {
		return err
	}
	if owner.IsZero() || caller != owner {
		return reverts.ErrNotOwner
	}
	return nil
}

func (r *Registry) onlyOperator(caller thor.Address) error {
	operator, err := r.operator.Get()
	if err != nil {
		return err
	}
	if operator.IsZero() || caller != operator {
		return reverts.ErrNotOperator
	}
	return nil
}

// CreatePool creates a pool rewarded from the registry custody and returns its address.
func (r *Registry) CreatePool(caller thor.Address, params *PoolParams) (addr thor.Address, err error) {
	if err := r.onlyOwner(caller); err != nil {
		return thor.Address{}, err
	}
	token, err := r.tokenAdr.Get()
	if err != nil {
		return thor.Address{}, err
	}

	err = r.context.Atomic(func() error {
		index, err := r.pools.Len()
		if err != nil {
			return err
		}
		addr = thor.CreatePoolAddress(r.Address(), index)

		cfg := &stakingpool.Config{
			Token:            token,
			Reserve:          r.Address(),
			MinStakingPeriod: params.MinStakingPeriod,
			MaxStakingPeriod: params.MaxStakingPeriod,
			MaxStakeAmount:   orZero(params.MaxStakeAmount),
			Capacity:         orZero(params.Capacity),
			HourlyRewardRate: orZero(params.HourlyRewardRate),
		}
		if err := r.Pool(addr).Initialize(cfg); err != nil {
			return err
		}
		// rewards are pulled by the pool just in time
		if err := r.token.Approve(r.Address(), addr, thor.MaxUint256); err != nil {
			return err
		}
		if _, err := r.pools.Push(addr); err != nil {
			return err
		}
		r.context.Emit("PoolCreated", []thor.Address{addr},
			new(big.Int).SetUint64(params.MinStakingPeriod),
			new(big.Int).SetUint64(params.MaxStakingPeriod),
			cfg.MaxStakeAmount,
			cfg.Capacity,
			cfg.HourlyRewardRate,
		)
		return nil
	})
	if err != nil {
		return thor.Address{}, err
	}
	logger.Info("pool created", "pool", addr, "capacity", params.Capacity, "rate", params.HourlyRewardRate)
	return addr, nil
}

// GetAllPools returns pools in creation order.
func (r *Registry) GetAllPools() ([]thor.Address, error) {
	return r.pools.All()
}

// WithdrawTokens moves amount from custody to the operator.
func (r *Registry) WithdrawTokens(caller thor.Address, amount *big.Int) error {
	if err := r.onlyOperator(caller); err != nil {
		return err
	}
	return r.context.Atomic(func() error {
		if err := r.token.Transfer(r.Address(), caller, amount); err != nil {
			return transferFailed(err)
		}
		r.context.Emit("TokensWithdrawn", []thor.Address{caller}, amount)
		return nil
	})
}

// FundReserve pulls amount from the operator into custody, the operator must have approved the registry.
func (r *Registry) FundReserve(caller thor.Address, amount *big.Int) error {
	if err := r.onlyOperator(caller); err != nil {
		return err
	}
	return r.context.Atomic(func() error {
		if err := r.token.TransferFrom(r.Address(), caller, r.Address(), amount); err != nil {
			return transferFailed(err)
		}
		r.context.Emit("ReserveFunded", []thor.Address{caller}, amount)
		return nil
	})
}

// SetOperator replaces the operator.
func (r *Registry) SetOperator(caller, newOperator thor.Address) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	prev, err := r.operator.Get()
	if err != nil {
		return err
	}
	r.operator.Set(newOperator)
	r.context.Emit("OperatorChanged", []thor.Address{prev, newOperator})
	logger.Info("operator changed", "from", prev, "to", newOperator)
	return nil
}

// TransferOwnership hands the registry over to newOwner.
func (r *Registry) TransferOwnership(caller, newOwner thor.Address) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.ErrInvalidAddress
	}
	r.owner.Set(newOwner)
	r.context.Emit("OwnershipTransferred", []thor.Address{caller, newOwner})
	logger.Info("ownership transferred", "from", caller, "to", newOwner)
	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func transferFailed(err error) error {
	if reverts.IsRevertErr(err) {
		return reverts.ErrTransferFailed.WithCause(err)
	}
	return errors.WithMessage(err, "move token")
}
