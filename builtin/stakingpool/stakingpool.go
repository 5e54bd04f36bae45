// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakingpool implements a time gated staking pool paying a linear hourly reward.
package stakingpool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var (
	logger = log.WithContext("pkg", "stakingpool")

	configKey = thor.Bytes32(crypto.Keccak256Hash([]byte("config")))
	totalKey  = thor.Bytes32(crypto.Keccak256Hash([]byte("total-staked")))
	stakesKey = thor.Bytes32(crypto.Keccak256Hash([]byte("stakes")))
)

// ErrPoolNotFound is returned when no pool was initialized at the address.
var ErrPoolNotFound = errors.New("pool not found")

func SetLogger(l log.Logger) {
	logger = l
}

// Pool is a staking pool bound to its address.
type Pool struct {
	context *solidity.Context
	token   TokenMover
	config  *solidity.Raw[Config]
	total   *solidity.Uint256
	stakes  *solidity.Mapping[thor.Address, *StakeRecord]
}

// New create a new instance.
func New(addr thor.Address, env *xenv.Environment, token TokenMover) *Pool {
	ctx := solidity.NewContext(addr, env)
	return &Pool{
		context: ctx,
		token:   token,
		config:  solidity.NewRaw[Config](ctx, configKey),
		total:   solidity.NewUint256(ctx, totalKey),
		stakes:  solidity.NewMapping[thor.Address, *StakeRecord](ctx, stakesKey),
	}
}

func (p *Pool) Address() thor.Address {
	return p.context.Address()
}

// Initialize stores the immutable config. It fails if the pool already exists.
func (p *Pool) Initialize(cfg *Config) error {
	exists, err := p.Exists()
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("pool %v already initialized", p.Address())
	}
	return p.config.Set(cfg)
}

// Exists returns whether the pool was initialized.
func (p *Pool) Exists() (bool, error) {
	var cfg Config
	return p.config.Get(&cfg)
}

// Config returns the pool parameters.
func (p *Pool) Config() (*Config, error) {
	var cfg Config
	exists, err := p.config.Get(&cfg)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPoolNotFound
	}
	return &cfg, nil
}

// TotalStaked returns the sum of all active stakes.
func (p *Pool) TotalStaked() (*big.Int, error) {
	return p.total.Get()
}

// GetStake returns the active stake of user, nil if there's none.
func (p *Pool) GetStake(user thor.Address) (*StakeRecord, error) {
	return p.stakes.Get(user)
}

// PendingReward returns the reward user would receive when unstaking now.
func (p *Pool) PendingReward(user thor.Address) (*big.Int, error) {
	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}
	rec, err := p.GetStake(user)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return new(big.Int), nil
	}
	return CalcReward(rec.Amount, cfg.HourlyRewardRate, p.elapsed(rec), cfg.MaxStakingPeriod)
}

func (p *Pool) elapsed(rec *StakeRecord) uint64 {
	now := p.context.Now()
	if now < rec.StartTime {
		return 0
	}
	return now - rec.StartTime
}

// Stake deposits amount of token from caller into the pool.
func (p *Pool) Stake(caller thor.Address, amount *big.Int) (err error) {
	defer func() { observe("stake", err) }()

	cfg, err := p.Config()
	if err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	total, err := p.total.Get()
	if err != nil {
		return err
	}
	newTotal, err := solidity.CheckedAdd(total, amount)
	if err != nil {
		return err
	}
	if newTotal.Cmp(cfg.Capacity) > 0 {
		return reverts.ErrCapacityExceeded
	}
	if amount.Cmp(cfg.MaxStakeAmount) > 0 {
		return reverts.ErrAmountExceedsMaxStake
	}
	rec, err := p.GetStake(caller)
	if err != nil {
		return err
	}
	if rec != nil {
		return reverts.ErrAlreadyStaked
	}
	// a deposit whose full-term reward overflows could never be unstaked
	if _, err := CalcReward(amount, cfg.HourlyRewardRate, cfg.MaxStakingPeriod, cfg.MaxStakingPeriod); err != nil {
		return err
	}

	return p.context.Atomic(func() error {
		if err := p.token.TransferFrom(p.Address(), caller, p.Address(), amount); err != nil {
			return transferFailed(err)
		}
		if err := p.stakes.Set(caller, &StakeRecord{Amount: amount, StartTime: p.context.Now()}); err != nil {
			return err
		}
		if err := p.total.Set(newTotal); err != nil {
			return err
		}
		p.context.Emit("Staked", []thor.Address{caller}, amount)
		logger.Debug("staked", "pool", p.Address(), "user", caller, "amount", amount)
		return nil
	})
}

// Unstake returns principal and reward of the caller's active stake.
func (p *Pool) Unstake(caller thor.Address) (payout *Payout, err error) {
	defer func() { observe("unstake", err) }()

	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}
	rec, err := p.GetStake(caller)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, reverts.ErrNoActiveStake
	}
	elapsed := p.elapsed(rec)
	if elapsed < cfg.MinStakingPeriod {
		return nil, reverts.ErrMinimumPeriodNotReached
	}
	reward, err := CalcReward(rec.Amount, cfg.HourlyRewardRate, elapsed, cfg.MaxStakingPeriod)
	if err != nil {
		return nil, err
	}

	err = p.context.Atomic(func() error {
		p.stakes.Delete(caller)
		if err := p.total.Sub(rec.Amount); err != nil {
			return err
		}
		if err := p.token.Transfer(p.Address(), caller, rec.Amount); err != nil {
			return transferFailed(err)
		}
		if reward.Sign() > 0 {
			if err := p.token.TransferFrom(p.Address(), cfg.Reserve, caller, reward); err != nil {
				return transferFailed(err)
			}
		}
		p.context.Emit("Unstaked", []thor.Address{caller}, rec.Amount, reward)
		logger.Debug("unstaked", "pool", p.Address(), "user", caller, "amount", rec.Amount, "reward", reward)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Payout{Principal: rec.Amount, Reward: reward}, nil
}

// transferFailed turns a token rejection into a pool revert, keeping infrastructure errors as is.
func transferFailed(err error) error {
	if reverts.IsRevertErr(err) {
		return reverts.ErrTransferFailed.WithCause(err)
	}
	return errors.WithMessage(err, "move token")
}
