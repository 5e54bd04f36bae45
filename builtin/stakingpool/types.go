// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingpool

import (
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// TokenMover moves the staked token. Caller identity is always explicit.
type TokenMover interface {
	Transfer(from, to thor.Address, amount *big.Int) error
	TransferFrom(spender, from, to thor.Address, amount *big.Int) error
	BalanceOf(addr thor.Address) (*big.Int, error)
	Approve(owner, spender thor.Address, amount *big.Int) error
}

// Config is the immutable parameter set of a pool.
type Config struct {
	Token            thor.Address
	Reserve          thor.Address // holder the rewards are pulled from
	MinStakingPeriod uint64       // seconds
	MaxStakingPeriod uint64       // seconds, rewards stop accruing after it
	MaxStakeAmount   *big.Int
	Capacity         *big.Int
	HourlyRewardRate *big.Int // percent of the principal per full hour
}

// StakeRecord is the active stake of a user.
type StakeRecord struct {
	Amount    *big.Int
	StartTime uint64
}

// Payout is what a user receives on unstake.
type Payout struct {
	Principal *big.Int
	Reward    *big.Int
}

// Total returns principal plus reward.
func (p *Payout) Total() *big.Int {
	return new(big.Int).Add(p.Principal, p.Reward)
}
