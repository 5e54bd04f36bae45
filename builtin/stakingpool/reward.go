// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingpool

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/thor"
)

// CalcReward returns amount * rate * (elapsed / 1h) / 100 where elapsed is capped at maxPeriod.
// Partial hours earn nothing.
func CalcReward(amount, hourlyRate *big.Int, elapsed, maxPeriod uint64) (*big.Int, error) {
	if elapsed > maxPeriod {
		elapsed = maxPeriod
	}
	hours := elapsed / thor.SecondsPerHour

	a, overflow := uint256.FromBig(amount)
	if overflow || amount.Sign() < 0 {
		return nil, reverts.ErrOverflow
	}
	r, overflow := uint256.FromBig(hourlyRate)
	if overflow || hourlyRate.Sign() < 0 {
		return nil, reverts.ErrOverflow
	}

	reward, overflow := new(uint256.Int).MulOverflow(a, r)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	if _, overflow = reward.MulOverflow(reward, uint256.NewInt(hours)); overflow {
		return nil, reverts.ErrOverflow
	}
	reward.Div(reward, uint256.NewInt(thor.RewardRateDenominator))
	return reward.ToBig(), nil
}
