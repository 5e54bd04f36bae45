// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/thor"
)

// Pool is the config and totals of a pool.
type Pool struct {
	Address          thor.Address          `json:"address"`
	Token            thor.Address          `json:"token"`
	Reserve          thor.Address          `json:"reserve"`
	MinStakingPeriod uint64                `json:"minStakingPeriod"`
	MaxStakingPeriod uint64                `json:"maxStakingPeriod"`
	MaxStakeAmount   *math.HexOrDecimal256 `json:"maxStakeAmount"`
	Capacity         *math.HexOrDecimal256 `json:"capacity"`
	HourlyRewardRate *math.HexOrDecimal256 `json:"hourlyRewardRate"`
	TotalStaked      *math.HexOrDecimal256 `json:"totalStaked"`
}

// Stake is the active stake of a staker, Active is false if there's none.
type Stake struct {
	Active        bool                  `json:"active"`
	Amount        *math.HexOrDecimal256 `json:"amount"`
	StartTime     uint64                `json:"startTime"`
	PendingReward *math.HexOrDecimal256 `json:"pendingReward"`
}

// StakeRequest deposits amount on behalf of caller.
type StakeRequest struct {
	Caller *thor.Address         `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// UnstakeRequest withdraws the caller's stake.
type UnstakeRequest struct {
	Caller *thor.Address `json:"caller"`
}

// Unstaked is the response of an unstake.
type Unstaked struct {
	Principal *math.HexOrDecimal256 `json:"principal"`
	Reward    *math.HexOrDecimal256 `json:"reward"`
	Receipt   *utils.Receipt        `json:"receipt"`
}
