// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/thor"
)

// Summary is the state of the pool registry.
type Summary struct {
	Address  thor.Address          `json:"address"`
	Owner    thor.Address          `json:"owner"`
	Operator thor.Address          `json:"operator"`
	Token    thor.Address          `json:"token"`
	Reserve  *math.HexOrDecimal256 `json:"reserve"`
	Pools    int                   `json:"pools"`
}

// CreatePool is the request to create a pool.
type CreatePool struct {
	Caller           *thor.Address         `json:"caller"`
	MinStakingPeriod uint64                `json:"minStakingPeriod"`
	MaxStakingPeriod uint64                `json:"maxStakingPeriod"`
	MaxStakeAmount   *math.HexOrDecimal256 `json:"maxStakeAmount"`
	Capacity         *math.HexOrDecimal256 `json:"capacity"`
	HourlyRewardRate *math.HexOrDecimal256 `json:"hourlyRewardRate"`
}

// PoolCreated is the response of a pool creation.
type PoolCreated struct {
	Pool    thor.Address   `json:"pool"`
	Receipt *utils.Receipt `json:"receipt"`
}

// AmountRequest moves amount of tokens on behalf of caller.
type AmountRequest struct {
	Caller *thor.Address         `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// AddressRequest assigns a role to address.
type AddressRequest struct {
	Caller  *thor.Address `json:"caller"`
	Address *thor.Address `json:"address"`
}
