// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Constants of the staking ledger.
const (
	SecondsPerHour uint64 = 60 * 60 // reward accrues per full hour only.

	// RewardRateDenominator turns the hourly rate into a percentage of the principal.
	RewardRateDenominator uint64 = 100
)

// MaxUint256 is the largest amount a balance, allowance or stake can hold.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
