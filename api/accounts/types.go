// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/thor"
)

// Account for marshal account
type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// Allowance is the amount spender may move out of owner's balance.
type Allowance struct {
	Owner   thor.Address          `json:"owner"`
	Spender thor.Address          `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

// Token describes the staked token.
type Token struct {
	Address     thor.Address          `json:"address"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

// TransferRequest moves amount from caller to To.
type TransferRequest struct {
	Caller *thor.Address         `json:"caller"`
	To     *thor.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ApproveRequest lets Spender move up to Amount of caller's balance.
type ApproveRequest struct {
	Caller  *thor.Address         `json:"caller"`
	Spender *thor.Address         `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}
