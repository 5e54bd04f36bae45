// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible token staked into and rewarded by pools.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var (
	metaKey       = thor.Bytes32(crypto.Keccak256Hash([]byte("token-meta")))
	supplyKey     = thor.Bytes32(crypto.Keccak256Hash([]byte("token-supply")))
	balancesKey   = thor.Bytes32(crypto.Keccak256Hash([]byte("balances")))
	allowancesKey = thor.Bytes32(crypto.Keccak256Hash([]byte("allowances")))
)

func allowanceKey(owner, spender thor.Address) thor.Bytes32 {
	return thor.Bytes32(crypto.Keccak256Hash(owner.Bytes(), spender.Bytes()))
}

// Meta describes the token.
type Meta struct {
	Name     string
	Symbol   string
	Decimals uint8
}

type Token struct {
	context    *solidity.Context
	meta       *solidity.Raw[Meta]
	supply     *solidity.Uint256
	balances   *solidity.Mapping[thor.Address, *big.Int]
	allowances *solidity.Mapping[thor.Bytes32, *big.Int]
}

func New(addr thor.Address, env *xenv.Environment) *Token {
	ctx := solidity.NewContext(addr, env)
	return &Token{
		context:    ctx,
		meta:       solidity.NewRaw[Meta](ctx, metaKey),
		supply:     solidity.NewUint256(ctx, supplyKey),
		balances:   solidity.NewMapping[thor.Address, *big.Int](ctx, balancesKey),
		allowances: solidity.NewMapping[thor.Bytes32, *big.Int](ctx, allowancesKey),
	}
}

func (t *Token) Address() thor.Address {
	return t.context.Address()
}

// Meta returns the token description, zero value if never set.
func (t *Token) Meta() (*Meta, error) {
	var m Meta
	if _, err := t.meta.Get(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *Token) SetMeta(m *Meta) error {
	return t.meta.Set(m)
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	v, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func (t *Token) setBalance(addr thor.Address, bal *big.Int) error {
	if bal.Sign() == 0 {
		t.balances.Delete(addr)
		return nil
	}
	return t.balances.Set(addr, bal)
}

// Mint creates new tokens for the given account.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrTransferToZero
	}
	return t.context.Atomic(func() error {
		if err := t.supply.Add(amount); err != nil {
			return err
		}
		bal, err := t.BalanceOf(to)
		if err != nil {
			return err
		}
		sum, err := solidity.CheckedAdd(bal, amount)
		if err != nil {
			return err
		}
		if err := t.setBalance(to, sum); err != nil {
			return err
		}
		t.context.Emit("Transfer", []thor.Address{{}, to}, amount)
		return nil
	})
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	return t.context.Atomic(func() error {
		return t.transfer(from, to, amount)
	})
}

func (t *Token) transfer(from, to thor.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrTransferToZero
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	if err := t.setBalance(from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	sum, err := solidity.CheckedAdd(toBal, amount)
	if err != nil {
		return err
	}
	if err := t.setBalance(to, sum); err != nil {
		return err
	}
	t.context.Emit("Transfer", []thor.Address{from, to}, amount)
	return nil
}

// TransferFrom moves amount on behalf of from, spending the allowance granted to spender.
// An allowance of MaxUint256 is never decreased.
func (t *Token) TransferFrom(spender, from, to thor.Address, amount *big.Int) error {
	return t.context.Atomic(func() error {
		allowed, err := t.Allowance(from, spender)
		if err != nil {
			return err
		}
		if allowed.Cmp(amount) < 0 {
			return reverts.ErrInsufficientAllowance
		}
		if allowed.Cmp(thor.MaxUint256) != 0 {
			if err := t.setAllowance(from, spender, new(big.Int).Sub(allowed, amount)); err != nil {
				return err
			}
		}
		return t.transfer(from, to, amount)
	})
}

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender thor.Address, amount *big.Int) error {
	if spender.IsZero() {
		return reverts.ErrApproveToZero
	}
	if err := t.setAllowance(owner, spender, amount); err != nil {
		return err
	}
	t.context.Emit("Approval", []thor.Address{owner, spender}, amount)
	return nil
}

func (t *Token) setAllowance(owner, spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 || amount.Cmp(thor.MaxUint256) > 0 {
		return reverts.ErrOverflow
	}
	key := allowanceKey(owner, spender)
	if amount.Sign() == 0 {
		t.allowances.Delete(key)
		return nil
	}
	return t.allowances.Set(key, amount)
}
