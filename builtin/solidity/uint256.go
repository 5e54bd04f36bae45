// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/thor"
)

// Uint256 is an unsigned 256 bits integer stored in a single slot.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, slot thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.State().GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores value, it reverts with overflow if value is out of uint256 range.
func (u *Uint256) Set(value *big.Int) error {
	v, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return reverts.ErrOverflow
	}
	u.context.State().SetStorage(u.context.address, u.pos, thor.Bytes32(v.Bytes32()))
	return nil
}

// Add increases the stored value, reverts on overflow.
func (u *Uint256) Add(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	sum, err := CheckedAdd(current, value)
	if err != nil {
		return err
	}
	return u.Set(sum)
}

// Sub decreases the stored value, reverts on underflow.
func (u *Uint256) Sub(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	diff, err := CheckedSub(current, value)
	if err != nil {
		return err
	}
	return u.Set(diff)
}

// CheckedAdd returns a+b, or an overflow revert if the result exceeds uint256.
func CheckedAdd(a, b *big.Int) (*big.Int, error) {
	x, o1 := uint256.FromBig(a)
	y, o2 := uint256.FromBig(b)
	if o1 || o2 || a.Sign() < 0 || b.Sign() < 0 {
		return nil, reverts.ErrOverflow
	}
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return sum.ToBig(), nil
}

// CheckedSub returns a-b, or an overflow revert if b > a.
func CheckedSub(a, b *big.Int) (*big.Int, error) {
	x, o1 := uint256.FromBig(a)
	y, o2 := uint256.FromBig(b)
	if o1 || o2 || a.Sign() < 0 || b.Sign() < 0 {
		return nil, reverts.ErrOverflow
	}
	diff, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, reverts.ErrOverflow
	}
	return diff.ToBig(), nil
}
