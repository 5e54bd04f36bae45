// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/thor"
)

// Array is an append-only dynamic array, similar to a storage array in Solidity.
// The length lives at pos, elements at blake2b(pos, index).
type Array[V any] struct {
	context *Context
	length  *Uint256
	basePos thor.Bytes32
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		length:  NewUint256(context, pos),
		basePos: pos,
	}
}

func (a *Array[V]) position(index uint64) thor.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return thor.Blake2b(a.basePos.Bytes(), b[:])
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns the element at index. Out of range indexes yield the zero value.
func (a *Array[V]) Get(index uint64) (value V, err error) {
	err = a.context.State().DecodeStorage(a.context.address, a.position(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.context.State().EncodeStorage(a.context.address, a.position(n), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	}); err != nil {
		return 0, err
	}
	if err := a.length.Set(new(big.Int).SetUint64(n + 1)); err != nil {
		return 0, err
	}
	return n, nil
}

// All returns every element in index order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := a.Get(i)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
