// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var (
	tokenAddr = thor.BytesToAddress([]byte("token"))
	alice     = thor.BytesToAddress([]byte("alice"))
	bob       = thor.BytesToAddress([]byte("bob"))
	carol     = thor.BytesToAddress([]byte("carol"))
)

func newTestToken(t *testing.T) (*Token, *xenv.Environment) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	env := xenv.New(state.NewStater(db, 0).NewState(), nil, nil)
	return New(tokenAddr, env), env
}

func balanceOf(t *testing.T, tk *Token, addr thor.Address) int64 {
	bal, err := tk.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Int64()
}

func TestMintAndTransfer(t *testing.T) {
	tk, env := newTestToken(t)

	require.NoError(t, tk.Mint(alice, big.NewInt(1000)))
	supply, err := tk.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())

	require.NoError(t, tk.Transfer(alice, bob, big.NewInt(300)))
	assert.Equal(t, int64(700), balanceOf(t, tk, alice))
	assert.Equal(t, int64(300), balanceOf(t, tk, bob))

	err = tk.Transfer(bob, carol, big.NewInt(301))
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)
	assert.Equal(t, int64(300), balanceOf(t, tk, bob))
	assert.Equal(t, int64(0), balanceOf(t, tk, carol))

	assert.ErrorIs(t, tk.Transfer(alice, thor.Address{}, big.NewInt(1)), reverts.ErrTransferToZero)

	events := env.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Transfer", events[1].Name)
	assert.Equal(t, xenv.AddressTopic(alice), events[1].Topics[0])
	assert.Equal(t, xenv.AddressTopic(bob), events[1].Topics[1])
	assert.Equal(t, int64(300), events[1].Values[0].Int64())
}

func TestTransferFrom(t *testing.T) {
	tk, _ := newTestToken(t)
	require.NoError(t, tk.Mint(alice, big.NewInt(1000)))

	err := tk.TransferFrom(bob, alice, carol, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllowance)

	require.NoError(t, tk.Approve(alice, bob, big.NewInt(500)))
	require.NoError(t, tk.TransferFrom(bob, alice, carol, big.NewInt(200)))

	allowed, err := tk.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(300), allowed.Int64())
	assert.Equal(t, int64(200), balanceOf(t, tk, carol))

	// allowance is restored when the transfer fails on balance
	require.NoError(t, tk.Approve(alice, bob, big.NewInt(5000)))
	err = tk.TransferFrom(bob, alice, carol, big.NewInt(2000))
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)
	allowed, _ = tk.Allowance(alice, bob)
	assert.Equal(t, int64(5000), allowed.Int64())
}

func TestUnlimitedAllowance(t *testing.T) {
	tk, _ := newTestToken(t)
	require.NoError(t, tk.Mint(alice, big.NewInt(1000)))
	require.NoError(t, tk.Approve(alice, bob, thor.MaxUint256))

	require.NoError(t, tk.TransferFrom(bob, alice, bob, big.NewInt(1000)))
	allowed, err := tk.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, allowed.Cmp(thor.MaxUint256))
}

func TestApprove(t *testing.T) {
	tk, _ := newTestToken(t)

	assert.ErrorIs(t, tk.Approve(alice, thor.Address{}, big.NewInt(1)), reverts.ErrApproveToZero)
	assert.ErrorIs(t, tk.Approve(alice, bob, new(big.Int).Add(thor.MaxUint256, big.NewInt(1))), reverts.ErrOverflow)

	require.NoError(t, tk.Approve(alice, bob, big.NewInt(10)))
	require.NoError(t, tk.Approve(alice, bob, big.NewInt(0)))
	allowed, err := tk.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Zero(t, allowed.Sign())
}

func TestMeta(t *testing.T) {
	tk, _ := newTestToken(t)

	m, err := tk.Meta()
	require.NoError(t, err)
	assert.Equal(t, &Meta{}, m)

	require.NoError(t, tk.SetMeta(&Meta{Name: "Stake Token", Symbol: "STK", Decimals: 18}))
	m, err = tk.Meta()
	require.NoError(t, err)
	assert.Equal(t, "STK", m.Symbol)
	assert.Equal(t, uint8(18), m.Decimals)
	assert.Equal(t, tokenAddr, tk.Address())
}
