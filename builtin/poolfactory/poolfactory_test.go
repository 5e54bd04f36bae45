// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poolfactory_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/poolfactory"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var (
	tokenAddr    = thor.BytesToAddress([]byte("token"))
	registryAddr = thor.BytesToAddress([]byte("registry"))
	owner        = thor.BytesToAddress([]byte("owner"))
	operator     = thor.BytesToAddress([]byte("operator"))
	user         = thor.BytesToAddress([]byte("user"))

	rewardAmount = ether(40_000)
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func defaultParams() *poolfactory.PoolParams {
	return &poolfactory.PoolParams{
		MinStakingPeriod: 5 * 60,
		MaxStakingPeriod: 4 * 60 * 60,
		MaxStakeAmount:   ether(10_000),
		Capacity:         ether(100_000),
		HourlyRewardRate: big.NewInt(10),
	}
}

type testSetup struct {
	env      *xenv.Environment
	token    *token.Token
	registry *poolfactory.Registry
}

func (s *testSetup) balanceOf(t *testing.T, addr thor.Address) *big.Int {
	bal, err := s.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func newSetup(t *testing.T) *testSetup {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := xenv.New(state.NewStater(db, 0).NewState(), &xenv.BlockContext{Time: 1_700_000_000}, nil)
	tk := token.New(tokenAddr, env)
	require.NoError(t, tk.Mint(owner, ether(1_000_000)))

	registry := poolfactory.New(registryAddr, env, tk)
	require.NoError(t, registry.Initialize(owner, operator, tokenAddr))

	require.NoError(t, tk.Transfer(owner, operator, rewardAmount))
	require.NoError(t, tk.Approve(operator, registryAddr, rewardAmount))

	return &testSetup{env: env, token: tk, registry: registry}
}

func TestInitialize(t *testing.T) {
	s := newSetup(t)

	got, err := s.registry.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, got)
	got, err = s.registry.Operator()
	require.NoError(t, err)
	assert.Equal(t, operator, got)
	got, err = s.registry.Token()
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, got)

	assert.Error(t, s.registry.Initialize(user, user, tokenAddr))
}

func TestCreatePool(t *testing.T) {
	s := newSetup(t)
	params := defaultParams()

	addr, err := s.registry.CreatePool(owner, params)
	require.NoError(t, err)
	assert.Equal(t, thor.CreatePoolAddress(registryAddr, 0), addr)

	pools, err := s.registry.GetAllPools()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr}, pools)

	cfg, err := s.registry.Pool(addr).Config()
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, cfg.Token)
	assert.Equal(t, registryAddr, cfg.Reserve)
	assert.Equal(t, params.MinStakingPeriod, cfg.MinStakingPeriod)
	assert.Equal(t, params.MaxStakingPeriod, cfg.MaxStakingPeriod)
	assert.Equal(t, 0, params.MaxStakeAmount.Cmp(cfg.MaxStakeAmount))
	assert.Equal(t, 0, params.Capacity.Cmp(cfg.Capacity))
	assert.Equal(t, 0, params.HourlyRewardRate.Cmp(cfg.HourlyRewardRate))

	allowance, err := s.token.Allowance(registryAddr, addr)
	require.NoError(t, err)
	assert.Equal(t, 0, allowance.Cmp(thor.MaxUint256))

	events := s.env.Events()
	last := events[len(events)-1]
	assert.Equal(t, "PoolCreated", last.Name)
	assert.Equal(t, xenv.AddressTopic(addr), last.Topics[0])
}

func TestCreatePoolAppendOnly(t *testing.T) {
	s := newSetup(t)

	var created []thor.Address
	for i := range 5 {
		params := defaultParams()
		params.HourlyRewardRate = big.NewInt(int64(i + 1))
		addr, err := s.registry.CreatePool(owner, params)
		require.NoError(t, err)
		created = append(created, addr)
	}

	pools, err := s.registry.GetAllPools()
	require.NoError(t, err)
	assert.Equal(t, created, pools)
	for i, addr := range pools {
		cfg, err := s.registry.Pool(addr).Config()
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), cfg.HourlyRewardRate.Int64())
	}
}

func TestCreatePoolNotOwner(t *testing.T) {
	s := newSetup(t)
	events := len(s.env.Events())

	_, err := s.registry.CreatePool(user, defaultParams())
	assert.ErrorIs(t, err, reverts.ErrNotOwner)
	assert.Equal(t, "Ownable: caller is not the owner", err.Error())

	pools, err := s.registry.GetAllPools()
	require.NoError(t, err)
	assert.Empty(t, pools)
	assert.Len(t, s.env.Events(), events)
}

func TestWithdrawTokens(t *testing.T) {
	s := newSetup(t)
	_, err := s.registry.CreatePool(owner, defaultParams())
	require.NoError(t, err)

	require.NoError(t, s.registry.FundReserve(operator, rewardAmount))
	assert.Zero(t, s.balanceOf(t, operator).Sign())
	reserve, err := s.registry.ReserveBalance()
	require.NoError(t, err)
	assert.Equal(t, 0, reserve.Cmp(rewardAmount))

	require.NoError(t, s.registry.WithdrawTokens(operator, rewardAmount))
	assert.Equal(t, 0, s.balanceOf(t, operator).Cmp(rewardAmount))
	assert.Zero(t, s.balanceOf(t, registryAddr).Sign())

	err = s.registry.WithdrawTokens(operator, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)
}

func TestOperatorOnly(t *testing.T) {
	s := newSetup(t)

	err := s.registry.WithdrawTokens(user, ether(100))
	assert.ErrorIs(t, err, reverts.ErrNotOperator)
	assert.Equal(t, "StakingPoolFactory: Only the operator can call this function", err.Error())

	assert.ErrorIs(t, s.registry.FundReserve(owner, ether(1)), reverts.ErrNotOperator)
}

func TestFundReserveWithoutApproval(t *testing.T) {
	s := newSetup(t)
	require.NoError(t, s.token.Approve(operator, registryAddr, big.NewInt(0)))

	err := s.registry.FundReserve(operator, ether(1))
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.Equal(t, 0, s.balanceOf(t, operator).Cmp(rewardAmount))
}

func TestSetOperator(t *testing.T) {
	s := newSetup(t)

	assert.ErrorIs(t, s.registry.SetOperator(user, user), reverts.ErrNotOwner)
	got, _ := s.registry.Operator()
	assert.Equal(t, operator, got)

	require.NoError(t, s.registry.SetOperator(owner, user))
	got, err := s.registry.Operator()
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// takes effect for the next withdrawal
	assert.ErrorIs(t, s.registry.WithdrawTokens(operator, big.NewInt(0)), reverts.ErrNotOperator)
	assert.NoError(t, s.registry.WithdrawTokens(user, big.NewInt(0)))
}

func TestTransferOwnership(t *testing.T) {
	s := newSetup(t)

	assert.ErrorIs(t, s.registry.TransferOwnership(user, user), reverts.ErrNotOwner)
	assert.ErrorIs(t, s.registry.TransferOwnership(owner, thor.Address{}), reverts.ErrInvalidAddress)

	require.NoError(t, s.registry.TransferOwnership(owner, user))
	_, err := s.registry.CreatePool(owner, defaultParams())
	assert.ErrorIs(t, err, reverts.ErrNotOwner)
	_, err = s.registry.CreatePool(user, defaultParams())
	assert.NoError(t, err)
}

func TestPoolRewardsFromCustody(t *testing.T) {
	s := newSetup(t)
	addr, err := s.registry.CreatePool(owner, defaultParams())
	require.NoError(t, err)
	require.NoError(t, s.registry.FundReserve(operator, rewardAmount))

	stake := ether(1000)
	require.NoError(t, s.token.Transfer(owner, user, stake))
	require.NoError(t, s.token.Approve(user, addr, stake))

	pool := s.registry.Pool(addr)
	require.NoError(t, pool.Stake(user, stake))
	s.env.BlockContext().Time += 2 * 60 * 60

	payout, err := pool.Unstake(user)
	require.NoError(t, err)
	assert.Equal(t, 0, payout.Total().Cmp(ether(1200)))
	assert.Equal(t, 0, s.balanceOf(t, user).Cmp(ether(1200)))

	reserve, err := s.registry.ReserveBalance()
	require.NoError(t, err)
	assert.Equal(t, 0, reserve.Cmp(ether(40_000-200)))
}

func TestPoolRewardReserveDepleted(t *testing.T) {
	s := newSetup(t)
	addr, err := s.registry.CreatePool(owner, defaultParams())
	require.NoError(t, err)

	stake := ether(1000)
	require.NoError(t, s.token.Transfer(owner, user, stake))
	require.NoError(t, s.token.Approve(user, addr, stake))

	pool := s.registry.Pool(addr)
	require.NoError(t, pool.Stake(user, stake))
	s.env.BlockContext().Time += 2 * 60 * 60

	// empty custody surfaces at unstake time
	_, err = pool.Unstake(user)
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	rec, err := pool.GetStake(user)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
