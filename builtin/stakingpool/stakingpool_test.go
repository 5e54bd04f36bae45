// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingpool_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/stakingpool"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

const (
	minStakingPeriod = 5 * 60
	maxStakingPeriod = 4 * 60 * 60
	startTime        = 1_700_000_000
)

var (
	tokenAddr = thor.BytesToAddress([]byte("token"))
	poolAddr  = thor.BytesToAddress([]byte("pool"))
	owner     = thor.BytesToAddress([]byte("owner"))
	user      = thor.BytesToAddress([]byte("user"))
	rewarder  = thor.BytesToAddress([]byte("rewarder"))

	tokenSupply    = ether(1_000_000)
	maxStakeAmount = ether(10_000)
	capacity       = ether(100_000)
	hourlyReward   = big.NewInt(10)
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type testSetup struct {
	env   *xenv.Environment
	token *token.Token
	pool  *stakingpool.Pool
}

func (s *testSetup) advance(seconds uint64) {
	s.env.BlockContext().Time += seconds
}

func (s *testSetup) balanceOf(t *testing.T, addr thor.Address) *big.Int {
	bal, err := s.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

// fund gives user amount and approves the pool to pull it.
func (s *testSetup) fund(t *testing.T, who thor.Address, amount *big.Int) {
	require.NoError(t, s.token.Transfer(owner, who, amount))
	require.NoError(t, s.token.Approve(who, poolAddr, amount))
}

func newSetup(t *testing.T) *testSetup {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := xenv.New(state.NewStater(db, 0).NewState(), &xenv.BlockContext{Time: startTime}, nil)
	tk := token.New(tokenAddr, env)
	require.NoError(t, tk.Mint(owner, tokenSupply))
	require.NoError(t, tk.Transfer(owner, rewarder, capacity))

	pool := stakingpool.New(poolAddr, env, tk)
	require.NoError(t, pool.Initialize(&stakingpool.Config{
		Token:            tokenAddr,
		Reserve:          rewarder,
		MinStakingPeriod: minStakingPeriod,
		MaxStakingPeriod: maxStakingPeriod,
		MaxStakeAmount:   maxStakeAmount,
		Capacity:         capacity,
		HourlyRewardRate: hourlyReward,
	}))
	require.NoError(t, tk.Approve(rewarder, poolAddr, capacity))

	return &testSetup{env: env, token: tk, pool: pool}
}

func TestInitialize(t *testing.T) {
	s := newSetup(t)

	cfg, err := s.pool.Config()
	require.NoError(t, err)
	assert.Equal(t, rewarder, cfg.Reserve)
	assert.Equal(t, uint64(minStakingPeriod), cfg.MinStakingPeriod)
	assert.Equal(t, 0, cfg.Capacity.Cmp(capacity))

	assert.Error(t, s.pool.Initialize(cfg))

	missing := stakingpool.New(thor.Address{0xde, 0xad}, s.env, s.token)
	_, err = missing.Config()
	assert.ErrorIs(t, err, stakingpool.ErrPoolNotFound)
	assert.ErrorIs(t, missing.Stake(user, big.NewInt(1)), stakingpool.ErrPoolNotFound)
}

func TestStake(t *testing.T) {
	s := newSetup(t)
	amount := ether(1000)
	s.fund(t, user, amount)

	require.NoError(t, s.pool.Stake(user, amount))

	rec, err := s.pool.GetStake(user)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 0, rec.Amount.Cmp(amount))
	assert.Equal(t, uint64(startTime), rec.StartTime)

	total, err := s.pool.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(amount))
	assert.Equal(t, 0, s.balanceOf(t, poolAddr).Cmp(amount))
	assert.Zero(t, s.balanceOf(t, user).Sign())

	events := s.env.Events()
	last := events[len(events)-1]
	assert.Equal(t, "Staked", last.Name)
	assert.Equal(t, poolAddr, last.Address)
	assert.Equal(t, xenv.AddressTopic(user), last.Topics[0])
}

func TestStakeRejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, s *testSetup)
		amount  *big.Int
		wantErr error
	}{
		{
			name:    "zero amount",
			amount:  big.NewInt(0),
			wantErr: reverts.ErrInvalidAmount,
		},
		{
			name:    "above maximum stake amount",
			prepare: func(t *testing.T, s *testSetup) { s.fund(t, user, ether(10_001)) },
			amount:  ether(10_001),
			wantErr: reverts.ErrAmountExceedsMaxStake,
		},
		{
			name:    "above pool capacity",
			prepare: func(t *testing.T, s *testSetup) { s.fund(t, user, ether(100_001)) },
			amount:  ether(100_001),
			wantErr: reverts.ErrCapacityExceeded,
		},
		{
			name: "capacity filled by others",
			prepare: func(t *testing.T, s *testSetup) {
				for i := range 10 {
					other := thor.BytesToAddress([]byte{byte(i + 1)})
					s.fund(t, other, maxStakeAmount)
					require.NoError(t, s.pool.Stake(other, maxStakeAmount))
				}
				s.fund(t, user, big.NewInt(1))
			},
			amount:  big.NewInt(1),
			wantErr: reverts.ErrCapacityExceeded,
		},
		{
			name: "already staked",
			prepare: func(t *testing.T, s *testSetup) {
				s.fund(t, user, ether(2))
				require.NoError(t, s.pool.Stake(user, ether(1)))
			},
			amount:  ether(1),
			wantErr: reverts.ErrAlreadyStaked,
		},
		{
			name:    "not approved",
			prepare: func(t *testing.T, s *testSetup) { require.NoError(t, s.token.Transfer(owner, user, ether(1))) },
			amount:  ether(1),
			wantErr: reverts.ErrTransferFailed,
		},
		{
			name:    "insufficient balance",
			prepare: func(t *testing.T, s *testSetup) { require.NoError(t, s.token.Approve(user, poolAddr, ether(1))) },
			amount:  ether(1),
			wantErr: reverts.ErrTransferFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSetup(t)
			if tt.prepare != nil {
				tt.prepare(t, s)
			}
			totalBefore, err := s.pool.TotalStaked()
			require.NoError(t, err)
			recBefore, err := s.pool.GetStake(user)
			require.NoError(t, err)
			events := len(s.env.Events())

			err = s.pool.Stake(user, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)

			totalAfter, err := s.pool.TotalStaked()
			require.NoError(t, err)
			assert.Equal(t, 0, totalBefore.Cmp(totalAfter))
			recAfter, err := s.pool.GetStake(user)
			require.NoError(t, err)
			assert.Equal(t, recBefore, recAfter)
			assert.Len(t, s.env.Events(), events)
		})
	}
}

func TestUnstake(t *testing.T) {
	s := newSetup(t)
	amount := ether(1000)
	s.fund(t, user, amount)
	require.NoError(t, s.pool.Stake(user, amount))

	s.advance(2 * 60 * 60)

	pending, err := s.pool.PendingReward(user)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Cmp(ether(200)))

	payout, err := s.pool.Unstake(user)
	require.NoError(t, err)
	assert.Equal(t, 0, payout.Principal.Cmp(amount))
	assert.Equal(t, 0, payout.Reward.Cmp(ether(200)))
	assert.Equal(t, 0, payout.Total().Cmp(ether(1200)))

	assert.Equal(t, 0, s.balanceOf(t, user).Cmp(ether(1200)))
	assert.Equal(t, 0, s.balanceOf(t, rewarder).Cmp(new(big.Int).Sub(capacity, ether(200))))
	assert.Zero(t, s.balanceOf(t, poolAddr).Sign())

	rec, err := s.pool.GetStake(user)
	require.NoError(t, err)
	assert.Nil(t, rec)
	total, err := s.pool.TotalStaked()
	require.NoError(t, err)
	assert.Zero(t, total.Sign())

	events := s.env.Events()
	last := events[len(events)-1]
	assert.Equal(t, "Unstaked", last.Name)
	require.Len(t, last.Values, 2)
	assert.Equal(t, 0, last.Values[1].Cmp(ether(200)))

	// cleared, so a second unstake has nothing to return
	_, err = s.pool.Unstake(user)
	assert.ErrorIs(t, err, reverts.ErrNoActiveStake)
}

func TestUnstakeMinimumPeriod(t *testing.T) {
	s := newSetup(t)
	amount := ether(1000)
	s.fund(t, user, amount)
	require.NoError(t, s.pool.Stake(user, amount))

	_, err := s.pool.Unstake(user)
	assert.ErrorIs(t, err, reverts.ErrMinimumPeriodNotReached)

	s.advance(minStakingPeriod - 1)
	_, err = s.pool.Unstake(user)
	assert.ErrorIs(t, err, reverts.ErrMinimumPeriodNotReached)

	// partial hours earn nothing
	s.advance(1)
	payout, err := s.pool.Unstake(user)
	require.NoError(t, err)
	assert.Zero(t, payout.Reward.Sign())
	assert.Equal(t, 0, s.balanceOf(t, user).Cmp(amount))
}

func TestUnstakeMaximumPeriod(t *testing.T) {
	s := newSetup(t)
	amount := ether(1000)
	s.fund(t, user, amount)
	require.NoError(t, s.pool.Stake(user, amount))

	s.advance(10 * 60 * 60)
	payout, err := s.pool.Unstake(user)
	require.NoError(t, err)
	// capped at 4 hours
	assert.Equal(t, 0, payout.Reward.Cmp(ether(400)))
}

func TestUnstakeRollbackOnReserveShortfall(t *testing.T) {
	s := newSetup(t)
	amount := ether(1000)
	s.fund(t, user, amount)
	require.NoError(t, s.pool.Stake(user, amount))

	// drain the reserve below the upcoming reward
	require.NoError(t, s.token.Transfer(rewarder, owner, new(big.Int).Sub(capacity, ether(100))))
	s.advance(2 * 60 * 60)

	events := len(s.env.Events())
	_, err := s.pool.Unstake(user)
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)

	// principal stays in the pool and the record survives
	assert.Zero(t, s.balanceOf(t, user).Sign())
	assert.Equal(t, 0, s.balanceOf(t, poolAddr).Cmp(amount))
	rec, err := s.pool.GetStake(user)
	require.NoError(t, err)
	require.NotNil(t, rec)
	total, err := s.pool.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(amount))
	assert.Len(t, s.env.Events(), events)

	// refilled reserve makes it succeed
	require.NoError(t, s.token.Transfer(owner, rewarder, ether(100)))
	_, err = s.pool.Unstake(user)
	require.NoError(t, err)
	assert.Equal(t, 0, s.balanceOf(t, user).Cmp(ether(1200)))
}

func TestUnstakeRollbackOnRevokedAllowance(t *testing.T) {
	s := newSetup(t)
	amount := ether(1000)
	s.fund(t, user, amount)
	require.NoError(t, s.pool.Stake(user, amount))
	require.NoError(t, s.token.Approve(rewarder, poolAddr, big.NewInt(0)))
	s.advance(2 * 60 * 60)

	_, err := s.pool.Unstake(user)
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllowance)
	assert.Equal(t, 0, s.balanceOf(t, poolAddr).Cmp(amount))
}

func TestPendingRewardWithoutStake(t *testing.T) {
	s := newSetup(t)
	reward, err := s.pool.PendingReward(user)
	require.NoError(t, err)
	assert.Zero(t, reward.Sign())
}

func TestStakeRejectsUnpayableReward(t *testing.T) {
	s := newSetup(t)

	greedyAddr := thor.BytesToAddress([]byte("greedy"))
	greedy := stakingpool.New(greedyAddr, s.env, s.token)
	require.NoError(t, greedy.Initialize(&stakingpool.Config{
		Token:            tokenAddr,
		Reserve:          rewarder,
		MinStakingPeriod: minStakingPeriod,
		MaxStakingPeriod: maxStakingPeriod,
		MaxStakeAmount:   maxStakeAmount,
		Capacity:         capacity,
		HourlyRewardRate: new(big.Int).Lsh(big.NewInt(1), 200),
	}))

	amount := ether(1000)
	require.NoError(t, s.token.Transfer(owner, user, amount))
	require.NoError(t, s.token.Approve(user, greedyAddr, amount))

	assert.ErrorIs(t, greedy.Stake(user, amount), reverts.ErrOverflow)

	rec, err := greedy.GetStake(user)
	require.NoError(t, err)
	assert.Nil(t, rec)
	total, err := greedy.TotalStaked()
	require.NoError(t, err)
	assert.Zero(t, total.Sign())
	assert.Equal(t, 0, s.balanceOf(t, user).Cmp(amount))

	// a deposit small enough for the rate still goes through
	require.NoError(t, greedy.Stake(user, big.NewInt(1)))
}
