// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/poolfactory"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

const launchTime = 1_700_000_000

var (
	genesisID = thor.BytesToBytes32([]byte("test genesis"))
	owner     = thor.BytesToAddress([]byte("owner"))
	user      = thor.BytesToAddress([]byte("user"))
)

type testRuntime struct {
	*runtime.Runtime
	clock *xenv.ManualClock
	logDB *logdb.LogDB
	db    *lvldb.LevelDB
}

func newTestRuntime(t *testing.T) *testRuntime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(logDB.Close)

	clock := xenv.NewManualClock(launchTime)
	rt := runtime.New(state.NewStater(db, 64), logDB, clock)

	applied, err := rt.Bootstrap(context.Background(), genesisID, launchTime, setup)
	require.NoError(t, err)
	require.True(t, applied)

	return &testRuntime{rt, clock, logDB, db}
}

func setup(c *runtime.Contracts) error {
	if err := c.Token.Mint(owner, big.NewInt(1_000_000)); err != nil {
		return err
	}
	if err := c.Token.Mint(user, big.NewInt(10_000)); err != nil {
		return err
	}
	if err := c.Token.Mint(builtin.Registry.Address, big.NewInt(50_000)); err != nil {
		return err
	}
	return c.Registry.Initialize(owner, owner, builtin.Token.Address)
}

func (rt *testRuntime) createPool(t *testing.T) thor.Address {
	var addr thor.Address
	_, err := rt.Execute(context.Background(), owner, func(c *runtime.Contracts) (err error) {
		addr, err = c.Registry.CreatePool(owner, &poolfactory.PoolParams{
			MinStakingPeriod: 60,
			MaxStakingPeriod: 4 * 3600,
			MaxStakeAmount:   big.NewInt(5_000),
			Capacity:         big.NewInt(100_000),
			HourlyRewardRate: big.NewInt(10),
		})
		return
	})
	require.NoError(t, err)
	return addr
}

func (rt *testRuntime) balanceOf(t *testing.T, addr thor.Address) *big.Int {
	var bal *big.Int
	require.NoError(t, rt.View(func(c *runtime.Contracts) (err error) {
		bal, err = c.Token.BalanceOf(addr)
		return
	}))
	return bal
}

func TestBootstrap(t *testing.T) {
	rt := newTestRuntime(t)

	id, err := rt.GenesisID()
	require.NoError(t, err)
	assert.Equal(t, genesisID, id)

	seq, err := rt.Seq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	// same genesis is a no-op
	applied, err := rt.Bootstrap(context.Background(), genesisID, launchTime, setup)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, big.NewInt(1_000_000), rt.balanceOf(t, owner))

	_, err = rt.Bootstrap(context.Background(), thor.BytesToBytes32([]byte("other")), launchTime, setup)
	assert.ErrorIs(t, err, runtime.ErrGenesisMismatch)
}

func TestExecuteCommits(t *testing.T) {
	rt := newTestRuntime(t)
	pool := rt.createPool(t)

	receipt, err := rt.Execute(context.Background(), user, func(c *runtime.Contracts) error {
		if err := c.Token.Approve(user, pool, big.NewInt(1000)); err != nil {
			return err
		}
		return c.Pool(pool).Stake(user, big.NewInt(1000))
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), receipt.Seq)
	assert.Equal(t, uint64(launchTime), receipt.Time)
	assert.Equal(t, user, receipt.Origin)

	names := make([]string, 0, len(receipt.Events))
	for _, ev := range receipt.Events {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"Approval", "Transfer", "Staked"}, names)

	assert.Equal(t, big.NewInt(9_000), rt.balanceOf(t, user))

	// reopening the store observes the committed operation
	reopened := runtime.New(state.NewStater(rt.db, 0), nil, rt.clock)
	seq, err := reopened.Seq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)

	staked := name("Staked")
	events, err := rt.logDB.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &pool, Name: staked}},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(3), events[0].Seq)
	assert.Equal(t, user, events[0].Origin)
}

func TestExecuteRevertLeavesNoTrace(t *testing.T) {
	rt := newTestRuntime(t)
	pool := rt.createPool(t)

	before, err := rt.Seq()
	require.NoError(t, err)

	_, err = rt.Execute(context.Background(), user, func(c *runtime.Contracts) error {
		if err := c.Token.Approve(user, pool, big.NewInt(1000)); err != nil {
			return err
		}
		// exceeds the per-deposit ceiling
		return c.Pool(pool).Stake(user, big.NewInt(6_000))
	})
	assert.ErrorIs(t, err, reverts.ErrAmountExceedsMaxStake)

	after, err := rt.Seq()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, rt.View(func(c *runtime.Contracts) error {
		allowance, err := c.Token.Allowance(user, pool)
		require.NoError(t, err)
		assert.Equal(t, 0, allowance.Sign())
		return nil
	}))

	maxSeq, err := rt.logDB.MaxSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, maxSeq)
}

func TestUnstakeAfterClockAdvance(t *testing.T) {
	rt := newTestRuntime(t)
	pool := rt.createPool(t)

	_, err := rt.Execute(context.Background(), user, func(c *runtime.Contracts) error {
		if err := c.Token.Approve(user, pool, big.NewInt(1000)); err != nil {
			return err
		}
		return c.Pool(pool).Stake(user, big.NewInt(1000))
	})
	require.NoError(t, err)

	rt.clock.Advance(2 * 3600)

	var payout *big.Int
	receipt, err := rt.Execute(context.Background(), user, func(c *runtime.Contracts) error {
		p, err := c.Pool(pool).Unstake(user)
		if err != nil {
			return err
		}
		payout = p.Total()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(launchTime+2*3600), receipt.Time)
	assert.Equal(t, big.NewInt(1200), payout)
	assert.Equal(t, big.NewInt(10_200), rt.balanceOf(t, user))
	assert.Equal(t, big.NewInt(49_800), rt.balanceOf(t, builtin.Registry.Address))
}

func TestTickerClosesOnCommit(t *testing.T) {
	rt := newTestRuntime(t)

	ticker := rt.NewTicker()
	select {
	case <-ticker:
		t.Fatal("ticker closed before commit")
	default:
	}

	// reverted operations do not tick
	_, err := rt.Execute(context.Background(), user, func(c *runtime.Contracts) error {
		return c.Token.Transfer(user, owner, big.NewInt(1_000_000))
	})
	require.Error(t, err)
	select {
	case <-ticker:
		t.Fatal("ticker closed by a reverted operation")
	default:
	}

	_, err = rt.Execute(context.Background(), user, func(c *runtime.Contracts) error {
		return c.Token.Transfer(user, owner, big.NewInt(1))
	})
	require.NoError(t, err)
	select {
	case <-ticker:
	case <-time.After(time.Second):
		t.Fatal("ticker not closed after commit")
	}
	assert.NotEqual(t, ticker, rt.NewTicker())
}

func TestViewDiscardsChanges(t *testing.T) {
	rt := newTestRuntime(t)

	require.NoError(t, rt.View(func(c *runtime.Contracts) error {
		return c.Token.Transfer(user, owner, big.NewInt(10_000))
	}))
	assert.Equal(t, big.NewInt(10_000), rt.balanceOf(t, user))
}

func TestExecuteCancelled(t *testing.T) {
	rt := newTestRuntime(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := rt.Execute(ctx, user, func(*runtime.Contracts) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestConcurrentExecute(t *testing.T) {
	rt := newTestRuntime(t)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs = make(map[uint64]bool)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := rt.Execute(context.Background(), owner, func(c *runtime.Contracts) error {
				return c.Token.Transfer(owner, user, big.NewInt(1))
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seqs[receipt.Seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seqs, n)
	assert.Equal(t, big.NewInt(10_000+n), rt.balanceOf(t, user))
}

func name(s string) *string { return &s }
