// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/poolfactory"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/stakingpool"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

var logger = log.WithContext("pkg", "runtime")

var (
	metaAddress = thor.BytesToAddress([]byte("Runtime"))
	seqKey      = thor.BytesToBytes32([]byte("seq"))
	genesisKey  = thor.BytesToBytes32([]byte("genesis"))
)

// ErrGenesisMismatch is returned when the store was bootstrapped with another genesis.
var ErrGenesisMismatch = errors.New("genesis mismatch")

// Contracts are the builtin contracts bound to the environment of one operation.
type Contracts struct {
	Env      *xenv.Environment
	Token    *token.Token
	Registry *poolfactory.Registry
}

// Pool binds the staking pool at addr.
func (c *Contracts) Pool(addr thor.Address) *stakingpool.Pool {
	return builtin.Pool(addr, c.Env)
}

// Receipt describes a committed operation.
type Receipt struct {
	Seq    uint64
	Time   uint64
	Origin thor.Address
	Events []*xenv.Event
}

// Runtime executes operations against the committed state.
// Mutating operations are serialized, each one either commits entirely or leaves no trace.
type Runtime struct {
	mu     sync.RWMutex
	stater *state.Stater
	logDB  *logdb.LogDB
	clock  xenv.Clock

	tickMu sync.Mutex
	tick   chan struct{}
}

// New create a Runtime object. logDB is optional.
func New(stater *state.Stater, logDB *logdb.LogDB, clock xenv.Clock) *Runtime {
	if clock == nil {
		clock = xenv.SystemClock{}
	}
	return &Runtime{
		stater: stater,
		logDB:  logDB,
		clock:  clock,
		tick:   make(chan struct{}),
	}
}

// NewTicker returns a channel which is closed once the next operation commits.
// Take the channel before reading, so that no commit is missed.
func (rt *Runtime) NewTicker() <-chan struct{} {
	rt.tickMu.Lock()
	defer rt.tickMu.Unlock()
	return rt.tick
}

func (rt *Runtime) broadcast() {
	rt.tickMu.Lock()
	defer rt.tickMu.Unlock()
	close(rt.tick)
	rt.tick = make(chan struct{})
}

func (rt *Runtime) Clock() xenv.Clock   { return rt.clock }
func (rt *Runtime) LogDB() *logdb.LogDB { return rt.logDB }

func bind(env *xenv.Environment) *Contracts {
	return &Contracts{
		Env:      env,
		Token:    builtin.Token.Native(env),
		Registry: builtin.Registry.Native(env),
	}
}

// Seq returns the sequence number of the last committed operation.
func (rt *Runtime) Seq() (uint64, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	return loadSeq(rt.stater.NewState())
}

// GenesisID returns the id of the genesis the store was bootstrapped with.
func (rt *Runtime) GenesisID() (thor.Bytes32, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	return rt.stater.NewState().GetStorage(metaAddress, genesisKey)
}

func loadSeq(st *state.State) (uint64, error) {
	v, err := st.GetStorage(metaAddress, seqKey)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(v[:]).Uint64(), nil
}

// View runs fn against the committed state. Changes made by fn are discarded.
func (rt *Runtime) View(fn func(c *Contracts) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	st := rt.stater.NewState()
	seq, err := loadSeq(st)
	if err != nil {
		return err
	}
	env := xenv.New(st, &xenv.BlockContext{Number: seq, Time: rt.clock.Now()}, nil)
	return fn(bind(env))
}

// Execute runs fn on behalf of origin and commits its effects if it succeeds.
func (rt *Runtime) Execute(ctx context.Context, origin thor.Address, fn func(c *Contracts) error) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.execute(ctx, rt.clock.Now(), origin, fn)
}

// Bootstrap applies the genesis setup once. It reports whether setup was run,
// and fails with ErrGenesisMismatch if the store belongs to another genesis.
func (rt *Runtime) Bootstrap(ctx context.Context, id thor.Bytes32, launchTime uint64, setup func(c *Contracts) error) (bool, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	stored, err := rt.stater.NewState().GetStorage(metaAddress, genesisKey)
	if err != nil {
		return false, err
	}
	if !stored.IsZero() {
		if stored != id {
			return false, errors.Wrapf(ErrGenesisMismatch, "want %v, got %v", id, stored)
		}
		return false, nil
	}

	_, err = rt.execute(ctx, launchTime, thor.Address{}, func(c *Contracts) error {
		if err := setup(c); err != nil {
			return err
		}
		c.Env.State().SetStorage(metaAddress, genesisKey, id)
		return nil
	})
	if err != nil {
		return false, errors.WithMessage(err, "build genesis")
	}
	return true, nil
}

func (rt *Runtime) execute(ctx context.Context, now uint64, origin thor.Address, fn func(c *Contracts) error) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	st := rt.stater.NewState()
	last, err := loadSeq(st)
	if err != nil {
		return nil, err
	}
	seq := last + 1

	blockCtx := &xenv.BlockContext{Number: seq, Time: now}
	env := xenv.New(st, blockCtx, &xenv.TransactionContext{Origin: origin})

	if err := fn(bind(env)); err != nil {
		if reverts.IsRevertErr(err) {
			observeExecution("revert", startTime)
			logger.Debug("operation reverted", "seq", seq, "origin", origin, "reason", err)
		} else {
			observeExecution("error", startTime)
		}
		return nil, err
	}

	var seqValue thor.Bytes32
	new(big.Int).SetUint64(seq).FillBytes(seqValue[:])
	st.SetStorage(metaAddress, seqKey, seqValue)

	if err := st.Stage().Commit(); err != nil {
		observeExecution("error", startTime)
		return nil, errors.Wrap(err, "commit state")
	}

	events := env.Events()
	if rt.logDB != nil && len(events) > 0 {
		// state is the source of truth, a lost event log does not undo the operation
		if err := rt.logDB.Prepare(blockCtx, origin).Insert(events).Commit(); err != nil {
			logger.Error("failed to write events", "seq", seq, "err", err)
		}
	}
	observeExecution("ok", startTime)
	observeEvents(events)
	rt.broadcast()

	logger.Debug("operation committed", "seq", seq, "origin", origin, "events", len(events))
	return &Receipt{
		Seq:    seq,
		Time:   now,
		Origin: origin,
		Events: events,
	}, nil
}
