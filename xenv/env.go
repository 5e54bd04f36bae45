// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// BlockContext describes the point in time an operation executes at.
type BlockContext struct {
	Number uint64 // sequence number of the operation
	Time   uint64 // unix seconds
}

// TransactionContext describes who triggered the operation.
type TransactionContext struct {
	Origin thor.Address
}

// Event is a log entry emitted by a builtin contract.
type Event struct {
	Address thor.Address
	Name    string
	Topics  []thor.Bytes32
	Values  []*big.Int
}

// Checkpoint marks a revertable point of an environment.
type Checkpoint struct {
	revision int
	events   int
}

// Environment is the execution environment of a single operation.
// It's shared by all builtin contracts touched by the operation.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	events   []*Event
}

// New create a new environment.
func New(state *state.State, blockCtx *BlockContext, txCtx *TransactionContext) *Environment {
	if blockCtx == nil {
		blockCtx = &BlockContext{}
	}
	if txCtx == nil {
		txCtx = &TransactionContext{}
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) Now() uint64                             { return env.blockCtx.Time }

// Log appends an event. Address-like topics are left padded to 32 bytes.
func (env *Environment) Log(address thor.Address, name string, topics []thor.Bytes32, values ...*big.Int) {
	cpy := make([]*big.Int, 0, len(values))
	for _, v := range values {
		cpy = append(cpy, new(big.Int).Set(v))
	}
	env.events = append(env.events, &Event{
		Address: address,
		Name:    name,
		Topics:  topics,
		Values:  cpy,
	})
}

// Events returns events emitted so far.
func (env *Environment) Events() []*Event {
	return env.events
}

// NewCheckpoint makes a checkpoint covering both state and events.
func (env *Environment) NewCheckpoint() Checkpoint {
	return Checkpoint{
		revision: env.state.NewCheckpoint(),
		events:   len(env.events),
	}
}

// RevertTo discards every state change and event made after the checkpoint.
func (env *Environment) RevertTo(cp Checkpoint) {
	env.state.RevertTo(cp.revision)
	env.events = env.events[:cp.events]
}

// Atomic runs fn and reverts its effects if it fails.
func (env *Environment) Atomic(fn func() error) error {
	cp := env.NewCheckpoint()
	if err := fn(); err != nil {
		env.RevertTo(cp)
		return err
	}
	return nil
}

// AddressTopic converts address into event topic.
func AddressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}
