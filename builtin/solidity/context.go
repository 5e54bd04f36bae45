// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

// Context binds a builtin contract address to the environment of the running operation.
type Context struct {
	address thor.Address
	env     *xenv.Environment
}

func NewContext(address thor.Address, env *xenv.Environment) *Context {
	return &Context{
		address: address,
		env:     env,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.env.State()
}

func (c *Context) Env() *xenv.Environment {
	return c.env
}

// Now returns the time of the running operation.
func (c *Context) Now() uint64 {
	return c.env.Now()
}

// Emit logs an event on behalf of the contract. Addresses become topics.
func (c *Context) Emit(name string, topics []thor.Address, values ...*big.Int) {
	ts := make([]thor.Bytes32, 0, len(topics))
	for _, t := range topics {
		ts = append(ts, xenv.AddressTopic(t))
	}
	c.env.Log(c.address, name, ts, values...)
}

// Atomic runs fn, all of its state changes and events are discarded if it fails.
func (c *Context) Atomic(fn func() error) error {
	return c.env.Atomic(fn)
}
