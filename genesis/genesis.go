// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"context"

	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

// Genesis to build the initial ledger state.
type Genesis struct {
	builder *Builder
	id      thor.Bytes32
	name    string
}

// ID returns genesis id.
func (g *Genesis) ID() thor.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// LaunchTime returns the time genesis operations are executed at.
func (g *Genesis) LaunchTime() uint64 {
	return g.builder.timestamp
}

// Apply builds the genesis state on rt unless it is already there.
// It reports whether the state was built.
func (g *Genesis) Apply(ctx context.Context, rt *runtime.Runtime) (bool, error) {
	return rt.Bootstrap(ctx, g.id, g.builder.timestamp, g.builder.setup)
}
