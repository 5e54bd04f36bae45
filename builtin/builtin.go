// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/stakepool/builtin/poolfactory"
	"github.com/vechain/stakepool/builtin/stakingpool"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

// Builtin contracts binding.
var (
	Token    = &tokenContract{newContract("StakeToken")}
	Registry = &registryContract{newContract("StakingPoolFactory")}
)

type (
	tokenContract    struct{ *contract }
	registryContract struct{ *contract }
)

func (t *tokenContract) Native(env *xenv.Environment) *token.Token {
	return token.New(t.Address, env)
}

func (r *registryContract) Native(env *xenv.Environment) *poolfactory.Registry {
	return poolfactory.New(r.Address, env, Token.Native(env))
}

// Pool binds the staking pool at addr, moving funds through the builtin token.
func Pool(addr thor.Address, env *xenv.Environment) *stakingpool.Pool {
	return stakingpool.New(addr, env, Token.Native(env))
}
