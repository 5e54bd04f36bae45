// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/thor"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime uint64     `yaml:"launchTime"`
	ExtraData  string     `yaml:"extraData,omitempty"`
	Token      Token      `yaml:"token"`
	Accounts   []Account  `yaml:"accounts"`
	Approvals  []Approval `yaml:"approvals,omitempty"`
	Registry   Registry   `yaml:"registry"`
	Pools      []Pool     `yaml:"pools,omitempty"`
}

// Token describes the staked token.
type Token struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
}

// Account is the account will be credited at genesis
type Account struct {
	Address thor.Address `yaml:"address"`
	Balance *Amount      `yaml:"balance"`
}

// Approval is an allowance granted at genesis
type Approval struct {
	Owner   thor.Address `yaml:"owner"`
	Spender thor.Address `yaml:"spender"`
	Amount  *Amount      `yaml:"amount"`
}

// Registry is the pool registry setup, Reserve is minted into its custody.
type Registry struct {
	Owner    thor.Address  `yaml:"owner"`
	Operator *thor.Address `yaml:"operator,omitempty"`
	Reserve  *Amount       `yaml:"reserve,omitempty"`
}

// Pool is a pool created by the registry owner at genesis
type Pool struct {
	MinStakingPeriod uint64  `yaml:"minStakingPeriod"`
	MaxStakingPeriod uint64  `yaml:"maxStakingPeriod"`
	MaxStakeAmount   *Amount `yaml:"maxStakeAmount"`
	Capacity         *Amount `yaml:"capacity"`
	HourlyRewardRate *Amount `yaml:"hourlyRewardRate"`
}

// Amount marshals big.Int as hex or decimal, bounded to 256 bits.
type Amount math.HexOrDecimal256

// NewAmount creates an amount of value x.
func NewAmount(x *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(x))
}

// Int returns the amount as big.Int, nil is zero.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return (*big.Int)(a)
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	v, ok := math.ParseBig256(node.Value)
	if !ok {
		return fmt.Errorf("line %d: invalid hex or decimal integer %q", node.Line, node.Value)
	}
	*a = Amount(*v)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a Amount) MarshalYAML() (any, error) {
	return (*big.Int)(&a).String(), nil
}

// ParseCustomGenesis decodes a yaml genesis document.
func ParseCustomGenesis(data []byte) (*CustomGenesis, error) {
	var gen CustomGenesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, err
	}
	return &gen, nil
}
