// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

// Amount returns v as a json hex or decimal integer.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

// RequireAmount validates an amount supplied in a request body.
func RequireAmount(name string, v *math.HexOrDecimal256) (*big.Int, error) {
	if v == nil {
		return nil, BadRequest(errors.New(name + ": required"))
	}
	return (*big.Int)(v), nil
}

// RequireCaller validates the caller supplied in a request body.
func RequireCaller(caller *thor.Address) (thor.Address, error) {
	if caller == nil || caller.IsZero() {
		return thor.Address{}, BadRequest(errors.New("caller: required"))
	}
	return *caller, nil
}

// Event is an event emitted by a committed operation.
type Event struct {
	Address thor.Address            `json:"address"`
	Name    string                  `json:"name"`
	Topics  []thor.Bytes32          `json:"topics"`
	Values  []*math.HexOrDecimal256 `json:"values"`
}

// Receipt is the response of a committed operation.
type Receipt struct {
	Seq    uint64       `json:"seq"`
	Time   uint64       `json:"time"`
	Origin thor.Address `json:"origin"`
	Events []*Event     `json:"events"`
}

func convertEvent(ev *xenv.Event) *Event {
	values := make([]*math.HexOrDecimal256, len(ev.Values))
	for i, v := range ev.Values {
		values[i] = Amount(v)
	}
	topics := ev.Topics
	if topics == nil {
		topics = []thor.Bytes32{}
	}
	return &Event{
		Address: ev.Address,
		Name:    ev.Name,
		Topics:  topics,
		Values:  values,
	}
}

// ConvertReceipt converts a runtime receipt to its json form.
func ConvertReceipt(r *runtime.Receipt) *Receipt {
	events := make([]*Event, len(r.Events))
	for i, ev := range r.Events {
		events[i] = convertEvent(ev)
	}
	return &Receipt{
		Seq:    r.Seq,
		Time:   r.Time,
		Origin: r.Origin,
		Events: events,
	}
}
