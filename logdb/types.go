// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

const maxTopics = 3

// Event represents xenv.Event that can be stored in db.
type Event struct {
	Seq     uint64 // operation sequence number
	Index   uint32
	OpTime  uint64
	Origin  thor.Address // operation caller
	Address thor.Address // always a builtin contract address
	Name    string
	Topics  [maxTopics]*thor.Bytes32
	Values  []*big.Int
}

// newEvent converts xenv.Event to Event.
func newEvent(blockCtx *xenv.BlockContext, index uint32, origin thor.Address, ev *xenv.Event) *Event {
	e := &Event{
		Seq:     blockCtx.Number,
		Index:   index,
		OpTime:  blockCtx.Time,
		Origin:  origin,
		Address: ev.Address,
		Name:    ev.Name,
		Values:  ev.Values,
	}
	for i := 0; i < len(ev.Topics) && i < len(e.Topics); i++ {
		e.Topics[i] = &ev.Topics[i]
	}
	return e
}

func encodeValues(values []*big.Int) ([]byte, error) {
	if values == nil {
		values = []*big.Int{}
	}
	return rlp.EncodeToBytes(values)
}

func decodeValues(data []byte) ([]*big.Int, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var values []*big.Int
	if err := rlp.DecodeBytes(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address // always a builtin contract address
	Name    *string
	Topics  [maxTopics]*thor.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
