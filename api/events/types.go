// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	gomath "github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/thor"
)

type LogMeta struct {
	Seq    uint64       `json:"seq"`
	Time   uint64       `json:"time"`
	Origin thor.Address `json:"origin"`
	Index  uint32       `json:"index"`
}

type FilteredEvent struct {
	Address thor.Address              `json:"address"`
	Name    string                    `json:"name"`
	Topics  []*thor.Bytes32           `json:"topics"`
	Values  []*gomath.HexOrDecimal256 `json:"values"`
	Meta    LogMeta                   `json:"meta"`
}

// ConvertEvent converts a stored event log to its json form.
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Name:    event.Name,
		Topics:  make([]*thor.Bytes32, 0, len(event.Topics)),
		Values:  make([]*gomath.HexOrDecimal256, len(event.Values)),
		Meta: LogMeta{
			Seq:    event.Seq,
			Time:   event.OpTime,
			Origin: event.Origin,
			Index:  event.Index,
		},
	}
	for _, topic := range event.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	for i, v := range event.Values {
		fe.Values[i] = utils.Amount(v)
	}
	return fe
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	Name    *string       `json:"name"`
	Topic0  *thor.Bytes32 `json:"topic0"`
	Topic1  *thor.Bytes32 `json:"topic1"`
	Topic2  *thor.Bytes32 `json:"topic2"`
}

type Range struct {
	Unit logdb.RangeType `json:"unit"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertRange(r *Range) (*logdb.Range, error) {
	if r == nil {
		return nil, nil
	}
	if r.Unit != logdb.Seq && r.Unit != logdb.Time {
		return nil, fmt.Errorf("unit: unsupported %q", r.Unit)
	}
	from, to := uint64(0), uint64(math.MaxInt64)
	if r.From != nil {
		from = *r.From
	}
	if r.To != nil {
		to = min(*r.To, math.MaxInt64)
	}
	if from > to {
		return nil, fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	return &logdb.Range{Unit: r.Unit, From: from, To: to}, nil
}

func convertEventFilter(filter *EventFilter) (*logdb.EventFilter, error) {
	rng, err := convertRange(filter.Range)
	if err != nil {
		return nil, err
	}
	f := &logdb.EventFilter{
		Range: rng,
		Order: filter.Order,
	}
	if filter.Options != nil {
		f.Options = &logdb.Options{Offset: filter.Options.Offset, Limit: filter.Options.Limit}
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Name:    c.Name,
			Topics:  [3]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2},
		})
	}
	return f, nil
}
