// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/logdb"
)

// number of operations scanned per read
const readBatch = 100

type eventReader struct {
	db       *logdb.LogDB
	criteria *logdb.EventCriteria
	pos      uint64
}

func newEventReader(db *logdb.LogDB, pos uint64, criteria *logdb.EventCriteria) *eventReader {
	return &eventReader{
		db:       db,
		criteria: criteria,
		pos:      pos,
	}
}

// Read returns the matching events of the operations after pos.
// The second return value reports whether more operations are pending.
func (er *eventReader) Read(ctx context.Context) ([]any, bool, error) {
	maxSeq, err := er.db.MaxSeq(ctx)
	if err != nil {
		return nil, false, err
	}
	if maxSeq <= er.pos {
		return nil, false, nil
	}
	to := min(er.pos+readBatch, maxSeq)

	evs, err := er.db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{er.criteria},
		Range:       &logdb.Range{Unit: logdb.Seq, From: er.pos + 1, To: to},
		Order:       logdb.ASC,
	})
	if err != nil {
		return nil, false, err
	}

	msgs := make([]any, 0, len(evs))
	for _, ev := range evs {
		msgs = append(msgs, events.ConvertEvent(ev))
	}
	er.pos = to
	return msgs, to < maxSeq, nil
}
