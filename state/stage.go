// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Stage abstracts changes on the slots of a state.
type Stage struct {
	stater  *Stater
	changes map[storageKey]rlp.RawValue
	order   []storageKey
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes all changes into the underlying store in one batch.
func (s *Stage) Commit() error {
	if len(s.order) == 0 {
		return nil
	}

	bulk := s.stater.store.Bulk()
	for _, key := range s.order {
		val := s.changes[key]
		var err error
		if len(val) == 0 {
			err = bulk.Delete(key.bytes())
		} else {
			err = bulk.Put(key.bytes(), val)
		}
		if err != nil {
			return errors.Wrap(err, "stage slot")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit stage")
	}

	if c := s.stater.cache; c != nil {
		for _, key := range s.order {
			c.Add(key, s.changes[key])
		}
	}
	metricSlotWrites().AddWithLabel(int64(len(s.order)), map[string]string{"type": "commit"})
	return nil
}
