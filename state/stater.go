// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/thor"
)

const storageBucket = kv.Bucket("s")

// Stater is the state creator.
type Stater struct {
	store kv.Store
	cache *cache.LRU
}

// NewStater create a new stater instance.
// cacheSize is the number of committed slots kept in memory, non-positive disables the cache.
func NewStater(store kv.Store, cacheSize int) *Stater {
	var c *cache.LRU
	if cacheSize > 0 {
		c, _ = cache.NewLRU(cacheSize)
	}
	return &Stater{
		store: storageBucket.NewStore(store),
		cache: c,
	}
}

// NewState create a new state object on top of committed storage.
func (s *Stater) NewState() *State {
	return newState(s)
}

func (s *Stater) loadStorage(key storageKey) (rlp.RawValue, error) {
	load := func(any) (any, error) {
		data, err := s.store.Get(key.bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(data), nil
	}

	if s.cache == nil {
		v, err := load(key)
		if err != nil {
			return nil, err
		}
		return v.(rlp.RawValue), nil
	}
	v, err := s.cache.GetOrLoad(key, load)
	if err != nil {
		return nil, err
	}
	return v.(rlp.RawValue), nil
}

// CacheStats returns hit and miss counts of the slot cache.
func (s *Stater) CacheStats() (hit, miss int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, thor.AddressLength+32)
	return append(append(b, k.addr[:]...), k.key[:]...)
}
