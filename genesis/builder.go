// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/xenv"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64
	procs     []func(c *runtime.Contracts) error
	extraData []byte
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// Setup add a setup process, processes run in the order they are added.
func (b *Builder) Setup(proc func(c *runtime.Contracts) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

// ExtraData set extra data mixed into the genesis id.
func (b *Builder) ExtraData(data []byte) *Builder {
	b.extraData = append([]byte(nil), data...)
	return b
}

func (b *Builder) setup(c *runtime.Contracts) error {
	for _, proc := range b.procs {
		if err := proc(c); err != nil {
			return err
		}
	}
	return nil
}

// ComputeID compute genesis ID by running the setup on a scratch store.
// The id commits to the launch time, the extra data and every event the setup emits.
func (b *Builder) ComputeID() (thor.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return thor.Bytes32{}, err
	}
	defer db.Close()

	rt := runtime.New(state.NewStater(db, 0), nil, xenv.NewManualClock(b.timestamp))

	var events []*xenv.Event
	if _, err := rt.Bootstrap(context.Background(), thor.Bytes32{0xff}, b.timestamp, func(c *runtime.Contracts) error {
		if err := b.setup(c); err != nil {
			return err
		}
		events = c.Env.Events()
		return nil
	}); err != nil {
		return thor.Bytes32{}, err
	}

	return thor.Blake2bFn(func(w io.Writer) {
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], b.timestamp)
		w.Write(ts[:])
		w.Write(b.extraData)
		for _, ev := range events {
			w.Write(ev.Address[:])
			w.Write([]byte(ev.Name))
			for _, topic := range ev.Topics {
				w.Write(topic[:])
			}
			for _, v := range ev.Values {
				w.Write(v.Bytes())
			}
		}
	}), nil
}

// Build validates the presets and returns the genesis.
func (b *Builder) Build(name string) (*Genesis, error) {
	id, err := b.ComputeID()
	if err != nil {
		return nil, errors.WithMessage(err, "compute genesis id")
	}
	return &Genesis{
		builder: b,
		id:      id,
		name:    name,
	}, nil
}
