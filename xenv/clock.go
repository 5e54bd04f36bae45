// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"sync/atomic"
	"time"
)

// Clock provides the current time in unix seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock only moves when told to.
type ManualClock struct {
	now atomic.Uint64
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

func (c *ManualClock) Now() uint64 {
	return c.now.Load()
}

// Set sets the current time.
func (c *ManualClock) Set(t uint64) {
	c.now.Store(t)
}

// Advance moves the clock forward by the given seconds and returns the new time.
func (c *ManualClock) Advance(seconds uint64) uint64 {
	return c.now.Add(seconds)
}
