// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// ErrRevert is a rejection raised by a builtin contract. Effects of the
// rejected operation are always discarded.
type ErrRevert struct {
	message string
	cause   error
}

func New(message string) *ErrRevert {
	return &ErrRevert{message: message}
}

// WithCause returns a copy of the revert carrying the underlying cause.
func (e *ErrRevert) WithCause(cause error) *ErrRevert {
	return &ErrRevert{message: e.message, cause: cause}
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Reason returns the revert reason without the cause.
func (e *ErrRevert) Reason() string {
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Is reports whether target is a revert with the same reason.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	return t.message == e.message
}

// Bytes returns the reason abi-encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, selector...)

	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

// IsRevertErr reports whether err is or wraps a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}

var (
	ErrInvalidAmount           = New("StakingPool: Amount must be greater than zero")
	ErrAmountExceedsMaxStake   = New("StakingPool: Amount exceeds the maximum stake amount")
	ErrCapacityExceeded        = New("StakingPool: Amount exceeds pool capacity")
	ErrAlreadyStaked           = New("StakingPool: Stake already exists")
	ErrNoActiveStake           = New("StakingPool: No active stake")
	ErrMinimumPeriodNotReached = New("StakingPool: Minimum staking period not reached")
	ErrTransferFailed          = New("StakingPool: Transfer failed")

	ErrNotOwner       = New("Ownable: caller is not the owner")
	ErrInvalidAddress = New("Ownable: new owner is the zero address")
	ErrNotOperator    = New("StakingPoolFactory: Only the operator can call this function")

	ErrInsufficientBalance   = New("ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = New("ERC20: insufficient allowance")
	ErrTransferToZero        = New("ERC20: transfer to the zero address")
	ErrApproveToZero         = New("ERC20: approve to the zero address")

	ErrOverflow = New("arithmetic overflow")
)
