package types

import (
	"fmt"

	evmcommon "github.com/ChenxingLi/evm-io-tracker/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StorageKey identifies one storage cell: a slot of a contract's storage.
type StorageKey struct {
	Address common.Address
	Slot    uint256.Int
}

func NewStorageKey(address common.Address, slot *uint256.Int) StorageKey {
	return StorageKey{Address: address, Slot: *slot}
}

// Digest is keccak256(address || slot as 32-byte big endian). It is the only
// identifier the produced workload and initial state carry.
func (k StorageKey) Digest() common.Hash {
	slot := k.Slot.Bytes32()
	return evmcommon.Keccak256(k.Address[:], slot[:])
}

func (k StorageKey) String() string {
	return fmt.Sprintf("%s[%s]", k.Address.Hex(), k.Slot.Hex())
}
