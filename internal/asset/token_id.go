// Package asset provides a chain-aware model for the tokens a swap touches.
// On-chain quantities stay in big.Int wei; decimal.Decimal appears only at
// boundaries (parsing, display, rate math).
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TokenID uniquely identifies a token by chain and contract address.
// The zero address denotes the chain's native coin. Symbols are metadata,
// never identity.
type TokenID struct {
	chainID uint64
	address common.Address
}

// NewNativeTokenID creates a TokenID for a chain's native coin.
func NewNativeTokenID(chainID uint64) TokenID {
	if chainID == 0 {
		panic("asset: chain id must be positive")
	}
	return TokenID{chainID: chainID}
}

// NewTokenID creates a TokenID for an ERC-20 token.
func NewTokenID(chainID uint64, addr common.Address) TokenID {
	if chainID == 0 {
		panic("asset: chain id must be positive")
	}
	if addr == (common.Address{}) {
		panic("asset: zero token address, use NewNativeTokenID for native coins")
	}
	return TokenID{chainID: chainID, address: addr}
}

// ChainID returns the chain this token lives on.
func (id TokenID) ChainID() uint64 {
	return id.chainID
}

// Address returns the contract address (zero for native coins).
func (id TokenID) Address() common.Address {
	return id.address
}

// IsNative reports whether this is the chain's native coin.
func (id TokenID) IsNative() bool {
	return id.chainID != 0 && id.address == (common.Address{})
}

// IsZero reports whether the id is the uninitialized zero value.
func (id TokenID) IsZero() bool {
	return id.chainID == 0
}

// Equals compares two TokenIDs.
func (id TokenID) Equals(other TokenID) bool {
	return id.chainID == other.chainID && id.address == other.address
}

// String returns a stable textual form, e.g. "56:0xbb4C..." or "1:native".
func (id TokenID) String() string {
	if id.IsNative() {
		return fmt.Sprintf("%d:native", id.chainID)
	}
	return fmt.Sprintf("%d:%s", id.chainID, id.address.Hex())
}
