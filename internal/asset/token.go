package asset

import "github.com/ethereum/go-ethereum/common"

// Token is the metadata of a swappable asset: identity plus display
// attributes. Tokens are immutable once constructed.
type Token struct {
	id       TokenID
	symbol   string
	name     string
	decimals uint8
}

// NewToken creates a Token with the given identity and metadata.
func NewToken(id TokenID, symbol, name string, decimals uint8) Token {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	return Token{id: id, symbol: symbol, name: name, decimals: decimals}
}

// NewERC20 creates an ERC-20 token on the given chain.
func NewERC20(chainID uint64, addr common.Address, symbol, name string, decimals uint8) Token {
	return NewToken(NewTokenID(chainID, addr), symbol, name, decimals)
}

// NewNative creates a chain's native coin.
func NewNative(chainID uint64, symbol, name string, decimals uint8) Token {
	return NewToken(NewNativeTokenID(chainID), symbol, name, decimals)
}

// ID returns the token's identity.
func (t Token) ID() TokenID {
	return t.id
}

// ChainID returns the chain the token lives on.
func (t Token) ChainID() uint64 {
	return t.id.ChainID()
}

// Address returns the contract address (zero for native coins).
func (t Token) Address() common.Address {
	return t.id.Address()
}

// Symbol returns the ticker symbol (e.g. "USDC").
func (t Token) Symbol() string {
	return t.symbol
}

// Name returns the human-readable name, falling back to the symbol.
func (t Token) Name() string {
	if t.name == "" {
		return t.symbol
	}
	return t.name
}

// Decimals returns the number of decimal places.
func (t Token) Decimals() uint8 {
	return t.decimals
}

// IsNative reports whether this is the chain's native coin.
func (t Token) IsNative() bool {
	return t.id.IsNative()
}

// IsZero reports whether the token is the uninitialized zero value.
func (t Token) IsZero() bool {
	return t.id.IsZero()
}

// Equals compares tokens by identity.
func (t Token) Equals(other Token) bool {
	return t.id.Equals(other.id)
}

func (t Token) String() string {
	return t.symbol
}
