package asset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is a thread-safe index of known tokens. The orchestrator reads it
// concurrently; registration happens at startup.
type Registry struct {
	byID     map[TokenID]Token
	bySymbol map[string][]Token // same symbol may exist on several chains
	mu       sync.RWMutex
}

// NewRegistry creates an empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[TokenID]Token),
		bySymbol: make(map[string][]Token),
	}
}

// Register adds a token. Panics on duplicate identity; token tables are
// assembled once at startup and a duplicate is a programming error.
func (r *Registry) Register(t Token) {
	if t.IsZero() {
		panic("asset: cannot register zero token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", t.ID()))
	}
	r.byID[t.ID()] = t
	key := strings.ToUpper(t.Symbol())
	r.bySymbol[key] = append(r.bySymbol[key], t)
}

// Get retrieves a token by identity.
func (r *Registry) Get(id TokenID) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// BySymbol returns the token with the given symbol on the given chain.
func (r *Registry) BySymbol(chainID uint64, symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.bySymbol[strings.ToUpper(symbol)] {
		if t.ChainID() == chainID {
			return t, true
		}
	}
	return Token{}, false
}

// Resolve finds a token on a chain by symbol or 0x-address. Used by the CLI
// to turn user input into a Token.
func (r *Registry) Resolve(chainID uint64, ref string) (Token, bool) {
	if common.IsHexAddress(ref) {
		return r.Get(NewTokenID(chainID, common.HexToAddress(ref)))
	}
	return r.BySymbol(chainID, ref)
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
