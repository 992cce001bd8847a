package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/metaswap/swapr/internal/apperror"
)

// TransactionRequest is the signable payload a vendor hands back. The
// approval address is the ERC-20 allowance target and may differ from To.
type TransactionRequest struct {
	From            common.Address
	To              common.Address
	Data            hexutil.Bytes
	Value           *big.Int
	ChainID         uint64
	ApprovalAddress common.Address
}

// TransactionRequestWithEstimate is the canonical record the orchestrator
// ranks and returns: the signable payload plus the originating params, the
// ordered route steps, the aggregate estimate, and the source adapter tag.
// It is built once per adapter call and never mutated after the orchestrator
// finalizes it.
type TransactionRequestWithEstimate struct {
	TransactionRequest
	Params       SwapParams
	Steps        []SwapStep
	Estimate     Estimate
	AggregatorID string
}

// EnsureComplete rejects half-built records: To, Data and ApprovalAddress
// must all be present before an adapter may return the record.
func (r *TransactionRequestWithEstimate) EnsureComplete() error {
	var missing string
	switch {
	case r.To == (common.Address{}):
		missing = "to address"
	case len(r.Data) == 0:
		missing = "calldata"
	case r.ApprovalAddress == (common.Address{}):
		missing = "approval address"
	default:
		return nil
	}
	return apperror.New(apperror.CodeIncompleteTx,
		apperror.WithVendor(r.AggregatorID),
		apperror.WithContext("transaction request missing "+missing),
	)
}

// TagAggregator sets the source adapter id unless one is already set.
func (r *TransactionRequestWithEstimate) TagAggregator(id string) {
	if r.AggregatorID == "" {
		r.AggregatorID = id
	}
}
