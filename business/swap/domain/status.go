package domain

// TxStatus is the normalized lifecycle state a vendor reports for a
// submitted transaction.
type TxStatus string

const (
	StatusPending  TxStatus = "PENDING"
	StatusDone     TxStatus = "DONE"
	StatusFailed   TxStatus = "FAILED"
	StatusNotFound TxStatus = "NOT_FOUND"
)

// StatusRef identifies a submitted transaction to the vendor that built it.
type StatusRef struct {
	AggregatorID string
	TxHash       string
	FromChainID  uint64
	ToChainID    uint64
	Bridge       string
}

// StatusResponse is the normalized answer to a status lookup.
type StatusResponse struct {
	AggregatorID      string
	Status            TxStatus
	SourceTxHash      string
	DestinationTxHash string
	Message           string
}

// Terminal reports whether the status will no longer change.
func (s StatusResponse) Terminal() bool {
	return s.Status == StatusDone || s.Status == StatusFailed
}

// VendorQuote is the normalized result of a single vendor quote call, before
// the vendor has built calldata for it.
type VendorQuote struct {
	AggregatorID string
	RouteID      string
	Steps        []SwapStep
	Estimate     Estimate
}
