package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidFormat      Code = "INVALID_FORMAT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidationError    Code = "VALIDATION_ERROR"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap aggregation error codes
const (
	// Request validation
	CodeZeroInputAmount    Code = "ZERO_INPUT_AMOUNT"
	CodeMissingPayer       Code = "MISSING_PAYER"
	CodeInvalidSlippage    Code = "INVALID_SLIPPAGE"
	CodeChainNotSupported  Code = "CHAIN_NOT_SUPPORTED"
	CodeUnknownAggregator  Code = "UNKNOWN_AGGREGATOR"

	// Vendor quote failures
	CodeQuoteFailed       Code = "QUOTE_FAILED"
	CodeZeroAmountQuote   Code = "ZERO_AMOUNT_QUOTE"
	CodeMalformedQuote    Code = "MALFORMED_QUOTE"
	CodeIncompleteTx      Code = "INCOMPLETE_TRANSACTION"
	CodeStatusUnsupported Code = "STATUS_UNSUPPORTED"
	CodeStatusFailed      Code = "STATUS_FAILED"

	// Orchestration
	CodeNoRouteFound Code = "NO_ROUTE_FOUND"

	// Pricing feed
	CodePriceUnavailable Code = "PRICE_UNAVAILABLE"

	// Circuit breaker
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
