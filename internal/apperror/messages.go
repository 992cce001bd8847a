package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:      "Required field is missing",
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidFormat:      "Invalid data format",
	CodeNotFound:           "Resource not found",
	CodeValidationError:    "Validation error",
	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeZeroInputAmount:   "Swap input amount must be positive",
	CodeMissingPayer:      "Payer address is required",
	CodeInvalidSlippage:   "Slippage must be within (0, 10000] bps",
	CodeChainNotSupported: "Chain is not supported by this aggregator",
	CodeUnknownAggregator: "Unknown aggregator id",

	CodeQuoteFailed:       "Aggregator quote request failed",
	CodeZeroAmountQuote:   "Aggregator returned a zero-amount quote",
	CodeMalformedQuote:    "Aggregator returned an unusable quote",
	CodeIncompleteTx:      "Aggregator returned an incomplete transaction",
	CodeStatusUnsupported: "Aggregator does not support transaction tracking",
	CodeStatusFailed:      "Transaction status lookup failed",

	CodeNoRouteFound: "No aggregator returned a viable route",

	CodePriceUnavailable: "Native coin price unavailable",

	CodeCircuitOpen: "Circuit breaker is open",
}
