package apperror_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/metaswap/swapr/internal/apperror"
)

func TestQuote_CarriesVendorContext(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := apperror.Quote(apperror.CodeQuoteFailed, "lifi", 502, `{"message":"bad gateway"}`, cause)

	if err.Vendor != "lifi" {
		t.Errorf("expected vendor lifi, got %q", err.Vendor)
	}
	if err.HTTPStatus != 502 {
		t.Errorf("expected status 502, got %d", err.HTTPStatus)
	}
	if !errors.Is(err, apperror.New(apperror.CodeQuoteFailed)) {
		t.Error("errors.Is should match on code")
	}
	if !strings.Contains(err.Error(), "vendor: lifi") {
		t.Errorf("Error() should name the vendor: %s", err.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestNoRoute_ListsAttempted(t *testing.T) {
	attempted := []string{"lifi", "socket", "squid"}
	err := apperror.NoRoute(attempted)

	if apperror.GetCode(err) != apperror.CodeNoRouteFound {
		t.Fatalf("unexpected code %s", apperror.GetCode(err))
	}
	if len(err.Attempted) != 3 {
		t.Fatalf("expected 3 attempted ids, got %d", len(err.Attempted))
	}
	// defensive copy
	attempted[0] = "mutated"
	if err.Attempted[0] != "lifi" {
		t.Error("Attempted must not alias the caller's slice")
	}
}

func TestWrap_PreservesAppError(t *testing.T) {
	orig := apperror.Validation(apperror.CodeZeroInputAmount, "amount")
	wrapped := apperror.Wrap(fmt.Errorf("dispatch: %w", orig), apperror.CodeInternalError, "orchestrator")

	if apperror.GetCode(wrapped) != apperror.CodeZeroInputAmount {
		t.Errorf("wrap must preserve the original code, got %s", apperror.GetCode(wrapped))
	}
}

func TestIsValidation(t *testing.T) {
	if !apperror.IsValidation(apperror.Validation(apperror.CodeInvalidSlippage, "s")) {
		t.Error("slippage error should classify as validation")
	}
	if apperror.IsValidation(apperror.NoRoute(nil)) {
		t.Error("no-route should not classify as validation")
	}
}
