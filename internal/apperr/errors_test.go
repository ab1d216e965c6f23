package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindCodesAndStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		code   string
		status int
	}{
		{Unauthenticated, "UNAUTHENTICATED", http.StatusUnauthorized},
		{Forbidden, "FORBIDDEN", http.StatusForbidden},
		{NotFound, "NOT_FOUND", http.StatusNotFound},
		{InvalidState, "INVALID_STATE", http.StatusBadRequest},
		{Validation, "VALIDATION", http.StatusBadRequest},
		{RateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
		{UpstreamFailure, "UPSTREAM_FAILURE", http.StatusBadGateway},
		{Internal, "INTERNAL", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := tt.kind.Code(); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
			if got := tt.kind.Status(); got != tt.status {
				t.Errorf("Status() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	base := errors.New("rpc down")
	err := fmt.Errorf("check holder: %w", Wrap(base, UpstreamFailure, "ledger unavailable"))

	if got := KindOf(err); got != UpstreamFailure {
		t.Errorf("KindOf() = %v, want UpstreamFailure", got)
	}
	if !errors.Is(err, base) {
		t.Error("errors.Is() lost the wrapped cause")
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Errorf("KindOf() = %v, want Internal", got)
	}
	if Is(nil, Internal) {
		t.Error("Is(nil) = true, want false")
	}
}
