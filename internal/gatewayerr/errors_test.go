package gatewayerr

import (
	"errors"
	"testing"
)

func TestConfigError_As(t *testing.T) {
	t.Parallel()

	var err error = NewConfigError("no providers supplied to router")

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatal("expected errors.As to match *ConfigError")
	}
	if cfgErr.Msg != "no providers supplied to router" {
		t.Errorf("Msg = %q, want %q", cfgErr.Msg, "no providers supplied to router")
	}
}

func TestDatabaseError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := NewDatabaseError("schema bootstrap failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestApiError_Message(t *testing.T) {
	t.Parallel()

	err := NewApiError("openai returned status %d: %s", 500, "internal error")
	want := "API provider error: openai returned status 500: internal error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNoProviderAvailable_IsDistinctType(t *testing.T) {
	t.Parallel()

	var err error = NewNoProviderAvailable()

	var target *NoProviderAvailable
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to match *NoProviderAvailable")
	}
}
