package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCodeThroughWrapping(t *testing.T) {
	base := New(CodeInsufficientFuel, "not enough fuel")
	wrapped := fmt.Errorf("resume travel: %w", base)

	if !Is(wrapped, CodeInsufficientFuel) {
		t.Fatal("expected wrapped error to match its code")
	}
	if Is(wrapped, CodeInsufficientFunds) {
		t.Fatal("unexpected match on a different code")
	}
	if got := CodeOf(wrapped); got != CodeInsufficientFuel {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "save failed", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
	if err.Error() != "save failed: disk full" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUnknownShip, http.StatusNotFound},
		{CodeInvalidQuantity, http.StatusBadRequest},
		{CodeCargoFull, http.StatusConflict},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}
