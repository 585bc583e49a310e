package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":             OK,
		"invalid_params": InvalidParams,
		"timeout":        Timeout,
		"unknown_pin":    UnknownPin,
		"bus_mismatch":   BusMismatch,
		"error":          Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q renders as %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatalf("Of(nil) != OK")
	}
	if Of(InvalidParams) != InvalidParams {
		t.Fatalf("bare code not extracted")
	}
	wrapped := &E{C: Timeout, Op: "qspi.receive", Err: errors.New("deadline")}
	if Of(wrapped) != Timeout {
		t.Fatalf("wrapped code not extracted")
	}
	if Of(errors.New("anything")) != Error {
		t.Fatalf("foreign error not mapped to generic Error")
	}
}

func TestEWrapping(t *testing.T) {
	cause := errors.New("hw fault")
	e := &E{C: Error, Op: "qspi.command", Err: cause}
	if !errors.Is(e, cause) {
		t.Fatalf("Unwrap chain broken")
	}
	if e.Error() != "error" {
		t.Fatalf("E without Msg renders as %q", e.Error())
	}
	e.Msg = "command rejected"
	if e.Error() != "error: command rejected" {
		t.Fatalf("E with Msg renders as %q", e.Error())
	}
}
