// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	wrapped := errors.New("boom")
	err := newError(KindIO, "socket write failed", wrapped)
	if !errors.Is(err, wrapped) {
		t.Fatal("expected errors.Is to see through Error.Unwrap")
	}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := newError(KindConnect, "nil wl_display pointer", nil)
	if err.Unwrap() != nil {
		t.Fatal("expected Unwrap to return nil when no cause was given")
	}
}

func TestKindString(t *testing.T) {
	for _, k := range []Kind{KindLibrary, KindConnect, KindProtocol, KindIO, KindDispatch} {
		if k.String() == "unknown" {
			t.Fatalf("Kind %d stringified to \"unknown\"", k)
		}
	}
}
