package utils

import (
	"context"
	"testing"
	"time"
)

func TestProviderUnlockScriptCompiles(t *testing.T) {
	// Compile-time smoke test: the script should be initialized.
	if providerUnlockScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestProviderLock_RejectsInvalidArgs(t *testing.T) {
	ctx := context.Background()

	if _, err := AcquireProviderLock(ctx, nil, "k", "tok", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleaseProviderLock(ctx, nil, "k", "tok"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
