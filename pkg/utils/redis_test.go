package utils

import (
	"context"
	"testing"
)

func TestCallCapScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if callCapAcquireScript == nil || callCapReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestAcquireCallCap_RejectsBadArgs(t *testing.T) {
	ctx := context.Background()
	if _, err := AcquireCallCap(ctx, nil, "k", 1, 1); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleaseCallCap(ctx, nil, "k"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
