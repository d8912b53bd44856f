package tracking

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledWithoutDSN(t *testing.T) {
	if err := Init("", "test", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Enabled() {
		t.Fatal("tracking should stay disabled without a DSN")
	}
	CaptureError(context.Background(), errors.New("ignored"), nil)
	CapturePanic("ignored", nil)
	Flush()
}
