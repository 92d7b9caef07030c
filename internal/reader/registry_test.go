package reader

import (
	"errors"
	"testing"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

func TestRegistry_AcquireRelease(t *testing.T) {
	r := NewRegistry()
	port := contracts.PortDescriptor{Name: "Kit", Index: 0}

	release, err := r.Acquire(port)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Acquire(port); !errors.Is(err, contracts.ErrBusy) {
		t.Fatalf("second Acquire = %v", err)
	}
	release()
	release()
	if r.Held("Kit") {
		t.Fatal("port still held after release")
	}
	if _, err := r.Acquire(port); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
}
