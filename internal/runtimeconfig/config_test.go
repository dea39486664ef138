package runtimeconfig

import "testing"

func TestNewDerivesBytesFromMB(t *testing.T) {
	c := New(64, 4, 0)
	if c.MaxMemoryBytes() != 64*1024*1024 {
		t.Fatalf("expected 64MiB in bytes, got %d", c.MaxMemoryBytes())
	}
	if c.Workers() != 4 {
		t.Fatalf("expected 4 workers, got %d", c.Workers())
	}
}

func TestSetMaxMemoryMBDerivesBytes(t *testing.T) {
	c := New(64, 4, 0)
	c.SetMaxMemoryMB(128)

	if c.MaxMemoryMB() != 128 {
		t.Fatalf("expected 128, got %d", c.MaxMemoryMB())
	}
	if c.MaxMemoryBytes() != 128*1024*1024 {
		t.Fatalf("expected derived bytes, got %d", c.MaxMemoryBytes())
	}
}

func TestSetMaxMemoryBytesDerivesMB(t *testing.T) {
	c := New(64, 4, 0)
	c.SetMaxMemoryBytes(10 * 1024 * 1024)

	if c.MaxMemoryMB() != 10 {
		t.Fatalf("expected 10, got %d", c.MaxMemoryMB())
	}
}

func TestSetDefaultTTL(t *testing.T) {
	c := New(64, 4, 0)
	c.SetDefaultTTL(30)
	if c.DefaultTTL() != 30 {
		t.Fatalf("expected 30, got %d", c.DefaultTTL())
	}
}
