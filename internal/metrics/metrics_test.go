package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	r := New()

	r.IncCommand("GET")
	r.IncCommand("GET")
	r.IncCacheHit()
	r.IncCacheMiss()
	r.SetUsedMemory(42)
	r.SetMaxMemory(1024)
	r.IncConnection()
	r.IncConnection()
	r.DecConnection()

	if got := testutil.ToFloat64(r.commandsTotal.WithLabelValues("GET")); got != 2 {
		t.Fatalf("expected 2 GET commands, got %v", got)
	}
	if got := testutil.ToFloat64(r.cacheHits); got != 1 {
		t.Fatalf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(r.cacheMisses); got != 1 {
		t.Fatalf("expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(r.usedMemory); got != 42 {
		t.Fatalf("expected used memory 42, got %v", got)
	}
	if got := testutil.ToFloat64(r.maxMemory); got != 1024 {
		t.Fatalf("expected max memory 1024, got %v", got)
	}
	if got := testutil.ToFloat64(r.connections); got != 1 {
		t.Fatalf("expected 1 current connection, got %v", got)
	}
	if got := testutil.ToFloat64(r.connsTotal); got != 2 {
		t.Fatalf("expected 2 total connections, got %v", got)
	}
}
