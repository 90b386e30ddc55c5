package pool

import "testing"

func TestRegistryGetOrCreateIsStable(t *testing.T) {
	r := NewRegistry(5)
	a := r.GetOrCreate("fn")
	b := r.GetOrCreate("fn")
	if a != b {
		t.Fatal("GetOrCreate should return the same pool for the same function id")
	}
	if a.Limit != 5 {
		t.Fatalf("Limit = %d, want default 5", a.Limit)
	}
}

func TestRegistryAll(t *testing.T) {
	r := NewRegistry(5)
	r.GetOrCreate("a")
	r.GetOrCreate("b")
	if len(r.All()) != 2 {
		t.Fatalf("All() = %d pools, want 2", len(r.All()))
	}
}
