package idpool

import (
	"strings"
	"testing"
)

func TestAllocateUsesPrefix(t *testing.T) {
	p := NewPool(PrefixEntity)
	id := p.Allocate()
	if !strings.HasPrefix(id, PrefixEntity+"_") {
		t.Errorf("id %q missing prefix", id)
	}
	if err := Validate(id, PrefixEntity); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := Validate(id, PrefixLayer); err == nil {
		t.Error("Validate should reject the wrong prefix")
	}
	if err := Validate("not-an-id", PrefixEntity); err == nil {
		t.Error("Validate should reject garbage")
	}
}

func TestAllocateSkipsLiveIDs(t *testing.T) {
	p := NewPool(PrefixEntity)
	seq := []string{"ent_a", "ent_a", "ent_b"}
	p.gen = func(string) string {
		id := seq[0]
		seq = seq[1:]
		return id
	}

	first := p.Allocate()
	second := p.Allocate()
	if first != "ent_a" || second != "ent_b" {
		t.Errorf("Allocate = %q, %q; want ent_a, ent_b", first, second)
	}
}

func TestReleaseAndReserve(t *testing.T) {
	p := NewPool(PrefixEntity)
	id := p.Allocate()
	if !p.Live(id) {
		t.Fatal("allocated id should be live")
	}

	p.Release(id)
	if p.Live(id) {
		t.Error("released id should not be live")
	}
	p.Release("unknown")

	p.Reserve(id)
	if !p.Live(id) || p.Len() != 1 {
		t.Errorf("Reserve: live=%v len=%d", p.Live(id), p.Len())
	}
}
