package layer

import (
	"errors"
	"fmt"
	"testing"
)

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("layer_%d", n)
	}
}

func TestNewRegistryHasDefaultLayer(t *testing.T) {
	r := NewRegistry(counter())
	cur := r.Current()
	if cur.Name != DefaultName {
		t.Errorf("Current().Name = %q, want %q", cur.Name, DefaultName)
	}
	if !cur.On || !cur.Print {
		t.Error("default layer should be on and printable")
	}
	if len(r.List()) != 1 {
		t.Errorf("List() len = %d, want 1", len(r.List()))
	}
}

func TestSetCurrent(t *testing.T) {
	r := NewRegistry(counter())
	walls := r.Add("walls")

	if err := r.SetCurrent(walls.ID); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if r.Current().ID != walls.ID {
		t.Errorf("Current() = %q, want %q", r.Current().ID, walls.ID)
	}
	if err := r.SetCurrent("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCurrent(missing) = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry(counter())
	first := r.Current()
	second := r.Add("second")

	if err := r.SetCurrent(second.ID); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if err := r.Remove(second.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Current().ID != first.ID {
		t.Error("removing the current layer should fall back to the first layer")
	}
	if err := r.Remove(first.ID); !errors.Is(err, ErrLastLayer) {
		t.Errorf("Remove(last) = %v, want ErrLastLayer", err)
	}
}

func TestListIsACopy(t *testing.T) {
	r := NewRegistry(counter())
	list := r.List()
	list[0].Name = "changed"
	if r.Current().Name != DefaultName {
		t.Error("mutating List() result changed the registry")
	}
}

func TestUpdateAndReplace(t *testing.T) {
	r := NewRegistry(counter())
	l := r.Current()
	l.Color = "#f00"
	if err := r.Update(l); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := r.Get(l.ID); got.Color != "#f00" {
		t.Errorf("Color = %q, want #f00", got.Color)
	}

	loaded := []Layer{New("a", "A"), New("b", "B")}
	r.Replace(loaded)
	if r.Current().ID != "a" {
		t.Errorf("Current() after Replace = %q, want a", r.Current().ID)
	}
}
