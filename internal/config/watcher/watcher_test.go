package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func newWatcher(t *testing.T, debounce time.Duration) (*Watcher, chan Event) {
	t.Helper()
	w, err := New(WithDebounce(debounce))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	events := make(chan Event, 16)
	w.OnChange(func(e Event) { events <- e })
	return w, events
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("no event within 3s")
		return Event{}
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecstorm.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, events := newWatcher(t, 20*time.Millisecond)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	w.Start()
	if !w.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	if err := os.WriteFile(path, []byte("a = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := waitEvent(t, events)
	abs, _ := filepath.Abs(path)
	if e.Path != abs {
		t.Errorf("event path = %q, want %q", e.Path, abs)
	}
}

func TestWatchCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecstorm.yaml")

	w, events := newWatcher(t, 200*time.Millisecond)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() of a file not yet created: %v", err)
	}
	w.Start()

	for i := range 5 {
		if err := os.WriteFile(path, []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	waitEvent(t, events)

	select {
	case e := <-events:
		t.Errorf("second event %+v for one burst", e)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecstorm.toml")

	w, events := newWatcher(t, 10*time.Millisecond)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-events:
		t.Errorf("unexpected event %+v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchBookkeeping(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w, _ := newWatcher(t, 0)
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatal(err)
	}
	if got := w.WatchedFiles(); len(got) != 2 {
		t.Errorf("WatchedFiles() = %v", got)
	}
	if err := w.Unwatch(a); err != nil {
		t.Errorf("Unwatch(a) error = %v", err)
	}
	if err := w.Unwatch(a); err != ErrNotWatching {
		t.Errorf("second Unwatch(a) error = %v, want ErrNotWatching", err)
	}
	if err := w.Watch(filepath.Join(dir, "missing", "c.toml")); err == nil {
		t.Error("Watch() in a missing directory succeeded")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Watch(a); err != ErrWatcherClosed {
		t.Errorf("Watch() after Stop error = %v, want ErrWatcherClosed", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestPanickingHandlerKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecstorm.toml")

	w, err := New(WithDebounce(10 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	w.OnChange(func(Event) { panic("boom") })
	events := make(chan Event, 4)
	w.OnChange(func(e Event) { events <- e })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	for range 2 {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		waitEvent(t, events)
	}
}
