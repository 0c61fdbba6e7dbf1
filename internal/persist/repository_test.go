package persist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/layer"
	"github.com/dshills/vecstorm/internal/engine/store"
)

func newRepo(t *testing.T, opts ...RepositoryOption) *Repository {
	t.Helper()
	repo, err := NewRepository(context.Background(), OpenMemory(t), opts...)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func drawing(t *testing.T, n int) *store.Store {
	t.Helper()
	layers := layer.NewRegistry(func() string { return "layer_test" })
	st := store.New(store.Config{MaxEntries: 4}, entity.Geometry{}, layers)
	batch := make([]*entity.Entity, n)
	for i := range batch {
		x := float64(i * 10)
		batch[i] = entity.Line(geom.Pt(x, 0), geom.Pt(x+5, 5))
		batch[i].ID = fmt.Sprintf("ent_%02d", i)
	}
	st.Add(batch)
	return st
}

func TestOpenAppliesPragmas(t *testing.T) {
	db := OpenMemory(t, WithBusyTimeout(2500))

	var bt int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&bt); err != nil {
		t.Fatal(err)
	}
	if bt != 2500 {
		t.Errorf("busy_timeout = %d, want 2500", bt)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	src := drawing(t, 12)

	if err := repo.Save(ctx, "plan", src.Document()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := repo.Load(ctx, "plan")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Entities) != 12 || doc.Tree == nil {
		t.Fatalf("loaded %d entities, tree %v", len(doc.Entities), doc.Tree != nil)
	}

	layers := layer.NewRegistry(func() string { return "layer_test" })
	dst := store.New(store.Config{MaxEntries: 4}, entity.Geometry{}, layers)
	dst.LoadDocument(doc)

	if dst.Len() != src.Len() {
		t.Fatalf("Len() = %d, want %d", dst.Len(), src.Len())
	}
	if dst.IndexStats() != src.IndexStats() {
		t.Errorf("index stats %+v, want %+v", dst.IndexStats(), src.IndexStats())
	}
	box := geom.Box{MinX: 15, MinY: -1, MaxX: 36, MaxY: 6}
	got := entity.IDs(dst.QueryTouching(box, false))
	want := entity.IDs(src.QueryTouching(box, false))
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("query after load = %v, want %v", got, want)
	}
}

func TestSaveReplacesAndCountsVersions(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	repo := newRepo(t, WithClock(func() time.Time { return now }))

	if err := repo.Save(ctx, "plan", drawing(t, 3).Document()); err != nil {
		t.Fatal(err)
	}
	first, err := repo.Stat(ctx, "plan")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Minute)
	if err := repo.Save(ctx, " plan ", drawing(t, 5).Document()); err != nil {
		t.Fatal(err)
	}
	second, err := repo.Stat(ctx, "plan")
	if err != nil {
		t.Fatal(err)
	}

	if first.Version != 1 || second.Version != 2 {
		t.Errorf("versions = %d, %d; want 1, 2", first.Version, second.Version)
	}
	if first.Revision == second.Revision {
		t.Error("revision did not change")
	}
	if second.Count != 5 || !second.UpdatedAt.Equal(now) {
		t.Errorf("second = %+v", second)
	}
}

func TestLoadMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Load(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := repo.Save(context.Background(), "  ", store.Document{}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("blank name err = %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for _, name := range []string{"b", "a", "c"} {
		if err := repo.Save(ctx, name, drawing(t, 1).Document()); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}

	infos, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	if !slices.Equal(names, []string{"a", "c"}) {
		t.Errorf("List() names = %v", names)
	}
}

func TestEmptyDrawing(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if err := repo.Save(ctx, "empty", store.Document{}); err != nil {
		t.Fatal(err)
	}
	doc, err := repo.Load(ctx, "empty")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Entities == nil || len(doc.Entities) != 0 || doc.Tree != nil {
		t.Errorf("doc = %+v", doc)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{fmt.Errorf("wrapped: %w", errors.New("SQLITE_BUSY")), true},
		{errors.New("no such table"), false},
	}
	for _, tt := range tests {
		if got := IsBusy(tt.err); got != tt.want {
			t.Errorf("IsBusy(%v) = %v", tt.err, got)
		}
	}
}
