package vectordb

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func snapshotChunks() []entities.Chunk {
	return []entities.Chunk{
		{ID: "d1:0", DocumentID: "d1", Source: "a.txt", Content: "potongan pertama", Index: 0, StartOffset: 0, EndOffset: 16, Embedding: []float32{1, 0, 0.5}},
		{ID: "d1:1", DocumentID: "d1", Source: "a.txt", Content: "potongan kedua", Index: 1, StartOffset: 12, EndOffset: 26, Embedding: []float32{0, 1, 0.25}},
	}
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	want := snapshotChunks()

	if err := store.Save(ctx, "model-a", want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := store.Load(ctx, "model-a")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load(context.Background(), "model-a")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("want ErrNoSnapshot, got %v", err)
	}
}

func TestSnapshotStore_ModelMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "model-a", snapshotChunks()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	_, err := store.Load(ctx, "model-b")
	var cfgErr *entities.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("want ConfigError, got %v", err)
	}
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "model-a", snapshotChunks()); err != nil {
		t.Fatal(err)
	}

	replacement := []entities.Chunk{
		{ID: "d2:0", DocumentID: "d2", Source: "b.txt", Content: "pengganti", Index: 0, StartOffset: 0, EndOffset: 9, Embedding: []float32{0.5, 0.5}},
	}
	if err := store.Save(ctx, "model-b", replacement); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx, "model-b")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(got, replacement) {
		t.Errorf("old snapshot survived the replace:\ngot %+v", got)
	}
}

func TestSnapshotStore_SaveEmpty(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(context.Background(), "model-a", nil)
	if !errors.Is(err, entities.ErrEmptyCorpus) {
		t.Errorf("want ErrEmptyCorpus, got %v", err)
	}
}

func TestSnapshotStore_PreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var chunks []entities.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, entities.Chunk{
			ID:        "d1:" + string(rune('0'+i)),
			Index:     i,
			Embedding: []float32{float32(i)},
		})
	}
	if err := store.Save(ctx, "model-a", chunks); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx, "model-a")
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range got {
		if c.Index != i {
			t.Errorf("position %d holds chunk index %d", i, c.Index)
		}
	}
}
