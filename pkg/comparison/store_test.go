package comparison

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
)

// testStore creates a temporary JSON store for testing.
func testStore(t *testing.T) *JSONStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "comparisons.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestNewJSONStore(t *testing.T) {
	store := testStore(t)
	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d comparisons", store.Count())
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("file should not exist before first save")
	}
}

func TestSaveAssignsIDAndTimestamps(t *testing.T) {
	store := testStore(t)

	c := &Comparison{Name: "Tuono vs Speed Triple"}
	if err := store.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if c.ID == "" {
		t.Error("expected ID to be generated")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	created := c.CreatedAt
	time.Sleep(5 * time.Millisecond)
	c.Name = "renamed"
	if err := store.Save(c); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if !c.CreatedAt.Equal(created) {
		t.Error("CreatedAt should not change on update")
	}
	if !c.UpdatedAt.After(created) {
		t.Error("UpdatedAt should advance on update")
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestGetAndDelete(t *testing.T) {
	store := testStore(t)

	c := &Comparison{Name: "a", Input: analysis.Input{RidingStyle: comfort.Sport}}
	if err := store.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "a" || got.Input.RidingStyle != comfort.Sport {
		t.Errorf("Get = %+v", got)
	}

	// Mutating the returned copy does not touch the store.
	got.Name = "changed"
	again, _ := store.Get(c.ID)
	if again.Name != "a" {
		t.Error("Get should return a copy")
	}

	if err := store.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := NewMemoryStore()

	for _, name := range []string{"first", "second", "third"} {
		if err := store.Save(&Comparison{Name: name}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List len = %d, want 3", len(list))
	}
	if list[0].Name != "third" || list[2].Name != "first" {
		t.Errorf("order = %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "comparisons.json")

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	c := &Comparison{Name: "persisted", Input: analysis.Input{Mode: analysis.ModeManual}}
	if err := store.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(c.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Name != "persisted" || got.Input.Mode != analysis.ModeManual {
		t.Errorf("reopened = %+v", got)
	}

	if err := reopened.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	third, _ := NewJSONStore(path)
	if third.Count() != 0 {
		t.Errorf("delete not persisted, count = %d", third.Count())
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparisons.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(path); err == nil {
		t.Error("expected error for corrupt file")
	}

	if err := os.WriteFile(path, []byte(`{"version": 99, "comparisons": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(path); err == nil {
		t.Error("expected error for future version")
	}
}

func TestSaveRollsBackOnWriteFailure(t *testing.T) {
	store := testStore(t)
	// Make the target a directory so the rename fails.
	if err := os.MkdirAll(store.Path(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.Path(), "keep"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.Save(&Comparison{Name: "doomed"}); err == nil {
		t.Fatal("expected save error")
	}
	if store.Count() != 0 {
		t.Errorf("failed save should roll back, count = %d", store.Count())
	}
}
