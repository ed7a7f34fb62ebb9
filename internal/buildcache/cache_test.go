package buildcache

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestCachePath(t *testing.T) {
	tests := []struct {
		outDir string
		want   string
	}{
		{"/project/generated", "/project/generated/.asyncgen-cache"},
		{"generated", "generated/.asyncgen-cache"},
		{".", ".asyncgen-cache"},
	}
	for _, tt := range tests {
		if got := CachePath(tt.outDir); got != tt.want {
			t.Errorf("CachePath(%q) = %q, want %q", tt.outDir, got, tt.want)
		}
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("asyncapi: 2.6.0"))
	if a == "" {
		t.Fatal("Hash returned empty")
	}
	if b := Hash([]byte("asyncapi: 2.6.0")); a != b {
		t.Errorf("same content produced different hashes: %q vs %q", a, b)
	}
	if a == Hash([]byte("asyncapi: 2.5.0")) {
		t.Error("different content produced same hash")
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	cachePath := CachePath(dir)

	if c := Load(cachePath); c != nil {
		t.Fatal("Load should return nil for non-existent file")
	}

	original := New("in123", "cfg456", []string{"Order.cs", "Handlers.cs"})
	if err := Save(cachePath, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(cachePath)
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}
	if loaded.V != original.V {
		t.Errorf("V = %d, want %d", loaded.V, original.V)
	}
	if loaded.InputHash != original.InputHash || loaded.ConfigHash != original.ConfigHash {
		t.Errorf("hashes = %q/%q, want %q/%q", loaded.InputHash, loaded.ConfigHash, original.InputHash, original.ConfigHash)
	}
	if !slices.Equal(loaded.Outputs, original.Outputs) {
		t.Errorf("Outputs = %v, want %v", loaded.Outputs, original.Outputs)
	}
}

func TestLoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := CachePath(dir)
	os.WriteFile(cachePath, []byte("not json at all {{{"), 0644)

	if c := Load(cachePath); c != nil {
		t.Fatal("Load should return nil for corrupted JSON")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := CachePath(dir)
	os.WriteFile(cachePath, []byte(""), 0644)

	if c := Load(cachePath); c != nil {
		t.Fatal("Load should return nil for empty file")
	}
}

func TestIsValid(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "Order.cs"), []byte("class"), 0644)

	tests := []struct {
		name  string
		cache *Cache
		valid bool
	}{
		{"nil cache", nil, false},
		{"all checks pass", New("in", "cfg", []string{"Order.cs"}), true},
		{"no outputs", New("in", "cfg", nil), true},
		{"schema version mismatch", &Cache{V: SchemaVersion + 1, InputHash: "in", ConfigHash: "cfg"}, false},
		{"input changed", New("old", "cfg", []string{"Order.cs"}), false},
		{"config changed", New("in", "old", []string{"Order.cs"}), false},
		{"output missing", New("in", "cfg", []string{"Order.cs", "Missing.cs"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cache.IsValid("in", "cfg", dir); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestStale(t *testing.T) {
	c := New("in", "cfg", []string{"Order.cs", "Legacy.cs", "Handlers.cs", "Old.cs"})

	got := c.Stale([]string{"Order.cs", "Handlers.cs", "New.cs"})
	want := []string{"Legacy.cs", "Old.cs"}
	if !slices.Equal(got, want) {
		t.Errorf("Stale() = %v, want %v", got, want)
	}

	var none *Cache
	if got := none.Stale([]string{"Order.cs"}); got != nil {
		t.Errorf("nil cache Stale() = %v, want nil", got)
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	cachePath := CachePath(dir)

	os.WriteFile(cachePath, []byte(`{"v":1}`), 0644)
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatal("cache file should exist before delete")
	}

	Delete(cachePath)
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("cache file should not exist after delete")
	}

	// Deleting a missing file is a no-op.
	Delete(filepath.Join(dir, "nonexistent"))
}

func TestSaveAtomicity(t *testing.T) {
	dir := t.TempDir()
	cachePath := CachePath(dir)

	if err := Save(cachePath, New("in", "cfg", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(cachePath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not exist after successful save")
	}
	if Load(cachePath) == nil {
		t.Fatal("failed to load after atomic save")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedPath := CachePath(filepath.Join(dir, "sub", "dir"))

	if err := Save(nestedPath, New("in", "cfg", nil)); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}
	if Load(nestedPath) == nil {
		t.Fatal("failed to load from nested directory")
	}
}

func TestRoundTripWithRealFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "asyncapi.yaml")
	os.WriteFile(input, []byte("asyncapi: 2.6.0\n"), 0644)
	inputHash := hashFile(t, input)

	outDir := filepath.Join(dir, "generated")
	os.MkdirAll(outDir, 0755)
	os.WriteFile(filepath.Join(outDir, "Order.cs"), []byte("class"), 0644)

	c := New(inputHash, "cfg", []string{"Order.cs"})
	if err := Save(CachePath(outDir), c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Scenario 1: everything unchanged
	if !Load(CachePath(outDir)).IsValid(inputHash, "cfg", outDir) {
		t.Error("cache should be valid when nothing changed")
	}

	// Scenario 2: input edited
	os.WriteFile(input, []byte("asyncapi: 2.6.0\ninfo: {}\n"), 0644)
	if Load(CachePath(outDir)).IsValid(hashFile(t, input), "cfg", outDir) {
		t.Error("cache should be invalid after input change")
	}

	// Scenario 3: output deleted
	os.Remove(filepath.Join(outDir, "Order.cs"))
	if Load(CachePath(outDir)).IsValid(inputHash, "cfg", outDir) {
		t.Error("cache should be invalid after output removal")
	}
}

func hashFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return Hash(data)
}
