// Package buildcache lets asyncgen skip regeneration when nothing changed.
//
// The cache records the hash of the input document, the hash of the
// generation-relevant config and the files the last run produced. Any
// mismatch, or any missing output, means a full regeneration. The output
// list also drives stale-file removal: a file listed by the previous run
// but not produced by the current one is deleted.
package buildcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/zeebo/xxh3"
)

// FileName is the cache file written inside the output directory.
const FileName = ".asyncgen-cache"

// SchemaVersion is bumped when the cache format or the generated output
// format changes. A mismatch forces a full rebuild.
const SchemaVersion = 1

// Cache represents the on-disk generation cache.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// InputHash is the xxh3 digest of the input document.
	InputHash string `json:"inputHash"`

	// ConfigHash is the xxh3 digest of the config fingerprint.
	ConfigHash string `json:"configHash"`

	// Outputs lists generated file names relative to the output directory.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file path inside the output directory, so
// deleting the directory also drops the cache.
func CachePath(outDir string) string {
	return filepath.Join(outDir, FileName)
}

// Load reads and parses a cache file from disk.
// Returns nil if the file doesn't exist, is unreadable, or is invalid JSON.
// Callers should treat nil as a cache miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}

	return &c
}

// Save writes the cache to disk atomically (write to temp, rename).
// A failed save only costs the next run its shortcut.
func Save(path string, cache *Cache) error {
	data, err := json.Marshal(cache, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// Delete removes the cache file from disk. Errors are ignored (file may not exist).
func Delete(path string) {
	os.Remove(path)
}

// IsValid checks whether the cache can be trusted to skip generation.
// ALL of the following must be true simultaneously:
//
//  1. Schema version matches (catches binary upgrades)
//  2. Input and config hashes match
//  3. All outputs still exist in outDir
func (c *Cache) IsValid(inputHash, configHash, outDir string) bool {
	if c == nil {
		return false
	}
	if c.V != SchemaVersion {
		return false
	}
	if c.InputHash != inputHash || c.ConfigHash != configHash {
		return false
	}
	for _, name := range c.Outputs {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			return false
		}
	}
	return true
}

// Stale returns the outputs recorded in c that are not in current, in
// recorded order. A nil cache has no stale outputs.
func (c *Cache) Stale(current []string) []string {
	if c == nil {
		return nil
	}
	keep := make(map[string]bool, len(current))
	for _, name := range current {
		keep[name] = true
	}
	var stale []string
	for _, name := range c.Outputs {
		if !keep[name] {
			stale = append(stale, name)
		}
	}
	return stale
}

// Hash returns the xxh3 hex digest of data.
func Hash(data []byte) string {
	return strconv.FormatUint(xxh3.Hash(data), 16)
}

// New creates a new Cache with the current schema version.
func New(inputHash, configHash string, outputs []string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		InputHash:  inputHash,
		ConfigHash: configHash,
		Outputs:    outputs,
	}
}
