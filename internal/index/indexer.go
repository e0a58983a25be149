package index

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"cpatminer/internal/exas"
)

// Entry is one indexed fragment.
type Entry struct {
	GraphID   int            `json:"graph_id"`
	Fragment  string         `json:"fragment"`
	Signature exas.Signature `json:"signature"`
}

// Bucket groups fragments whose signatures share a key.
type Bucket struct {
	Key     string  `json:"key"`
	Entries []Entry `json:"entries"`
}

// Index groups fragment signatures into buckets. It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
	byKey   map[string][]int
	byValue map[int32][]int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byKey:   make(map[string][]int),
		byValue: make(map[int32][]int),
	}
}

// Add indexes one fragment signature.
func (i *Index) Add(e Entry) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.addLocked(e)
}

func (i *Index) addLocked(e Entry) {
	pos := len(i.entries)
	i.entries = append(i.entries, e)
	i.byKey[e.Signature.Key] = append(i.byKey[e.Signature.Key], pos)

	var prev int32
	for j, v := range e.Signature.Values {
		if j > 0 && v == prev {
			continue
		}
		prev = v
		i.byValue[v] = append(i.byValue[v], pos)
	}
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Bucket returns the entries stored under key, in insertion order.
func (i *Index) Bucket(key string) []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.resolve(i.byKey[key])
}

// Buckets returns every bucket holding at least minSize entries, largest
// first, ties broken by key.
func (i *Index) Buckets(minSize int) []Bucket {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var out []Bucket
	for key, positions := range i.byKey {
		if len(positions) < minSize {
			continue
		}
		out = append(out, Bucket{Key: key, Entries: i.resolve(positions)})
	}
	sort.Slice(out, func(a, b int) bool {
		if len(out[a].Entries) != len(out[b].Entries) {
			return len(out[a].Entries) > len(out[b].Entries)
		}
		return out[a].Key < out[b].Key
	})
	return out
}

// Candidates returns the entries sharing at least one fingerprint with sig,
// in insertion order.
func (i *Index) Candidates(sig exas.Signature) []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	hit := make(map[int]bool)
	for _, v := range sig.Values {
		for _, pos := range i.byValue[v] {
			hit[pos] = true
		}
	}
	positions := make([]int, 0, len(hit))
	for pos := range hit {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return i.resolve(positions)
}

func (i *Index) resolve(positions []int) []Entry {
	out := make([]Entry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, i.entries[pos])
	}
	return out
}

// Save persists the index entries to a JSON file.
func (i *Index) Save(path string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(i.entries); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return nil
}

// Load reads an index from a JSON file written by Save.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}

	// Lookup maps are not serialized
	idx := NewIndex()
	for _, e := range entries {
		idx.addLocked(e)
	}
	return idx, nil
}
