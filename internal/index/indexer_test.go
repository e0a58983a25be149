package index

import (
	"path/filepath"
	"sync"
	"testing"

	"cpatminer/internal/exas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(graphID int, key string, values ...int32) Entry {
	return Entry{
		GraphID:   graphID,
		Fragment:  key,
		Signature: exas.Signature{Key: key, Values: values},
	}
}

func TestIndex_Buckets(t *testing.T) {
	idx := NewIndex()
	idx.Add(entry(1, "k1", 1, 2))
	idx.Add(entry(2, "k2", 3))
	idx.Add(entry(3, "k1", 1, 2))
	idx.Add(entry(4, "k3", 2, 2, 9))
	idx.Add(entry(5, "k3", 4))

	assert.Equal(t, 5, idx.Len())
	assert.Len(t, idx.Bucket("k1"), 2)
	assert.Empty(t, idx.Bucket("missing"))

	buckets := idx.Buckets(2)
	require.Len(t, buckets, 2)
	assert.Equal(t, "k1", buckets[0].Key)
	assert.Equal(t, "k3", buckets[1].Key)
	assert.Equal(t, 1, buckets[0].Entries[0].GraphID)
	assert.Equal(t, 3, buckets[0].Entries[1].GraphID)

	assert.Len(t, idx.Buckets(1), 3)
}

func TestIndex_Candidates(t *testing.T) {
	idx := NewIndex()
	idx.Add(entry(1, "k1", 1, 2))
	idx.Add(entry(2, "k2", 3))
	idx.Add(entry(3, "k3", 2, 2, 9))

	got := idx.Candidates(exas.Signature{Values: []int32{2, 7}})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].GraphID)
	assert.Equal(t, 3, got[1].GraphID)

	assert.Empty(t, idx.Candidates(exas.Signature{Values: []int32{42}}))
}

func TestIndex_ConcurrentAdd(t *testing.T) {
	idx := NewIndex()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx.Add(entry(i, "same", int32(i)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, idx.Len())
	assert.Len(t, idx.Bucket("same"), 50)
}

func TestIndex_SaveLoad(t *testing.T) {
	idx := NewIndex()
	idx.Add(entry(1, "k1", 1, 2))
	idx.Add(entry(2, "k1", 1, 2))

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Len(t, loaded.Bucket("k1"), 2)
	assert.Len(t, loaded.Candidates(exas.Signature{Values: []int32{2}}), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
