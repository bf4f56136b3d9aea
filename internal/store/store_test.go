// store_test.go

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestReadMissingCollectionIsEmpty(t *testing.T) {
	st := openTestStore(t)

	var docs []doc
	require.NoError(t, st.Read("nothing", &docs))
	assert.Empty(t, docs)
}

func TestWriteReadRoundTrip(t *testing.T) {
	st := openTestStore(t)

	in := []doc{{ID: 1, Name: "first"}, {ID: 2, Name: "second"}}
	require.NoError(t, st.Write("docs", in))

	var out []doc
	require.NoError(t, st.Read("docs", &out))
	assert.Equal(t, in, out)
}

func TestUpdateSeesReassignedSlice(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.Write("docs", []doc{{ID: 1, Name: "first"}}))

	var docs []doc
	err := st.Update("docs", &docs, func() error {
		docs = append(docs, doc{ID: 2, Name: "second"})
		return nil
	})
	require.NoError(t, err)

	var out []doc
	require.NoError(t, st.Read("docs", &out))
	assert.Len(t, out, 2)
}

func TestUpdateErrorLeavesFileUntouched(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.Write("docs", []doc{{ID: 1, Name: "first"}}))

	var docs []doc
	err := st.Update("docs", &docs, func() error {
		docs = nil
		return os.ErrInvalid
	})
	require.Error(t, err)

	var out []doc
	require.NoError(t, st.Read("docs", &out))
	assert.Len(t, out, 1)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, st.Write("docs", []doc{{ID: 1}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "docs.json", entries[0].Name())

	_, err = os.Stat(filepath.Join(dir, "docs.json"))
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	st := openTestStore(t)
	assert.NoError(t, st.Ping())
}

func TestCollectionStats(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.Write("docs", []doc{{ID: 1}, {ID: 2}}))

	stats, err := st.CollectionStats()
	require.NoError(t, err)

	info, ok := stats["docs"]
	require.True(t, ok)
	assert.Equal(t, 2, info.Documents)
	assert.Positive(t, info.SizeBytes)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))
	assert.Equal(t, 1, NextID([]int{}))
	assert.Equal(t, 4, NextID([]int{1, 2, 3}))
	assert.Equal(t, 8, NextID([]int{3, 7, 1}))
}
