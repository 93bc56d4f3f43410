package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(arbor.NewLogger(), &common.LocalStoreConfig{Path: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "scrapers/example_com_content.js", []byte("(() => ({}))()")))

	data, err := store.Get(ctx, "scrapers/example_com_content.js")
	require.NoError(t, err)
	assert.Equal(t, "(() => ({}))()", string(data))

	exists, err := store.Exists(ctx, "scrapers/example_com_content.js")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPutReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "metadata/example_com_content.json", []byte("v1")))
	require.NoError(t, store.Put(ctx, "metadata/example_com_content.json", []byte("v2")))

	data, err := store.Get(ctx, "metadata/example_com_content.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestGetMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "metadata/missing.json")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestListByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "metadata/a_com_content.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "metadata/b_com_list.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "scrapers/a_com_content.js", []byte("x")))

	keys, err := store.List(ctx, "metadata/")
	require.NoError(t, err)
	assert.Equal(t, []string{"metadata/a_com_content.json", "metadata/b_com_list.json"}, keys)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "scrapers/x.js", []byte("x")))
	require.NoError(t, store.Delete(ctx, "scrapers/x.js"))
	require.NoError(t, store.Delete(ctx, "scrapers/x.js"))

	exists, err := store.Exists(ctx, "scrapers/x.js")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Put(ctx, "../outside", []byte("x")))
	assert.Error(t, store.Put(ctx, "/etc/passwd", []byte("x")))
	_, err := store.Get(ctx, "..")
	assert.Error(t, err)
}

func TestFilesLandUnderRoot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(arbor.NewLogger(), &common.LocalStoreConfig{Path: dir})
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "scrapers/example_com_list.js", []byte("x")))

	_, statErr := os.Stat(filepath.Join(dir, "scrapers", "example_com_list.js"))
	assert.NoError(t, statErr)
}
