package service

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/storage"
)

func newDeleteService(t *testing.T, db database.Database, store storage.Storage) *DeleteService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDeleteService(db, store, logger)
}

func ingestOne(t *testing.T, db database.Database, fs storage.Storage) int64 {
	t.Helper()
	svc := newUploadService(t, db, fs)
	img, err := svc.Ingest(pngBytes(t), "victim.png", testSecret)
	require.NoError(t, err)
	return img.ID
}

func TestDelete(t *testing.T) {
	db, fs, dir := newTestDeps(t)
	id := ingestOne(t, db, fs)

	img, err := db.GetImage(id)
	require.NoError(t, err)

	svc := newDeleteService(t, db, fs)
	deleted, err := svc.Delete(id)
	require.NoError(t, err)
	assert.True(t, deleted)

	// record gone
	_, err = db.GetImage(id)
	assert.ErrorIs(t, err, database.ErrNotFound)

	// file and thumbnail gone
	exists, err := fs.Exists(img.SavedFilename)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, uploadsDirEntries(t, dir))

	// re-querying never returns the deleted id
	images, _, err := db.ListImages(database.ListQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	for _, got := range images {
		assert.NotEqual(t, id, got.ID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	id := ingestOne(t, db, fs)

	svc := newDeleteService(t, db, fs)

	deleted, err := svc.Delete(id)
	require.NoError(t, err)
	assert.True(t, deleted)

	// second delete: already absent, still success
	deleted, err = svc.Delete(id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteAbsentID(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	svc := newDeleteService(t, db, fs)

	deleted, err := svc.Delete(99)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteMany(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	existing := ingestOne(t, db, fs)

	svc := newDeleteService(t, db, fs)
	result := svc.DeleteMany([]int64{existing, 99})

	// both the real delete and the absent id count as succeeded
	assert.ElementsMatch(t, []int64{existing, 99}, result.Succeeded)
	assert.Empty(t, result.Failed)

	img, err := db.GetImage(existing)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.Nil(t, img)
}

// failingDeleteStore wraps a real store but fails deleting one specific
// file, to exercise per-id failure isolation.
type failingDeleteStore struct {
	storage.Storage
	failName string
}

func (f *failingDeleteStore) Delete(name string) error {
	if name == f.failName {
		return fmt.Errorf("device busy")
	}
	return f.Storage.Delete(name)
}

func TestDeleteManyIsolatesFailures(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	first := ingestOne(t, db, fs)
	second := ingestOne(t, db, fs)

	firstImg, err := db.GetImage(first)
	require.NoError(t, err)

	store := &failingDeleteStore{Storage: fs, failName: firstImg.SavedFilename}
	svc := newDeleteService(t, db, store)

	result := svc.DeleteMany([]int64{first, second, 404})

	assert.ElementsMatch(t, []int64{second, 404}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, first, result.Failed[0].ID)
	assert.Contains(t, result.Failed[0].Reason, "file delete")
}
