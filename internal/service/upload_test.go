package service

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/model"
	"github.com/sylrest/keepsake/internal/storage"
)

const testSecret = "hunter2"

var testDBCounter atomic.Int64

func newTestDeps(t *testing.T) (database.Database, *storage.FileSystem, string) {
	t.Helper()
	dsn := fmt.Sprintf("file:svcdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := database.NewSQLiteDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	fs, err := storage.NewFileSystem(dir)
	require.NoError(t, err)
	return db, fs, dir
}

func newUploadService(t *testing.T, db database.Database, fs storage.Storage) *UploadService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUploadService(db, fs, testSecret, "https://i.example.net/", 10<<20, logger)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

// uploadsDirEntries lists the originals in the uploads directory (thumbs
// subdirectory excluded).
func uploadsDirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

func TestIngest(t *testing.T) {
	db, fs, dir := newTestDeps(t)
	svc := newUploadService(t, db, fs)

	data := pngBytes(t)
	img, err := svc.Ingest(data, "My Screenshot.PNG", testSecret)
	require.NoError(t, err)

	assert.NotZero(t, img.ID)
	assert.Equal(t, "My_Screenshot.PNG", img.OriginalFilename)
	assert.Equal(t, ".png", img.FileExtension)
	assert.Equal(t, int64(len(data)), img.FileSize)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 4, img.Height)
	assert.Equal(t, "https://i.example.net/"+img.SavedFilename, img.URL)
	// 6-char token plus extension, decoupled from the supplied name
	assert.Len(t, img.SavedFilename, len("abc123")+len(".png"))
	assert.NotContains(t, img.SavedFilename, "Screenshot")

	// file on disk, record in DB
	exists, err := fs.Exists(img.SavedFilename)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := db.GetImage(img.ID)
	require.NoError(t, err)
	assert.Equal(t, img.SavedFilename, got.SavedFilename)
	assert.WithinDuration(t, time.Now().UTC(), got.UploadedAt, time.Minute)

	assert.Equal(t, []string{img.SavedFilename}, uploadsDirEntries(t, dir))
}

func TestIngestRejectsBadSecret(t *testing.T) {
	db, fs, dir := newTestDeps(t)
	svc := newUploadService(t, db, fs)

	for _, secret := range []string{"", "wrong"} {
		_, err := svc.Ingest(pngBytes(t), "a.png", secret)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}

	// no record, no file
	_, total, err := db.ListImages(database.ListQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, uploadsDirEntries(t, dir))
}

func TestIngestRejectsWhenNoSecretConfigured(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewUploadService(db, fs, "", "https://i.example.net/", 0, logger)

	_, err := svc.Ingest(pngBytes(t), "a.png", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIngestRejectsDisallowedType(t *testing.T) {
	db, fs, dir := newTestDeps(t)
	svc := newUploadService(t, db, fs)

	for _, name := range []string{"script.exe", "page.html", "noextension", "archive.tar.gz"} {
		_, err := svc.Ingest([]byte("content"), name, testSecret)
		assert.ErrorIs(t, err, ErrInvalidFileType, "name %q", name)
	}

	// storage directory unchanged, no records created
	_, total, err := db.ListImages(database.ListQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, uploadsDirEntries(t, dir))
}

func TestIngestRejectsEmptyFile(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	svc := newUploadService(t, db, fs)

	_, err := svc.Ingest(nil, "a.png", testSecret)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestIngestRejectsTooLarge(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewUploadService(db, fs, testSecret, "https://i.example.net/", 16, logger)

	_, err := svc.Ingest(make([]byte, 17), "a.png", testSecret)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

// failingCreateDB wraps a real database but fails every insert, to exercise
// the compensating file delete.
type failingCreateDB struct {
	database.Database
}

func (f *failingCreateDB) CreateImage(img *model.Image) error {
	return fmt.Errorf("disk I/O error")
}

func TestIngestCompensatesOnInsertFailure(t *testing.T) {
	db, fs, dir := newTestDeps(t)
	svc := newUploadService(t, &failingCreateDB{Database: db}, fs)

	_, err := svc.Ingest(pngBytes(t), "a.png", testSecret)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "record insert", storageErr.Op)

	// the written file was compensated away
	assert.Empty(t, uploadsDirEntries(t, dir))
}

func TestIngestWritesThumbnail(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	svc := newUploadService(t, db, fs)

	img, err := svc.Ingest(pngBytes(t), "a.png", testSecret)
	require.NoError(t, err)

	rc, err := fs.RetrieveThumb(img.SavedFilename)
	require.NoError(t, err)
	rc.Close()
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"My Photo.png", "My_Photo.png"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"héllo wörld.png", "hllo_wrld.png"},
		{"", "unnamed"},
		{"///", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestPublicURL(t *testing.T) {
	db, fs, _ := newTestDeps(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// with and without trailing slash on the base URL
	for _, base := range []string{"https://i.example.net", "https://i.example.net/"} {
		svc := NewUploadService(db, fs, testSecret, base, 0, logger)
		assert.Equal(t, "https://i.example.net/abc123.png", svc.PublicURL("abc123.png"))
	}
}
