package http

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"deckhand/internal/database"
	"deckhand/internal/services"
	"deckhand/internal/uploads"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestRouter wires a router against a fresh database and upload store.
func setupTestRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Database:      db,
		ImportService: services.NewImportService(db),
		UploadStore:   store,
		Version:       "test",
	})
	return router, db
}

// buildArchive assembles a one-card .apkg fixture, optionally with media
// entries, and returns its bytes.
func buildArchive(t *testing.T, media map[string][]byte) []byte {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "collection.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)

	schema := `
		CREATE TABLE col (id INTEGER PRIMARY KEY, models TEXT, decks TEXT);
		CREATE TABLE notes (id INTEGER PRIMARY KEY, guid TEXT, mid INTEGER, tags TEXT, flds TEXT, sfld TEXT);
		CREATE TABLE cards (id INTEGER PRIMARY KEY, nid INTEGER, did INTEGER, ord INTEGER,
			due INTEGER, ivl INTEGER, factor INTEGER, reps INTEGER, lapses INTEGER);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	models := `{
		"100": {
			"name": "Basic",
			"flds": [{"name": "Front"}, {"name": "Back"}],
			"tmpls": [{"name": "Card 1", "qfmt": "{{Front}}", "afmt": "{{FrontSide}}<hr>{{Back}}"}]
		}
	}`
	decks := `{"1": {"name": "Default"}, "2": {"name": "Geography"}}`
	_, err = db.Exec("INSERT INTO col (id, models, decks) VALUES (1, ?, ?)", models, decks)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO notes (id, guid, mid, tags, flds, sfld) VALUES (1, '', 100, 'capitals', 'Q'||char(31)||'A', '')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO cards (id, nid, did, ord) VALUES (11, 1, 2, 0)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	dbBytes, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("collection.anki21")
	require.NoError(t, err)
	_, err = entry.Write(dbBytes)
	require.NoError(t, err)
	for name, data := range media {
		entry, err := zw.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// postArchive uploads archive bytes as a multipart apkg_file field.
func postArchive(t *testing.T, router *gin.Engine, url string, archive []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("apkg_file", "deck.apkg")
	require.NoError(t, err)
	_, err = part.Write(archive)
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func doRequest(router *gin.Engine, method, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}
