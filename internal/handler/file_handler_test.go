package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n fake image body")

func (a *testApp) upload(t *testing.T, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("authorWallet", userWallet))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestFileUploadAndServe(t *testing.T) {
	app := newTestApp(t)

	w := app.upload(t, "cat.png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var uploaded domain.FileUploadResponse
	decode(t, w, &uploaded)
	assert.Equal(t, "image/png", uploaded.FileType)
	assert.False(t, uploaded.IsVideo)
	require.NotEmpty(t, uploaded.BlobID)

	w = app.do(t, request{method: http.MethodGet, path: "/api/files/" + uploaded.BlobID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")

	var stored domain.File
	require.NoError(t, app.db.First(&stored, "id = ?", uploaded.BlobID).Error)
	assert.Equal(t, userWallet, stored.UploaderID)
}

func TestFileUpload_Rejects(t *testing.T) {
	app := newTestApp(t)

	w := app.upload(t, "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileDelete(t *testing.T) {
	app := newTestApp(t)
	var uploaded domain.FileUploadResponse
	decode(t, app.upload(t, "cat.png", pngBytes), &uploaded)
	path := "/api/files/" + uploaded.BlobID

	w := app.do(t, request{method: http.MethodDelete, path: path})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set(middleware.HeaderAdminWallet, adminWallet)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, app.do(t, request{method: http.MethodGet, path: path}).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, request{method: http.MethodDelete, path: path, admin: adminWallet}).Code)
}
