package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcreceiving/internal/database"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:upload_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Upload{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	dir := t.TempDir()
	svc := NewService(NewRepository(db), dir, "/static/uploads/", 1024, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return svc, dir
}

func TestService_SaveAndDiscard(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	u, err := svc.Save(ctx, 7, &Photo{Filename: "rack 3/label.PNG", Data: pngData})
	require.NoError(t, err)
	assert.Equal(t, "image/png", u.MimeType)
	assert.Equal(t, int64(7), u.OperatorID)
	assert.True(t, strings.HasPrefix(u.FilePath, "2026/10/18/"), u.FilePath)
	assert.True(t, strings.HasSuffix(u.FilePath, "_label.png"), u.FilePath)
	assert.Equal(t, "/static/uploads/"+u.FilePath, u.FileURL)

	onDisk, err := os.ReadFile(filepath.Join(dir, u.FilePath))
	require.NoError(t, err)
	assert.Equal(t, pngData, onDisk)

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.FileURL, got.FileURL)

	require.NoError(t, svc.Discard(ctx, u.ID))
	_, err = os.Stat(filepath.Join(dir, u.FilePath))
	assert.True(t, os.IsNotExist(err))
	_, err = svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)

	assert.ErrorIs(t, svc.Discard(ctx, u.ID), ErrUploadNotFound)
}

func TestService_SaveRejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, &Photo{Filename: "a.png"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Save(ctx, 1, &Photo{Filename: "a.pdf", Data: []byte("%PDF-1.7\n")})
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	big := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 2048)...)
	_, err = svc.Save(ctx, 1, &Photo{Filename: "a.png", Data: big})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDetectMimeType(t *testing.T) {
	heic := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
	assert.Equal(t, "image/heic", DetectMimeType(heic))
	assert.Equal(t, "image/jpeg", DetectMimeType([]byte("\xff\xd8\xff\xe0\x00\x10JFIF")))
	assert.Equal(t, "image/png", DetectMimeType(pngData))
	assert.Equal(t, "text/plain", DetectMimeType([]byte("hello")))
}

type failingRepo struct{ Repository }

func (failingRepo) Create(context.Context, *Upload) error { return errors.New("disk quota") }

func TestService_SaveRollsBackFileOnRecordError(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(failingRepo{}, dir, "", 0, nil)

	_, err := svc.Save(context.Background(), 1, &Photo{Filename: "x.png", Data: pngData})
	require.Error(t, err)

	var files []string
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	assert.Empty(t, files)
}

func TestService_ReadPhoto(t *testing.T) {
	svc, _ := newTestService(t)

	fh := multipartFile(t, "photo", "label.png", pngData)
	photo, err := svc.ReadPhoto(fh)
	require.NoError(t, err)
	assert.Equal(t, "label.png", photo.Filename)
	assert.Equal(t, pngData, photo.Data)

	_, err = svc.ReadPhoto(multipartFile(t, "photo", "notes.txt", []byte("just text")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestHandler_GetByID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	u, err := svc.Save(context.Background(), 1, &Photo{Filename: "x.png", Data: pngData})
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), NewHandler(svc))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+u.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), u.FileURL)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// multipartFile round-trips a form through the multipart reader to obtain a
// real *multipart.FileHeader.
func multipartFile(t *testing.T, field, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}
