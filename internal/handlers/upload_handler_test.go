package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/services"
)

type stubStorage struct {
	saveErr error
	deleted []string
}

func (s *stubStorage) SaveRFP(file *multipart.FileHeader, projectID string) (string, string, error) {
	if s.saveErr != nil {
		return "", "", s.saveErr
	}
	return "rfp_" + projectID + ".pdf", "/tmp/rfp_" + projectID + ".pdf", nil
}

func (s *stubStorage) DeleteFile(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func (s *stubStorage) EnsureUploadDir() error { return nil }

type stubParser struct {
	err error
}

func (p *stubParser) ExtractText(filePath string) (*services.RFPContent, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &services.RFPContent{Text: "Scope of work: cloud hosting", PageCount: 3, FilePath: filePath}, nil
}

func doUpload(t *testing.T, app *fiber.App, fields map[string]string, file []byte) (int, map[string]any) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("rfp", "bid.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/projects/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func newUploadApp(store *stubStore, storage *stubStorage, parser *stubParser, maxSize int64) *fiber.App {
	h := NewUploadHandler(store, storage, parser, maxSize, zap.NewNop())
	app := fiber.New()
	app.Post("/projects/upload", h.HandleUploadRFP)
	return app
}

func TestUploadHandler(t *testing.T) {
	store := &stubStore{}
	storage := &stubStorage{}
	app := newUploadApp(store, storage, &stubParser{}, 1024)

	status, body := doUpload(t, app, map[string]string{"id": "rfp-9", "title": "Hosting", "agency": "GSA"}, []byte("%PDF"))
	assert.Equal(t, fiber.StatusCreated, status)

	project, ok := body["project"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rfp-9", project["id"])
	assert.EqualValues(t, 3, project["pageCount"])

	require.Len(t, store.stored, 1)
	assert.Equal(t, "Scope of work: cloud hosting", store.stored[0].Description)
	assert.Equal(t, "GSA", store.stored[0].Agency)
	assert.Equal(t, "bid.pdf", store.metadata["sourceFile"])
	assert.Empty(t, storage.deleted)
}

func TestUploadHandler_Rejections(t *testing.T) {
	app := newUploadApp(&stubStore{}, &stubStorage{}, &stubParser{}, 4)

	status, _ := doUpload(t, app, map[string]string{}, []byte("%PDF"))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doUpload(t, app, map[string]string{"id": "x"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := doUpload(t, app, map[string]string{"id": "x"}, []byte("%PDF-1.7"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "too large")
}

func TestUploadHandler_CleansUpOnFailure(t *testing.T) {
	storage := &stubStorage{}
	app := newUploadApp(&stubStore{}, storage, &stubParser{err: services.ErrInvalidArgument}, 1024)

	status, _ := doUpload(t, app, map[string]string{"id": "x"}, []byte("%PDF"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, []string{"rfp_x.pdf"}, storage.deleted)

	storage = &stubStorage{}
	store := &stubStore{err: services.ErrUpstreamCall}
	app = newUploadApp(store, storage, &stubParser{}, 1024)

	status, _ = doUpload(t, app, map[string]string{"id": "y"}, []byte("%PDF"))
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, []string{"rfp_y.pdf"}, storage.deleted)
}
