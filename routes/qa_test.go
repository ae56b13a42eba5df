package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/qa"
	"pdf-qa-backend/models"
	"pdf-qa-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapability struct{}

func (fakeCapability) Embed(ctx context.Context, text string) (models.Vector, error) {
	vec := make(models.Vector, 4)
	lower := strings.ToLower(text)
	for i, w := range []string{"sky", "blue", "water", "boils"} {
		vec[i] = float32(strings.Count(lower, w))
	}
	return vec, nil
}

func (fakeCapability) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(strings.ToLower(prompt), "sky") {
		return "The sky is blue.", nil
	}
	return "The context does not contain the answer.", nil
}

type fakeStore struct{}

func (fakeStore) SaveDocument(ctx context.Context, doc *models.Document) error        { return nil }
func (fakeStore) AppendQueryRecord(ctx context.Context, rec *models.QueryRecord) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *qa.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		MaxFileSize:  10 << 20,
		AllowedTypes: []string{"application/pdf"},
	}
	svc := qa.NewService(fakeCapability{}, fakeStore{}, nil, nil, qa.Options{})

	router := gin.New()
	SetupQARoutes(router, cfg, svc, nil, services.NewPDFExtractor())
	return router, svc
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAskRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/ask", `{"not":"valid"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/ask", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/ask", `{"question":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		postJSON(router, "/ask", `{"question":"`+strings.Repeat("x", 1001)+`"}`).Code)
}

func TestAskWithoutDocumentIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/ask", `{"question":"What color is the sky?"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp["error_code"])
}

func TestAskAnswersFromActiveDocument(t *testing.T) {
	router, svc := newTestRouter(t)

	_, err := svc.Upload(context.Background(), "facts.pdf", "The sky is blue. Water boils at 100 degrees Celsius.")
	require.NoError(t, err)

	w := postJSON(router, "/ask", `{"question":"What color is the sky?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var ans models.AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ans))
	assert.Contains(t, strings.ToLower(ans.Answer), "blue")
	assert.Equal(t, "facts.pdf", ans.DocumentName)
	assert.Greater(t, ans.Confidence, 0.0)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsNonPDFContentType(t *testing.T) {
	router, _ := newTestRouter(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	// CreateFormFile advertises application/octet-stream.
	part, err := mw.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text pretending to be a pdf"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp["error_code"])
}
