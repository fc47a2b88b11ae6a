package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf/askpdf/internal/core"
	"github.com/askpdf/askpdf/internal/store"
)

type mockIngestor struct {
	filename string
	data     []byte
	result   *core.IngestResult
	err      error
}

func (m *mockIngestor) Ingest(_ context.Context, filename string, data []byte) (*core.IngestResult, error) {
	m.filename = filename
	m.data = data
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &core.IngestResult{DocumentID: "doc-1", Filename: filename, ChunkCount: 3}, nil
}

type mockAnswerer struct {
	question string
	k        int
	answer   string
	err      error
}

func (m *mockAnswerer) Answer(_ context.Context, question string, k int) (string, error) {
	m.question = question
	m.k = k
	return m.answer, m.err
}

type mockLister struct {
	docs []store.Document
	err  error
}

func (m *mockLister) ListDocuments(_ context.Context) ([]store.Document, error) {
	return m.docs, m.err
}

func newTestRouter(ingestor Ingestor, answerer Answerer, lister DocumentLister) http.Handler {
	return NewRouter(NewAPIHandler(ingestor, answerer, lister, 32))
}

func multipartPDF(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadPDF_Success(t *testing.T) {
	ingestor := &mockIngestor{}
	router := newTestRouter(ingestor, &mockAnswerer{}, &mockLister{})

	body, contentType := multipartPDF(t, "file", "notes.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Contains(t, resp["message"], "notes.pdf")
	assert.Contains(t, resp["message"], "3 text chunks stored")
	assert.Equal(t, "doc-1", resp["document_id"])
	assert.Equal(t, "notes.pdf", ingestor.filename)
	assert.Equal(t, []byte("%PDF-1.4 fake"), ingestor.data)
}

func TestUploadPDF_NoContentOutcome(t *testing.T) {
	ingestor := &mockIngestor{result: &core.IngestResult{Filename: "scan.pdf", NoContent: true}}
	router := newTestRouter(ingestor, &mockAnswerer{}, &mockLister{})

	body, contentType := multipartPDF(t, "file", "scan.pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "No text content found in scan.pdf")
}

func TestUploadPDF_MissingFileField(t *testing.T) {
	router := newTestRouter(&mockIngestor{}, &mockAnswerer{}, &mockLister{})

	body, contentType := multipartPDF(t, "wrong_field", "notes.pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["detail"])
}

func TestUploadPDF_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "invalid input is specific",
			err:        fmt.Errorf("%w: invalid file type, only PDF files are allowed", core.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid file type, only PDF files are allowed",
		},
		{
			name:       "extraction failure is generic",
			err:        fmt.Errorf("%w: broken.pdf", core.ErrExtractionFailed),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Server error processing PDF.",
		},
		{
			name:       "storage failure is generic",
			err:        fmt.Errorf("%w: could not store document chunks", core.ErrStorageFailed),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Database error during PDF processing.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&mockIngestor{err: tc.err}, &mockAnswerer{}, &mockLister{})

			body, contentType := multipartPDF(t, "file", "notes.pdf", []byte("data"))
			req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantDetail, decodeBody(t, rec)["detail"])
		})
	}
}

func askRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAsk_Success(t *testing.T) {
	answerer := &mockAnswerer{answer: "The answer is 42."}
	router := newTestRouter(&mockIngestor{}, answerer, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askRequest(url.Values{"question": {"what is the answer?"}, "k_results": {"5"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The answer is 42.", decodeBody(t, rec)["answer"])
	assert.Equal(t, "what is the answer?", answerer.question)
	assert.Equal(t, 5, answerer.k)
}

func TestAsk_DefaultsKToThree(t *testing.T) {
	answerer := &mockAnswerer{answer: "ok"}
	router := newTestRouter(&mockIngestor{}, answerer, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askRequest(url.Values{"question": {"hello?"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, answerer.k)
}

func TestAsk_NonIntegerKIsRejected(t *testing.T) {
	router := newTestRouter(&mockIngestor{}, &mockAnswerer{}, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askRequest(url.Values{"question": {"hello?"}, "k_results": {"many"}}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "k_results must be an integer.", decodeBody(t, rec)["detail"])
}

func TestAsk_InvalidInputFromService(t *testing.T) {
	answerer := &mockAnswerer{err: fmt.Errorf("%w: question cannot be empty", core.ErrInvalidInput)}
	router := newTestRouter(&mockIngestor{}, answerer, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askRequest(url.Values{"question": {"  "}}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "question cannot be empty", decodeBody(t, rec)["detail"])
}

func TestAsk_StorageFailureIsGeneric(t *testing.T) {
	answerer := &mockAnswerer{err: fmt.Errorf("%w: could not search for context", core.ErrStorageFailed)}
	router := newTestRouter(&mockIngestor{}, answerer, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askRequest(url.Values{"question": {"hello?"}}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database error while searching for context.", decodeBody(t, rec)["detail"])
}

func TestAsk_FallbackAnswerIsStillOK(t *testing.T) {
	answerer := &mockAnswerer{answer: core.NoRelevantInfoAnswer}
	router := newTestRouter(&mockIngestor{}, answerer, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askRequest(url.Values{"question": {"anything?"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.NoRelevantInfoAnswer, decodeBody(t, rec)["answer"])
}

func TestListDocuments(t *testing.T) {
	lister := &mockLister{docs: []store.Document{
		{ID: "doc-1", Filename: "notes.pdf", ByteSize: 100, ChunkCount: 3},
	}}
	router := newTestRouter(&mockIngestor{}, &mockAnswerer{}, lister)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	docs, ok := body["documents"].([]interface{})
	require.True(t, ok)
	require.Len(t, docs, 1)
}

func TestHome_ServesHTML(t *testing.T) {
	router := newTestRouter(&mockIngestor{}, &mockAnswerer{}, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/upload-pdf")
	assert.Contains(t, rec.Body.String(), "/ask")
}

func TestPingAndHealth(t *testing.T) {
	router := newTestRouter(&mockIngestor{}, &mockAnswerer{}, &mockLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/qa/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "QA router is working!", decodeBody(t, rec)["message"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

type panickyLister struct{}

func (panickyLister) ListDocuments(_ context.Context) ([]store.Document, error) {
	panic("boom")
}

func TestRecoverer_ConvertsPanicToGeneric500(t *testing.T) {
	router := newTestRouter(&mockIngestor{}, &mockAnswerer{}, panickyLister{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected server error occurred.", decodeBody(t, rec)["detail"])
}
