package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/extractor"
	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/internal/stats"
	fixture "github.com/nerdneilsfield/go-pptx-translator/internal/test"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// upperTranslate 测试用翻译函数：全部文本转大写
func upperTranslate(_ context.Context, tree *presentation.Presentation, targetLang string) (*presentation.Presentation, *stats.Translation, error) {
	data, err := presentation.Encode(tree)
	if err != nil {
		return nil, nil, err
	}
	out, err := presentation.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	out.TargetLanguage = targetLang
	for _, slide := range out.Slides {
		slide.VisitRuns(func(r *presentation.TextRun) {
			r.Text = strings.ToUpper(r.Text)
		})
		if slide.SpeakerNotes != nil {
			slide.SpeakerNotes.Text = strings.ToUpper(slide.SpeakerNotes.Text)
		}
		slide.RecomputeDerived()
	}
	return out, &stats.Translation{}, nil
}

func newTestServer(cfg Config) *Server {
	return New(upperTranslate, cfg, zap.NewNop())
}

// multipartBody 组装上传表单
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, data := range files {
		name := field + ".bin"
		if field == "file" {
			name = "deck.pptx"
		}
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doRequest(srv *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(Config{})
	rec := doRequest(srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExtractEndpoint(t *testing.T) {
	srv := newTestServer(Config{})
	body, contentType := multipartBody(t, nil, map[string][]byte{"file": fixture.Deck()})
	rec := doRequest(srv, http.MethodPost, "/api/extract", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	tree, err := presentation.Decode(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, tree.TotalSlides)
	assert.Equal(t, "deck.pptx", tree.Name)
}

func TestExtractRejectsGarbage(t *testing.T) {
	srv := newTestServer(Config{})
	body, contentType := multipartBody(t, nil, map[string][]byte{"file": []byte("not a zip")})
	rec := doRequest(srv, http.MethodPost, "/api/extract", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslateEndpoint(t *testing.T) {
	srv := newTestServer(Config{})

	pkg, err := pptx.FromBytes(fixture.Deck())
	require.NoError(t, err)
	tree, err := extractor.New(zap.NewNop()).Extract(pkg, "deck.pptx")
	require.NoError(t, err)
	treeJSON, err := presentation.Encode(tree)
	require.NoError(t, err)

	body, contentType := multipartBody(t,
		map[string]string{"target_lang": "Spanish"},
		map[string][]byte{"file": treeJSON})
	rec := doRequest(srv, http.MethodPost, "/api/translate", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	translated, err := presentation.Decode(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Spanish", translated.TargetLanguage)
	assert.Equal(t, "QUARTERLY REVIEW", translated.Slides[0].ElementByShapeID(2).FullText)
}

func TestTranslateRequiresTargetLang(t *testing.T) {
	srv := newTestServer(Config{})
	body, contentType := multipartBody(t, nil, map[string][]byte{"file": []byte("{}")})
	rec := doRequest(srv, http.MethodPost, "/api/translate", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReassembleEndpoint(t *testing.T) {
	srv := newTestServer(Config{})

	pkg, err := pptx.FromBytes(fixture.Deck())
	require.NoError(t, err)
	tree, err := extractor.New(zap.NewNop()).Extract(pkg, "deck.pptx")
	require.NoError(t, err)
	tree.Slides[0].ElementByShapeID(2).Paragraphs[0].Runs[0].Text = "Revisión "
	treeJSON, err := presentation.Encode(tree)
	require.NoError(t, err)

	body, contentType := multipartBody(t, nil, map[string][]byte{
		"file": fixture.Deck(),
		"tree": treeJSON,
	})
	rec := doRequest(srv, http.MethodPost, "/api/reassemble", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pptxContentType, rec.Header().Get("Content-Type"))

	out, err := pptx.FromBytes(rec.Body.Bytes())
	require.NoError(t, err)
	again, err := extractor.New(zap.NewNop()).Extract(out, "deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, "Revisión Review", again.Slides[0].ElementByShapeID(2).FullText)
}

func TestPipelineAsync(t *testing.T) {
	srv := newTestServer(Config{})
	body, contentType := multipartBody(t,
		map[string]string{"target_lang": "Spanish"},
		map[string][]byte{"file": fixture.Deck()})
	rec := doRequest(srv, http.MethodPost, "/api/pipeline", body, contentType)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	require.Eventually(t, func() bool {
		status := doRequest(srv, http.MethodGet, accepted.PollURL, nil, "")
		var job struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(status.Body.Bytes(), &job); err != nil {
			return false
		}
		return job.Status == StatusDone
	}, 5*time.Second, 20*time.Millisecond)

	result := doRequest(srv, http.MethodGet, accepted.PollURL+"/result", nil, "")
	require.Equal(t, http.StatusOK, result.Code)
	assert.Contains(t, result.Header().Get("Content-Disposition"), "deck_spanish.pptx")

	out, err := pptx.FromBytes(result.Body.Bytes())
	require.NoError(t, err)
	again, err := extractor.New(zap.NewNop()).Extract(out, "deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, "QUARTERLY REVIEW", again.Slides[0].ElementByShapeID(2).FullText)
}

func TestPipelineRejectsBrokenUpload(t *testing.T) {
	srv := newTestServer(Config{})
	body, contentType := multipartBody(t,
		map[string]string{"target_lang": "Spanish"},
		map[string][]byte{"file": []byte("broken")})
	rec := doRequest(srv, http.MethodPost, "/api/pipeline", body, contentType)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted struct {
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))

	require.Eventually(t, func() bool {
		status := doRequest(srv, http.MethodGet, accepted.PollURL, nil, "")
		var job struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(status.Body.Bytes(), &job); err != nil {
			return false
		}
		return job.Status == StatusFailed && job.Error != ""
	}, 5*time.Second, 20*time.Millisecond)
}

func TestJobNotFound(t *testing.T) {
	srv := newTestServer(Config{})
	rec := doRequest(srv, http.MethodGet, "/api/jobs/no-such-job", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(srv, http.MethodGet, "/api/jobs/no-such-job/result", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(Config{APIKey: "secret-key"})

	// /health 不要求认证
	rec := doRequest(srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	body, contentType := multipartBody(t, nil, map[string][]byte{"file": fixture.Deck()})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body, contentType = multipartBody(t, nil, map[string][]byte{"file": fixture.Deck()})
	req = httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body, contentType = multipartBody(t, nil, map[string][]byte{"file": fixture.Deck()})
	req = httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret-key")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadSizeLimit(t *testing.T) {
	srv := newTestServer(Config{MaxUploadBytes: 1024})
	big := bytes.Repeat([]byte{0x0}, 4096)
	body, contentType := multipartBody(t, nil, map[string][]byte{"file": big})
	rec := doRequest(srv, http.MethodPost, "/api/extract", body, contentType)
	assert.Contains(t,
		[]int{http.StatusRequestEntityTooLarge, http.StatusBadRequest},
		rec.Code)
}

func TestJobStore(t *testing.T) {
	store := NewStore()
	job := store.Create("deck.pptx", "Spanish")
	assert.Equal(t, StatusQueued, job.Status)

	store.SetRunning(job.ID)
	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, got.Status)

	_, ok = store.Result(job.ID)
	assert.False(t, ok, "未完成的任务没有产物")

	store.SetDone(job.ID, []byte("bytes"))
	result, ok := store.Result(job.ID)
	require.True(t, ok)
	assert.Equal(t, []byte("bytes"), result)
}
