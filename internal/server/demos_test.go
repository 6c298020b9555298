package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akarsten/demodash-go/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoDefinition() store.Demo {
	return store.Demo{
		ID:     "acme",
		Title:  "Acme Demo",
		Author: "QA",
		Assistants: []store.Assistant{
			{ID: "support", Name: "Support", Description: "Answers support questions", Password: "hunter2"},
			{ID: "sales", Name: "Sales", Description: "Closes deals"},
		},
	}
}

// multipartDemo builds the create-demo upload for the given definition.
// Files maps field name to content; the demo JSON field is always present.
func multipartDemo(t *testing.T, demo store.Demo, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	definition, err := json.Marshal(demo)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("demo", string(definition)))

	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".md")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(s *Server, method, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func createDemo(t *testing.T, s *Server) {
	t.Helper()
	body, contentType := multipartDemo(t, demoDefinition(), map[string]string{
		"explainer":        "# Acme Demo\n\nTry the assistants.",
		"markdown_support": "You are the support assistant.",
		"markdown_sales":   "You are the sales assistant.",
	})
	rec := do(s, http.MethodPost, "/api/demos", contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCreateAndFetchDemo(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	rec := do(s, http.MethodGet, "/api/demos/acme", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var demo store.Demo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &demo))
	assert.Equal(t, "Acme Demo", demo.Title)
	assert.Len(t, demo.Assistants, 2)
}

func TestCreateDuplicateDemo(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	body, contentType := multipartDemo(t, demoDefinition(), map[string]string{
		"explainer":        "again",
		"markdown_support": "again",
		"markdown_sales":   "again",
	})
	rec := do(s, http.MethodPost, "/api/demos", contentType, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateDemoMissingAssistantMarkdown(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body, contentType := multipartDemo(t, demoDefinition(), map[string]string{
		"explainer":        "# Acme",
		"markdown_support": "support only",
	})
	rec := do(s, http.MethodPost, "/api/demos", contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sales")
}

func TestCreateDemoMissingExplainer(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body, contentType := multipartDemo(t, demoDefinition(), map[string]string{
		"markdown_support": "a",
		"markdown_sales":   "b",
	})
	rec := do(s, http.MethodPost, "/api/demos", contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormFileBytesPropagatesReadErrors(t *testing.T) {
	// A part with no closing boundary fails mid-read; that failure must
	// surface as an error, not as an absent field.
	body := "--b\r\nContent-Disposition: form-data; name=\"icon\"; filename=\"icon.svg\"\r\n\r\ntruncated"
	req := httptest.NewRequest(http.MethodPost, "/api/demos", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	data, ok, err := formFileBytes(c, "icon")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestCreateDemoTruncatedUpload(t *testing.T) {
	s, base := newTestServer(t, nil)

	full, contentType := multipartDemo(t, demoDefinition(), map[string]string{
		"explainer":        "# Acme",
		"markdown_support": "a",
		"markdown_sales":   "b",
		"icon":             "<svg/>",
	})
	truncated := bytes.NewBuffer(full.Bytes()[:full.Len()-20])

	rec := do(s, http.MethodPost, "/api/demos", contentType, truncated)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := os.Stat(filepath.Join(base, "public", "demos", "acme"))
	assert.True(t, os.IsNotExist(err), "no partial demo may survive a broken upload")
}

func TestCreateStaticDemo(t *testing.T) {
	s, _ := newTestServer(t, nil)

	demo := demoDefinition()
	demo.ID = "math-assistant"
	body, contentType := multipartDemo(t, demo, map[string]string{
		"explainer":        "x",
		"markdown_support": "x",
		"markdown_sales":   "x",
	})
	rec := do(s, http.MethodPost, "/api/demos", contentType, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListDemos(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/api/demos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	createDemo(t, s)

	rec = do(s, http.MethodGet, "/api/demos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var demos []store.Demo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &demos))
	require.Len(t, demos, 1)
	assert.Equal(t, "acme", demos[0].ID)
}

func TestDeleteDemo(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	rec := do(s, http.MethodDelete, "/api/demos/acme", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = do(s, http.MethodGet, "/api/demos/acme", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStaticDemoForbidden(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(s, http.MethodDelete, "/api/demos/coding-assistant", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExplainerEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	rec := do(s, http.MethodGet, "/api/demos/acme/explainer", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload["content"], "# Acme Demo")

	rec = do(s, http.MethodGet, "/api/demos/acme/explainer/html", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
}

func TestAssistantMarkdownEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	rec := do(s, http.MethodGet, "/api/demos/acme/assistants/support/markdown", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You are the support assistant.", rec.Body.String())

	rec = do(s, http.MethodGet, "/api/demos/acme/assistants/ghost/markdown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnlock(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	unlock := func(assistant, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"password": password})
		return do(s, http.MethodPost, "/api/demos/acme/assistants/"+assistant+"/unlock",
			"application/json", bytes.NewBuffer(body))
	}

	t.Run("correct password", func(t *testing.T) {
		rec := unlock("support", "hunter2")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"unlocked":true}`, rec.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := unlock("support", "guess")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid password"}`, rec.Body.String())
	})

	t.Run("unprotected assistant", func(t *testing.T) {
		rec := unlock("sales", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown assistant", func(t *testing.T) {
		rec := unlock("ghost", "hunter2")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	createDemo(t, s)

	rec := do(s, http.MethodGet, "/api/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Uptime      string            `json:"uptime"`
		Directories []directoryStatus `json:"directories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Uptime)
	require.Len(t, payload.Directories, 3)
	assert.True(t, payload.Directories[0].Exists)
}
