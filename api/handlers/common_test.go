// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wordindex/app"
	"github.com/meghashyamc/wordindex/config"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testFiles = map[string]string{
	"file1.txt":              "This is test content for file1",
	"report.txt":             "quarterly revenue",
	"subdir/file3.md":        "# Test Markdown\n\nThis is a test markdown file",
	"subdir/notes.md":        "meeting notes",
	"subdir/nested/季度.txt": "本季度收入增长",
	"subdir/setup.exe":       "binary revenue",
	".hidden/secret.txt":     "quarterly secret",
}

// indexedTestFiles is how many entries of testFiles end up in the index.
const indexedTestFiles = 5

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      url.Values
	expectedStatus   int
	expectedResponse *response
}

type testServer struct {
	router *gin.Engine
	app    *app.App
	root   string
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	t.Setenv("ENV", "test")
	t.Setenv("STORAGE_PATH", t.TempDir())
	t.Setenv("CONVERTER_COMMAND", "wordindex-no-such-converter")

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	root := t.TempDir()
	for relPath, content := range testFiles {
		fullPath := filepath.Join(root, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	testLogger := newTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	application, err := app.New(ctx, cfg, testLogger)
	assert.NoError(err, "could not open stores")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupIndex(router, testLogger, application.Index, validator)
	SetupSearch(router, testLogger, application.Search, validator)
	SetupPaths(router, testLogger, application.Paths, validator)

	t.Cleanup(func() {
		cancel()
		if err := application.Close(); err != nil {
			t.Errorf("could not close stores: %s", err)
		}
	})

	return &testServer{router: router, app: application, root: root}
}

func makeTestHTTPRequest(server *testServer, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams url.Values) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?" + queryParams.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	server.router.ServeHTTP(w, req)

	return w
}

func assertResponse(assert *require.Assertions, w *httptest.ResponseRecorder, expectedStatus int, expectedResponse *response) {
	assert.Equal(expectedStatus, w.Code, "response gotten was %s", w.Body.String())
	if expectedResponse == nil {
		return
	}

	expectedBytes, err := json.Marshal(expectedResponse)
	assert.NoError(err)
	assert.JSONEq(string(expectedBytes), w.Body.String())
}
