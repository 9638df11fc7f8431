package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/wordindex/services/paths"
	"github.com/stretchr/testify/require"
)

func TestHandlePaths(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	subdir := filepath.Join(server.root, "subdir")

	testCases := []struct {
		testCase
		method string
	}{
		{
			testCase: testCase{
				name:             "ListEmpty",
				expectedStatus:   http.StatusOK,
				expectedResponse: &response{Data: []string{}},
			},
			method: http.MethodGet,
		},
		{
			testCase: testCase{
				name:           "SaveNoBody",
				requestHeaders: defaultTestRequestHeaders,
				expectedStatus: http.StatusUnprocessableEntity,
			},
			method: http.MethodPost,
		},
		{
			testCase: testCase{
				name:             "SaveMissingPath",
				requestHeaders:   defaultTestRequestHeaders,
				requestBody:      map[string]any{"path": filepath.Join(server.root, "missing")},
				expectedStatus:   http.StatusNotAcceptable,
				expectedResponse: &response{Errors: []string{"path does not exist"}},
			},
			method: http.MethodPost,
		},
		{
			testCase: testCase{
				name:             "Save",
				requestHeaders:   defaultTestRequestHeaders,
				requestBody:      map[string]any{"path": subdir},
				expectedStatus:   http.StatusCreated,
				expectedResponse: &response{Data: PathResponse{Path: subdir}},
			},
			method: http.MethodPost,
		},
		{
			testCase: testCase{
				name:           "SaveDuplicate",
				requestHeaders: defaultTestRequestHeaders,
				requestBody:    map[string]any{"path": subdir},
				expectedStatus: http.StatusConflict,
			},
			method: http.MethodPost,
		},
		{
			testCase: testCase{
				name:             "List",
				expectedStatus:   http.StatusOK,
				expectedResponse: &response{Data: []string{subdir}},
			},
			method: http.MethodGet,
		},
		{
			testCase: testCase{
				name:           "RemoveUnknown",
				requestHeaders: defaultTestRequestHeaders,
				requestBody:    map[string]any{"path": server.root},
				expectedStatus: http.StatusNotFound,
			},
			method: http.MethodDelete,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server, assert, testCase.method, "/paths", testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			assertResponse(assert, w, testCase.expectedStatus, testCase.expectedResponse)
		})
	}
}

func TestHandleReindexPaths(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	subdir := filepath.Join(server.root, "subdir")

	w := makeTestHTTPRequest(server, assert, http.MethodPost, "/paths", defaultTestRequestHeaders, map[string]any{"path": subdir}, nil)
	assert.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = makeTestHTTPRequest(server, assert, http.MethodPost, "/paths/reindex", nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code, w.Body.String())

	type reindexResponse struct {
		Data   []paths.Result `json:"data"`
		Errors []string       `json:"errors"`
	}
	actual := reindexResponse{}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &actual))
	assert.Len(actual.Data, 1)
	assert.Equal(subdir, actual.Data[0].Path)
	assert.Empty(actual.Data[0].Error)
	assert.Equal(3, actual.Data[0].Summary.Indexed, "file3.md, notes.md and nested/季度.txt")

	w = makeTestHTTPRequest(server, assert, http.MethodDelete, "/paths", defaultTestRequestHeaders, map[string]any{"path": subdir}, nil)
	assert.Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = makeTestHTTPRequest(server, assert, http.MethodPost, "/paths/reindex", nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(`{"data": [], "errors": null}`, w.Body.String())
}
