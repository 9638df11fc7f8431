package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/meghashyamc/wordindex/services/search"
	"github.com/stretchr/testify/require"
)

var searchHandlerValidationTestCases = []testCase{
	{
		name:           "KeywordTooLong",
		queryParams:    url.Values{"keyword": {strings.Repeat("a", 1001)}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "InvalidLimit",
		queryParams:    url.Values{"keyword": {"test"}, "limit": {"-1"}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "LimitTooLarge",
		queryParams:    url.Values{"keyword": {"test"}, "limit": {"101"}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "InvalidOffset",
		queryParams:    url.Values{"keyword": {"test"}, "offset": {"-1"}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "NonNumericOffset",
		queryParams:    url.Values{"keyword": {"test"}, "offset": {"abc"}},
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:             "BlankClass",
		queryParams:      url.Values{"keyword": {"test"}, "class": {" "}},
		expectedStatus:   http.StatusNotAcceptable,
		expectedResponse: &response{Errors: []string{"invalid class"}},
	},
	{
		name:           "UnbalancedQuote",
		queryParams:    url.Values{"keyword": {`"test content`}},
		expectedStatus: http.StatusBadRequest,
	},
}

type searchTestCase struct {
	name          string
	queryParams   url.Values
	expectedTotal uint64
	expectedFiles []string
}

var searchHandlerTestCases = []searchTestCase{
	{
		name:          "SearchContentWithinFile",
		queryParams:   url.Values{"keyword": {"revenue"}},
		expectedTotal: 1,
		expectedFiles: []string{"report.txt"},
	},
	{
		name:          "SearchMarkdownContent",
		queryParams:   url.Values{"keyword": {"markdown"}},
		expectedTotal: 1,
		expectedFiles: []string{"subdir/file3.md"},
	},
	{
		name:          "SearchPhrase",
		queryParams:   url.Values{"keyword": {`"test content"`}},
		expectedTotal: 1,
		expectedFiles: []string{"file1.txt"},
	},
	{
		name:          "SearchFilename",
		queryParams:   url.Values{"keyword": {"file1"}},
		expectedTotal: 1,
		expectedFiles: []string{"file1.txt"},
	},
	{
		name:          "SearchChinese",
		queryParams:   url.Values{"keyword": {"收入"}},
		expectedTotal: 1,
		expectedFiles: []string{"subdir/nested/季度.txt"},
	},
	{
		name:          "HiddenDirectoryNotIndexed",
		queryParams:   url.Values{"keyword": {"secret"}},
		expectedTotal: 0,
	},
	{
		name:          "UnsupportedFileNotIndexed",
		queryParams:   url.Values{"keyword": {"binary"}},
		expectedTotal: 0,
	},
	{
		name:          "NoMatch",
		queryParams:   url.Values{"keyword": {"nonexistentword"}},
		expectedTotal: 0,
	},
	{
		name:          "ClassFilterWithoutMatches",
		queryParams:   url.Values{"keyword": {"revenue"}, "class": {"A", "B"}},
		expectedTotal: 0,
	},
}

type searchResponse struct {
	Data   search.Envelope `json:"data"`
	Errors []string        `json:"errors"`
}

func setupIndexedTestServer(t *testing.T, assert *require.Assertions) *testServer {
	server := setupTestServer(t, assert)
	summary, err := server.app.Index.Index(context.Background(), server.root)
	assert.NoError(err, "could not index test files")
	assert.Equal(indexedTestFiles, summary.Indexed)
	return server
}

func TestHandleSearchValidation(t *testing.T) {
	assert := require.New(t)
	server := setupIndexedTestServer(t, assert)

	for _, testCase := range searchHandlerValidationTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server, assert, http.MethodGet, "/search", nil, nil, testCase.queryParams)
			assertResponse(assert, w, testCase.expectedStatus, testCase.expectedResponse)
		})
	}
}

func TestHandleSearch(t *testing.T) {
	assert := require.New(t)
	server := setupIndexedTestServer(t, assert)

	for _, testCase := range searchHandlerTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server, assert, http.MethodGet, "/search", nil, nil, testCase.queryParams)
			assert.Equal(http.StatusOK, w.Code, w.Body.String())

			actual := searchResponse{}
			assert.NoError(json.Unmarshal(w.Body.Bytes(), &actual))
			assert.Empty(actual.Errors)
			assert.Equal(testCase.expectedTotal, actual.Data.Total)
			assert.Equal(search.DefaultLimit, actual.Data.Limit)
			assert.Equal(0, actual.Data.Offset)

			var actualFiles []string
			for _, result := range actual.Data.Results {
				rel, err := filepath.Rel(server.root, result.Path)
				assert.NoError(err)
				actualFiles = append(actualFiles, filepath.ToSlash(rel))
				assert.Equal(filepath.Base(result.Path), result.Name)
			}
			assert.Equal(testCase.expectedFiles, actualFiles)
		})
	}
}

func TestHandleSearchResultShape(t *testing.T) {
	assert := require.New(t)
	server := setupIndexedTestServer(t, assert)

	w := makeTestHTTPRequest(server, assert, http.MethodGet, "/search", nil, nil, url.Values{"keyword": {"revenue"}, "limit": {"5"}})
	assert.Equal(http.StatusOK, w.Code, w.Body.String())
	assert.Equal("1", w.Header().Get(HeaderPaginationTotalCount))
	assert.JSONEq(`{
		"data": {
			"total": 1,
			"offset": 0,
			"limit": 5,
			"results": [{"name": "report.txt", "content": "quarterly revenue", "path": `+jsonString(assert, filepath.Join(server.root, "report.txt"))+`}]
		},
		"errors": null
	}`, w.Body.String())
}

func TestHandleSearchPagination(t *testing.T) {
	assert := require.New(t)
	server := setupIndexedTestServer(t, assert)

	seen := map[string]struct{}{}
	for offset := 0; offset < indexedTestFiles; offset += 2 {
		w := makeTestHTTPRequest(server, assert, http.MethodGet, "/search", nil, nil, url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {"2"},
		})
		assert.Equal(http.StatusOK, w.Code, w.Body.String())

		actual := searchResponse{}
		assert.NoError(json.Unmarshal(w.Body.Bytes(), &actual))
		assert.Equal(uint64(indexedTestFiles), actual.Data.Total, "an empty keyword lists every document")
		for _, result := range actual.Data.Results {
			_, duplicate := seen[result.Path]
			assert.False(duplicate, "pages are disjoint")
			seen[result.Path] = struct{}{}
		}
	}
	assert.Len(seen, indexedTestFiles)
}

func jsonString(assert *require.Assertions, value string) string {
	encoded, err := json.Marshal(value)
	assert.NoError(err)
	return string(encoded)
}
