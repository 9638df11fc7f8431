package searchdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var parseQuotedQueryTestCases = []struct {
	name              string
	input             string
	expectedQuoted    []string
	expectedRemaining string
	expectedErr       error
}{
	{
		name:              "Simple quoted phrase",
		input:             `"hello world"`,
		expectedQuoted:    []string{"hello world"},
		expectedRemaining: "",
	},
	{
		name:              "Quoted phrase with remaining terms",
		input:             `"hello world" test golang`,
		expectedQuoted:    []string{"hello world"},
		expectedRemaining: "test golang",
	},
	{
		name:              "Multiple quoted phrases",
		input:             `"hello world" test "another phrase"`,
		expectedQuoted:    []string{"hello world", "another phrase"},
		expectedRemaining: "test",
	},
	{
		name:              "No quotes",
		input:             `hello world test`,
		expectedQuoted:    nil,
		expectedRemaining: "hello world test",
	},
	{
		name:              "Empty quoted phrase",
		input:             `"" test`,
		expectedQuoted:    nil,
		expectedRemaining: "test",
	},
	{
		name:              "Quoted phrase with extra spaces",
		input:             `"  hello world  " test`,
		expectedQuoted:    []string{"hello world"},
		expectedRemaining: "test",
	},
	{
		name:              "Multiple quoted phrases with spaces",
		input:             `  "first phrase"   test   "second phrase"  `,
		expectedQuoted:    []string{"first phrase", "second phrase"},
		expectedRemaining: "test",
	},
	{
		name:              "Words glued to a phrase stay separate",
		input:             `before"middle part"after`,
		expectedQuoted:    []string{"middle part"},
		expectedRemaining: "before after",
	},
	{
		name:              "Chinese phrase",
		input:             `"季度 收入" 报告`,
		expectedQuoted:    []string{"季度 收入"},
		expectedRemaining: "报告",
	},
	{
		name:        "Unbalanced quote",
		input:       `"hello world test`,
		expectedErr: errUnbalancedQuote,
	},
}

func TestParseQuotedQuery(t *testing.T) {
	for _, testCase := range parseQuotedQueryTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			quoted, remaining, err := parseQuotedQuery(testCase.input)
			if testCase.expectedErr != nil {
				assert.ErrorIs(err, testCase.expectedErr)
				return
			}

			assert.NoError(err)
			assert.Equal(testCase.expectedQuoted, quoted, "quoted phrases should match")
			assert.Equal(testCase.expectedRemaining, remaining, "remaining (not quoted) terms should match")
		})
	}
}

func TestBuildSearchQuerySortOrder(t *testing.T) {
	assert := require.New(t)

	_, sortOrder, err := buildSearchQuery(Query{})
	assert.NoError(err)
	assert.Equal(listingSortOrder, sortOrder, "an empty keyword lists documents newest first")

	_, sortOrder, err = buildSearchQuery(Query{Keyword: `""`, Classes: []string{"A"}})
	assert.NoError(err)
	assert.Equal(listingSortOrder, sortOrder, "a keyword with only empty phrases is a listing")

	_, sortOrder, err = buildSearchQuery(Query{Keyword: "revenue"})
	assert.NoError(err)
	assert.Equal(keywordSortOrder, sortOrder)
}

func TestBuildSearchQueryRejectsBlankClass(t *testing.T) {
	assert := require.New(t)

	_, _, err := buildSearchQuery(Query{Keyword: "revenue", Classes: []string{"A", "  "}})
	assert.Error(err)
}
