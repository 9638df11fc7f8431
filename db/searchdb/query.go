package searchdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

var (
	keywordSortOrder   = []string{"-_score", "-" + indexFieldTimestamp, "_id"}
	listingSortOrder   = []string{"-" + indexFieldTimestamp, "_id"}
	errUnbalancedQuote = errors.New("unbalanced quote in keyword")
)

// buildSearchQuery turns a Query into a bleve query and the sort order to use with it.
// An empty keyword lists every document, newest first.
func buildSearchQuery(q Query) (query.Query, []string, error) {
	keywordQuery, err := buildKeywordQuery(q.Keyword)
	if err != nil {
		return nil, nil, err
	}

	classQuery, err := buildClassQuery(q.Classes)
	if err != nil {
		return nil, nil, err
	}

	sortOrder := keywordSortOrder
	if keywordQuery == nil {
		keywordQuery = bleve.NewMatchAllQuery()
		sortOrder = listingSortOrder
	}

	if classQuery == nil {
		return keywordQuery, sortOrder, nil
	}

	return bleve.NewConjunctionQuery(keywordQuery, classQuery), sortOrder, nil
}

// buildKeywordQuery matches every part of the keyword against name OR content. Quoted
// sections are phrases, the remaining words are one match query. A name matches only
// when it holds every remaining word, so "report.txt" does not match every .txt file.
// Returns nil when the keyword has nothing to search for.
func buildKeywordQuery(keyword string) (query.Query, error) {
	phrases, remaining, err := parseQuotedQuery(keyword)
	if err != nil {
		return nil, err
	}

	var parts []query.Query
	for _, phrase := range phrases {
		parts = append(parts, acrossTextFields(func(field string) query.Query {
			phraseQuery := bleve.NewMatchPhraseQuery(phrase)
			phraseQuery.SetField(field)
			return phraseQuery
		}))
	}
	if remaining != "" {
		parts = append(parts, acrossTextFields(func(field string) query.Query {
			matchQuery := bleve.NewMatchQuery(remaining)
			matchQuery.SetField(field)
			if field == indexFieldName {
				matchQuery.SetOperator(query.MatchQueryOperatorAnd)
			}
			return matchQuery
		}))
	}

	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		return parts[0], nil
	default:
		return bleve.NewConjunctionQuery(parts...), nil
	}
}

func acrossTextFields(fieldQuery func(field string) query.Query) query.Query {
	return bleve.NewDisjunctionQuery(fieldQuery(indexFieldName), fieldQuery(indexFieldContent))
}

// buildClassQuery returns "class IN (classes)" or nil when no filter is given.
func buildClassQuery(classes []string) (query.Query, error) {
	if len(classes) == 0 {
		return nil, nil
	}

	classQuery := bleve.NewDisjunctionQuery()
	for _, class := range classes {
		if strings.TrimSpace(class) == "" {
			return nil, fmt.Errorf("class filter contains a blank class name")
		}
		termQuery := bleve.NewTermQuery(class)
		termQuery.SetField(indexFieldClass)
		classQuery.AddQuery(termQuery)
	}

	return classQuery, nil
}

func stalenessQuery(id string, timestamp int64) query.Query {
	idQuery := bleve.NewTermQuery(id)
	idQuery.SetField(indexFieldID)

	value := float64(timestamp)
	inclusive := true
	timestampQuery := bleve.NewNumericRangeInclusiveQuery(&value, &value, &inclusive, &inclusive)
	timestampQuery.SetField(indexFieldTimestamp)

	return bleve.NewConjunctionQuery(idQuery, timestampQuery)
}

// parseQuotedQuery splits input into its double-quoted phrases and the remaining words.
// Empty phrases are dropped and whitespace is collapsed.
func parseQuotedQuery(input string) ([]string, string, error) {
	var quoted []string
	var remaining strings.Builder
	var current strings.Builder
	inQuote := false

	for _, r := range input {
		if r != '"' {
			if inQuote {
				current.WriteRune(r)
			} else {
				remaining.WriteRune(r)
			}
			continue
		}

		if inQuote {
			if phrase := strings.TrimSpace(current.String()); phrase != "" {
				quoted = append(quoted, phrase)
			}
			current.Reset()
		}
		// keep words on both sides of a phrase apart
		remaining.WriteRune(' ')
		inQuote = !inQuote
	}

	if inQuote {
		return nil, "", errUnbalancedQuote
	}

	return quoted, strings.Join(strings.Fields(remaining.String()), " "), nil
}
