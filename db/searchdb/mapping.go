package searchdb

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/char/regexp"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	indexFieldID        = "id"
	indexFieldName      = "name"
	indexFieldPath      = "path"
	indexFieldContent   = "content"
	indexFieldTimestamp = "timestamp"
	indexFieldClass     = "class"
)

const (
	textAnalyzerName      = "cjk_text"
	nameAnalyzerName      = "cjk_name"
	nameSeparatorsName    = "name_separators"
	longTokenFilterName   = "long_token"
	DefaultMaxTokenLength = 40
)

// createIndexMapping builds the fixed schema. The analyzer settings are stored with the
// index, so a different maxTokenLength only applies to newly created indexes.
func createIndexMapping(maxTokenLength int) (mapping.IndexMapping, error) {
	if maxTokenLength <= 0 {
		maxTokenLength = DefaultMaxTokenLength
	}

	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomTokenFilter(longTokenFilterName, map[string]interface{}{
		"type": length.Name,
		"max":  float64(maxTokenLength),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add long token filter: %w", err)
	}

	// unicode splits CJK runs into single ideographs, cjk_bigram joins them back into
	// overlapping pairs so Chinese/Japanese text is searchable without a dictionary.
	err = indexMapping.AddCustomAnalyzer(textAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			cjk.WidthName,
			cjk.BigramName,
			longTokenFilterName,
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add text analyzer: %w", err)
	}

	// Word segmentation keeps "report.txt" and "q3_report" as one token; split file
	// names on those separators so their parts are searchable too.
	err = indexMapping.AddCustomCharFilter(nameSeparatorsName, map[string]interface{}{
		"type":    regexp.Name,
		"regexp":  `[._]`,
		"replace": " ",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add name separators filter: %w", err)
	}

	err = indexMapping.AddCustomAnalyzer(nameAnalyzerName, map[string]interface{}{
		"type":         custom.Name,
		"char_filters": []string{nameSeparatorsName},
		"tokenizer":    unicode.Name,
		"token_filters": []string{
			cjk.WidthName,
			cjk.BigramName,
			longTokenFilterName,
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add name analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = textAnalyzerName

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	idFieldMapping := keywordField()
	docMapping.AddFieldMappingsAt(indexFieldID, idFieldMapping)

	nameFieldMapping := textField(nameAnalyzerName)
	docMapping.AddFieldMappingsAt(indexFieldName, nameFieldMapping)

	contentFieldMapping := textField(textAnalyzerName)
	docMapping.AddFieldMappingsAt(indexFieldContent, contentFieldMapping)

	// Path is kept as a single term: it is never searched by keyword, only matched
	// exactly or by prefix when pruning removed files.
	pathFieldMapping := keywordField()
	docMapping.AddFieldMappingsAt(indexFieldPath, pathFieldMapping)

	timestampFieldMapping := bleve.NewNumericFieldMapping()
	timestampFieldMapping.Store = true
	timestampFieldMapping.DocValues = true
	timestampFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldTimestamp, timestampFieldMapping)

	classFieldMapping := keywordField()
	docMapping.AddFieldMappingsAt(indexFieldClass, classFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping, nil
}

func keywordField() *mapping.FieldMapping {
	fieldMapping := bleve.NewTextFieldMapping()
	fieldMapping.Analyzer = keyword.Name
	fieldMapping.Store = true
	fieldMapping.IncludeTermVectors = false
	fieldMapping.IncludeInAll = false
	return fieldMapping
}

func textField(analyzer string) *mapping.FieldMapping {
	fieldMapping := bleve.NewTextFieldMapping()
	fieldMapping.Analyzer = analyzer
	fieldMapping.Store = true
	fieldMapping.Index = true
	fieldMapping.IncludeTermVectors = true
	fieldMapping.IncludeInAll = false
	return fieldMapping
}
