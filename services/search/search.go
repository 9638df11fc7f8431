package search

import (
	"context"
	"strings"

	"github.com/meghashyamc/wordindex/db/searchdb"
	"github.com/meghashyamc/wordindex/logger"
)

const DefaultLimit = 20

type Service struct {
	logger logger.Logger
	db     searchdb.DB
}

// Envelope is the search answer handed to callers.
type Envelope struct {
	Total   uint64            `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
	Results []searchdb.Result `json:"results"`
}

func New(logger logger.Logger, db searchdb.DB) *Service {
	return &Service{
		logger: logger,
		db:     db,
	}
}

// Search returns one page of documents matching keyword, optionally limited to the
// given classes. An empty keyword lists every document, newest first.
func (s *Service) Search(ctx context.Context, keyword string, offset int, limit int, classes []string) (*Envelope, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset = max(0, offset)

	response, err := s.db.Search(ctx, searchdb.Query{
		Keyword: strings.TrimSpace(keyword),
		Offset:  offset,
		Limit:   limit,
		Classes: classes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search finished", "keyword", keyword, "total", response.Total, "took", response.SearchTime)

	results := response.Results
	if results == nil {
		results = []searchdb.Result{}
	}

	return &Envelope{
		Total:   response.Total,
		Offset:  offset,
		Limit:   limit,
		Results: results,
	}, nil
}
