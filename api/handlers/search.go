package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wordindex/db/searchdb"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/services/search"
	"github.com/meghashyamc/wordindex/validation"
)

type SearchRequest struct {
	Keyword string   `form:"keyword" json:"keyword" validate:"valid_search_phrase,max=1000"`
	Offset  int      `form:"offset" json:"offset" validate:"min=0"`
	Limit   int      `form:"limit" json:"limit" validate:"min=0,max=100"`
	Classes []string `form:"class" json:"class" validate:"dive,valid_class"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))
}

func handleSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		envelope, err := service.Search(c.Request.Context(), request.Keyword, request.Offset, request.Limit, request.Classes)
		if err != nil {
			statusCode := http.StatusInternalServerError
			if errors.Is(err, searchdb.ErrQueryParse) {
				statusCode = http.StatusBadRequest
			}
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		c.Header(HeaderPaginationTotalCount, strconv.FormatUint(envelope.Total, 10))
		writeResponse(c, envelope, http.StatusOK, nil)
	}
}
