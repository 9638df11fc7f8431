package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/services/index"
	"github.com/meghashyamc/wordindex/validation"
)

type IndexRequest struct {
	Path string `json:"path" validate:"required,valid_path,existing_path"`
}

type IndexResponse struct {
	ID string `json:"id"`
}

type GetIndexRequest struct {
	ID string `uri:"id" json:"id" validate:"required,uuid4"`
}

func SetupIndex(router *gin.Engine, logger logger.Logger, service *index.Service, validator *validation.Validator) {
	router.POST("/index", handleIndex(service, logger, validator))
	router.GET("/index/:id", handleGetIndex(service, logger, validator))
}

func handleIndex(service *index.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := IndexRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from index request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		requestID, err := service.Build(request.Path)
		if err != nil {
			statusCode := http.StatusInternalServerError
			switch {
			case errors.Is(err, index.ErrIndexingInProgress):
				statusCode = http.StatusConflict
			case errors.Is(err, index.ErrServiceStopped):
				statusCode = http.StatusServiceUnavailable
			}
			logger.Warn("could not create index", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		writeResponse(c, IndexResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func handleGetIndex(service *index.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := GetIndexRequest{}
		if err := c.ShouldBindUri(&request); err != nil {
			logger.Warn("could not extract request id", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request id"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		status, err := service.GetStatus(request.ID)
		if err != nil {
			statusCode := http.StatusInternalServerError
			if errors.Is(err, index.ErrRequestNotFound) {
				statusCode = http.StatusNotFound
			}
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		writeResponse(c, status, http.StatusOK, nil)
	}
}
