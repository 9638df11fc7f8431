package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/services/paths"
	"github.com/meghashyamc/wordindex/validation"
)

type SavePathRequest struct {
	Path string `json:"path" validate:"required,valid_path,existing_path"`
}

// RemovePathRequest does not require the path to exist: a watched directory may have
// been deleted since it was saved.
type RemovePathRequest struct {
	Path string `json:"path" validate:"required,valid_path"`
}

type PathResponse struct {
	Path string `json:"path"`
}

func SetupPaths(router *gin.Engine, logger logger.Logger, service *paths.Service, validator *validation.Validator) {
	router.GET("/paths", handleListPaths(service, logger))
	router.POST("/paths", handleSavePath(service, logger, validator))
	router.DELETE("/paths", handleRemovePath(service, logger, validator))
	router.POST("/paths/reindex", handleReindexPaths(service, logger))
}

func handleListPaths(service *paths.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		watched, err := service.List()
		if err != nil {
			logger.Error("could not list paths", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}
		if watched == nil {
			watched = []string{}
		}

		writeResponse(c, watched, http.StatusOK, nil)
	}
}

func handleSavePath(service *paths.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SavePathRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from save path request", "err", err.Error())
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

		saved, err := service.Save(request.Path)
		if err != nil {
			statusCode := http.StatusInternalServerError
			if errors.Is(err, paths.ErrPathExists) {
				statusCode = http.StatusConflict
			}
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		writeResponse(c, PathResponse{Path: saved}, http.StatusCreated, nil)
	}
}

func handleRemovePath(service *paths.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := RemovePathRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from remove path request", "err", err.Error())
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

		if err := service.Remove(request.Path); err != nil {
			statusCode := http.StatusInternalServerError
			if errors.Is(err, paths.ErrPathNotFound) {
				statusCode = http.StatusNotFound
			}
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleReindexPaths(service *paths.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := service.ReindexAll(c.Request.Context())
		if err != nil {
			logger.Error("could not reindex paths", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, results, http.StatusOK, nil)
	}
}
