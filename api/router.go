package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wordindex/api/handlers"
	"github.com/meghashyamc/wordindex/app"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, app *app.App, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupIndex(router, logger, app.Index, validator)
	handlers.SetupSearch(router, logger, app.Search, validator)
	handlers.SetupPaths(router, logger, app.Paths, validator)

}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
