package router

import (
	"github.com/gin-gonic/gin"

	"phl311.app/bot/internal/http/handler"
)

func LookupRouter(router *gin.RouterGroup, handler *handler.LookupHandler) {
	router.GET("/lookup", handler.Lookup)
}
