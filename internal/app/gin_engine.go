package app

import (
	"storepay/pkg/logger"
	"storepay/pkg/metrics"

	"github.com/gin-gonic/gin"
)

func NewGinEngine(l *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.CorrelationMiddleware(), metrics.GinMiddleware(), l.GinBodyLogger(), gin.Recovery())
	return engine
}
