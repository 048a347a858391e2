package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	source string
}

func NewHealthController(source string) *HealthController {
	return &HealthController{source: source}
}

// RegisterRoutes sets up the health check endpoint.
func (ctrl *HealthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", ctrl.healthCheck)
	router.HEAD("/health", ctrl.healthCheck)
}

func (ctrl *HealthController) healthCheck(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data_source": ctrl.source})
}
