package handlers

import (
	"net/http"

	"chelmassage/utils"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and the last collaborator health snapshot.
func Health(c *gin.Context) {
	snapshot := utils.GetHealthStatus()
	status := "ok"
	for _, healthy := range snapshot.Components {
		if !healthy {
			status = "degraded"
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"components": snapshot.Components,
		"checkedAt":  snapshot.CheckedAt,
	})
}
