package routes

import (
	"github.com/gin-gonic/gin"

	"medihelp/internal/handlers"
)

// SetupEmergencyRoutes sets up routes for SOS requests and hospital lookup
func SetupEmergencyRoutes(r *gin.RouterGroup, emergencyHandler *handlers.EmergencyHandler, authRequired gin.HandlerFunc) {
	emergency := r.Group("/emergency")
	emergency.Use(authRequired)
	{
		emergency.POST("/sos", emergencyHandler.CreateSOS)
		emergency.GET("/requests", emergencyHandler.ListMine)
		emergency.GET("/requests/:id", emergencyHandler.GetRequest)
		emergency.PATCH("/requests/:id/status", emergencyHandler.UpdateStatus)
		emergency.GET("/hospitals/nearby", emergencyHandler.NearbyHospitals)
	}
}
